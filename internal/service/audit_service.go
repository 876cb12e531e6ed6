package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/spec-kit/crew-auth/internal/events"
	"github.com/spec-kit/crew-auth/internal/notify"
)

// AuditService records auth events in the log and forwards them to an optional publisher.
type AuditService struct {
	dispatcher events.Dispatcher
	publisher  notify.Publisher
	logger     *zap.Logger
}

// NewAuditService creates the service. publisher may be nil.
func NewAuditService(dispatcher events.Dispatcher, publisher notify.Publisher, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to every auth event type.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes() {
		a.dispatcher.Subscribe(eventType, a.handle)
	}
}

// handle never fails the publishing operation; delivery is best-effort.
func (a *AuditService) handle(ctx context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("employee_id", event.EmployeeID),
		zap.Time("at", event.Timestamp),
	}
	if event.Actor.EmployeeID != "" {
		fields = append(fields, zap.String("actor", event.Actor.EmployeeID))
	}
	if event.Payload != nil {
		fields = append(fields, zap.Any("payload", event.Payload))
	}
	if event.Type == events.EventLoginFailed {
		a.logger.Warn("auth event", fields...)
	} else {
		a.logger.Info("auth event", fields...)
	}

	if a.publisher == nil {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		a.logger.Error("encode auth event", zap.String("event_id", event.ID), zap.Error(err))
		return nil
	}
	if err := a.publisher.Publish(ctx, string(event.Type), body); err != nil {
		a.logger.Warn("publish auth event", zap.String("event_id", event.ID), zap.Error(err))
	}
	return nil
}
