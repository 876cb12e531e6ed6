package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/crew-auth/internal/config"
)

func TestTopic(t *testing.T) {
	tests := []struct {
		prefix, sub, want string
	}{
		{"crew/auth", "login_succeeded", "crew/auth/login_succeeded"},
		{"crew/auth/", "/logged_out", "crew/auth/logged_out"},
		{"", "employee_created", "employee_created"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Topic(tt.prefix, tt.sub))
	}
}

func TestBuildClientOptions(t *testing.T) {
	opts := buildClientOptions(config.MQTTConfig{
		BrokerURL: "tcp://broker.local:1883",
		ClientID:  "crew-auth-test",
		Username:  "svc",
		Password:  "secret",
	})

	require.Len(t, opts.Servers, 1)
	assert.Equal(t, "broker.local:1883", opts.Servers[0].Host)
	assert.Equal(t, "crew-auth-test", opts.ClientID)
	assert.Equal(t, "svc", opts.Username)
	assert.True(t, opts.AutoReconnect)
	assert.True(t, opts.CleanSession)
}

func TestNewMQTTPublisher_RequiresBroker(t *testing.T) {
	_, err := NewMQTTPublisher(config.MQTTConfig{}, zap.NewNop())
	assert.Error(t, err)
}
