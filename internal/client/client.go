package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crew-auth/internal/api/dto"
	"github.com/spec-kit/crew-auth/internal/domain"
	apperrors "github.com/spec-kit/crew-auth/pkg/util"
)

const defaultTimeout = 10 * time.Second

// Client calls the crew-auth HTTP API.
type Client struct {
	baseURL string
	timeout time.Duration
}

// New returns a client for the server at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), timeout: timeout}
}

// ListEmployees fetches the public sign-in roster.
func (c *Client) ListEmployees(ctx context.Context) ([]domain.RosterEntry, error) {
	var out dto.RosterResponse
	if err := c.do(ctx, fiber.MethodGet, "/auth/employees", "", nil, &out); err != nil {
		return nil, err
	}
	return out.Employees, nil
}

// Login exchanges an employee ID and PIN for a signed assertion.
func (c *Client) Login(ctx context.Context, employeeID, pin string) (*dto.LoginResponse, error) {
	var out dto.LoginResponse
	req := dto.LoginRequest{EmployeeID: employeeID, PIN: pin}
	if err := c.do(ctx, fiber.MethodPost, "/auth/login", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes token on the server.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, fiber.MethodPost, "/auth/logout", token, nil, &dto.OKResponse{})
}

// Me returns the identity asserted by token.
func (c *Client) Me(ctx context.Context, token string) (*dto.UserView, error) {
	var out dto.MeResponse
	if err := c.do(ctx, fiber.MethodGet, "/auth/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// CreateEmployee provisions or overwrites an employee record.
func (c *Client) CreateEmployee(ctx context.Context, token string, req dto.CreateEmployeeRequest) (*dto.EmployeeView, error) {
	var out dto.EmployeeView
	if err := c.do(ctx, fiber.MethodPost, "/admin/employees", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetPin sets an employee's PIN.
func (c *Client) SetPin(ctx context.Context, token, employeeID, pin string) error {
	req := dto.SetPinRequest{EmployeeID: employeeID, PIN: pin}
	return c.do(ctx, fiber.MethodPost, "/admin/employees/pin", token, req, &dto.OKResponse{})
}

// SetActive activates or deactivates an employee.
func (c *Client) SetActive(ctx context.Context, token, employeeID string, active bool) (*dto.EmployeeView, error) {
	var out dto.EmployeeView
	path := "/admin/employees/" + url.PathEscape(employeeID) + "/active"
	if err := c.do(ctx, fiber.MethodPatch, path, token, dto.SetActiveRequest{IsActive: &active}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Trucks lists known truck numbers.
func (c *Client) Trucks(ctx context.Context, token string) ([]string, error) {
	var out dto.TrucksResponse
	if err := c.do(ctx, fiber.MethodGet, "/catalog/trucks", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Trucks, nil
}

// Routes lists routes and their sites.
func (c *Client) Routes(ctx context.Context, token string) ([]domain.Route, error) {
	var out dto.RoutesResponse
	if err := c.do(ctx, fiber.MethodGet, "/catalog/routes", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Routes, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	agent := newAgent(method, c.baseURL+path)
	agent.Timeout(c.deadline(ctx))
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	if body != nil {
		agent.JSON(body)
	}

	status, payload, errs := agent.Bytes()
	if len(errs) > 0 {
		return apperrors.NewStoreUnavailable(errors.Join(errs...))
	}
	if status >= fiber.StatusBadRequest {
		return decodeError(status, payload)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

func (c *Client) deadline(ctx context.Context) time.Duration {
	timeout := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if remaining := time.Until(dl); remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}

func newAgent(method, target string) *fiber.Agent {
	switch method {
	case fiber.MethodPost:
		return fiber.Post(target)
	case fiber.MethodPatch:
		return fiber.Patch(target)
	default:
		return fiber.Get(target)
	}
}

// decodeError rebuilds the server's DomainError from the error envelope.
func decodeError(status int, payload []byte) error {
	var envelope dto.ErrorBody
	if err := json.Unmarshal(payload, &envelope); err != nil || envelope.Error.Code == "" {
		code := apperrors.CodeInternal
		if status == fiber.StatusServiceUnavailable {
			code = apperrors.CodeStoreUnavailable
		}
		return apperrors.NewDomainError(code, strings.TrimSpace(string(payload)), status, nil)
	}
	return apperrors.NewDomainError(envelope.Error.Code, envelope.Error.Message,
		apperrors.StatusForCode(envelope.Error.Code), envelope.Error.Details)
}
