package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crew-auth/internal/api/dto"
	"github.com/spec-kit/crew-auth/internal/auth"
	"github.com/spec-kit/crew-auth/internal/service"
	apperrors "github.com/spec-kit/crew-auth/pkg/util"
)

// AuthHandler exposes the public roster and the PIN sign-in flow.
type AuthHandler struct {
	authService  *service.AuthService
	adminService *service.AdminService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, adminService *service.AdminService) *AuthHandler {
	return &AuthHandler{authService: authService, adminService: adminService}
}

// ListEmployees handles GET /auth/employees.
func (h *AuthHandler) ListEmployees(c *fiber.Ctx) error {
	roster, err := h.adminService.ListForLogin(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.RosterResponse{Employees: roster})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload")
	}

	result, err := h.authService.Login(c.UserContext(), req.EmployeeID, req.PIN)
	if err != nil {
		return err
	}

	return c.JSON(dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      dto.NewUserView(result.User),
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	if err := h.authService.Logout(c.UserContext(), principal); err != nil {
		return err
	}
	return c.JSON(dto.OKResponse{OK: true})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("Sign in required.")
	}
	return c.JSON(dto.MeResponse{User: dto.NewUserView(principal.Identity())})
}
