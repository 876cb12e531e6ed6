package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crew-auth/internal/api/dto"
	"github.com/spec-kit/crew-auth/internal/auth"
	"github.com/spec-kit/crew-auth/internal/service"
	apperrors "github.com/spec-kit/crew-auth/pkg/util"
)

// AdminHandler exposes employee provisioning. Routes are mounted behind
// RequireElevated; the service checks the principal's role again.
type AdminHandler struct {
	adminService *service.AdminService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// CreateEmployee handles POST /admin/employees.
func (h *AdminHandler) CreateEmployee(c *fiber.Ctx) error {
	var req dto.CreateEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload")
	}

	principal, _ := auth.PrincipalFromContext(c)
	employee, err := h.adminService.CreateEmployee(c.UserContext(), principal, service.CreateEmployeeInput{
		ID:   req.ID,
		Name: req.Name,
		Role: req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewEmployeeView(employee))
}

// SetPin handles POST /admin/employees/pin and POST /admin/employees/:id/pin.
func (h *AdminHandler) SetPin(c *fiber.Ctx) error {
	var req dto.SetPinRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload")
	}
	employeeID := req.EmployeeID
	if id := c.Params("id"); id != "" {
		employeeID = id
	}

	principal, _ := auth.PrincipalFromContext(c)
	if err := h.adminService.SetPin(c.UserContext(), principal, employeeID, req.PIN); err != nil {
		return err
	}
	return c.JSON(dto.OKResponse{OK: true})
}

// SetActive handles PATCH /admin/employees/:id/active.
func (h *AdminHandler) SetActive(c *fiber.Ctx) error {
	var req dto.SetActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload")
	}
	if req.IsActive == nil {
		return apperrors.NewInvalidArgument("isActive is required.")
	}

	principal, _ := auth.PrincipalFromContext(c)
	employee, err := h.adminService.SetActive(c.UserContext(), principal, c.Params("id"), *req.IsActive)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewEmployeeView(employee))
}
