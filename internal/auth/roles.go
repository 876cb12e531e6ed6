package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crew-auth/internal/domain"
	apperrors "github.com/spec-kit/crew-auth/pkg/util"
)

// RequireRole ensures the principal holds one of the allowed roles.
// With no roles listed it only requires an authenticated principal.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("Sign in required.")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewPermissionDenied("insufficient role")
		}
		return c.Next()
	}
}

// RequireElevated allows owners and admins.
func RequireElevated() fiber.Handler {
	return RequireRole(domain.RoleOwner, domain.RoleAdmin)
}
