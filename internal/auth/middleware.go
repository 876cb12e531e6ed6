package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crew-auth/internal/domain"
	apperrors "github.com/spec-kit/crew-auth/pkg/util"
)

const principalKey = "auth_principal"

// Principal is the caller as asserted by a verified, unrevoked token.
type Principal struct {
	EmployeeID string
	Name       string
	Role       domain.Role
	TokenID    string
	ExpiresAt  time.Time
}

// Identity returns the principal's identity.
func (p *Principal) Identity() domain.Identity {
	return domain.Identity{EmployeeID: p.EmployeeID, Name: p.Name, Role: p.Role}
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens  *TokenManager
	revoked RevocationList
}

// NewAuthMiddleware constructs middleware. revoked may be nil to skip the revocation check.
func NewAuthMiddleware(tokens *TokenManager, revoked RevocationList) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, revoked: revoked}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthenticated("Sign in required.")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthenticated("invalid authorization header")
	}

	claims, err := m.tokens.Parse(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthenticated("invalid token")
	}

	if m.revoked != nil {
		revoked, err := m.revoked.IsRevoked(c.UserContext(), claims.ID)
		if err != nil {
			return apperrors.NewStoreUnavailable(err)
		}
		if revoked {
			return apperrors.NewUnauthenticated("token revoked")
		}
	}

	principal := &Principal{
		EmployeeID: claims.EmployeeID,
		Name:       claims.Name,
		Role:       claims.Role,
		TokenID:    claims.ID,
	}
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Time
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
