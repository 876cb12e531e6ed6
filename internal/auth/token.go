package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/crew-auth/internal/domain"
)

// TokenManager issues and validates signed identity assertions (HS256 JWTs).
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenManager builds a new manager. The secret is process-wide and loaded at startup.
func NewTokenManager(secret string, ttl time.Duration, issuer string) *TokenManager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, issuer: issuer, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	tm.now = now
	return tm
}

// Claims describes the JWT payload. It carries identity only, never secret material.
type Claims struct {
	EmployeeID string      `json:"employee_id"`
	Role       domain.Role `json:"role"`
	Name       string      `json:"name"`
	jwt.RegisteredClaims
}

// Identity returns the identity asserted by the claims.
func (c *Claims) Identity() domain.Identity {
	return domain.Identity{EmployeeID: c.EmployeeID, Name: c.Name, Role: c.Role}
}

// SignedAssertion is an issued token and its metadata.
type SignedAssertion struct {
	Token     string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issue mints an assertion for a verified identity.
func (tm *TokenManager) Issue(identity domain.Identity) (SignedAssertion, error) {
	issuedAt := tm.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(tm.ttl)
	id := uuid.NewString()

	claims := &Claims{
		EmployeeID: identity.EmployeeID,
		Role:       identity.Role,
		Name:       identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   identity.EmployeeID,
			Issuer:    tm.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return SignedAssertion{}, err
	}
	return SignedAssertion{Token: tokenString, ID: id, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// Parse validates signature, issuer and lifetime and returns the claims.
func (tm *TokenManager) Parse(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tm.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.EmployeeID == "" || claims.ID == "" {
		return nil, errors.New("token missing required claims")
	}
	if !claims.Role.Valid() {
		return nil, errors.New("token carries unknown role")
	}
	return claims, nil
}
