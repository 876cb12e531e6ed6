package auth

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/crew-auth/internal/domain"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	now := time.Date(2024, 2, 3, 4, 5, 6, 700, time.UTC)
	tm := NewTokenManager("s3cret", 30*time.Minute, "crew-auth").WithClock(func() time.Time { return now })
	identity := domain.Identity{EmployeeID: "ann", Name: "Ann Driver", Role: domain.RoleDriver}

	assertion, err := tm.Issue(identity)
	require.NoError(t, err)
	assert.Equal(t, now.Truncate(time.Second), assertion.IssuedAt)
	assert.Equal(t, assertion.IssuedAt.Add(30*time.Minute), assertion.ExpiresAt)
	assert.NotEmpty(t, assertion.ID)

	claims, err := tm.Parse(assertion.Token)
	require.NoError(t, err)
	assert.Equal(t, identity, claims.Identity())
	assert.Equal(t, "ann", claims.Subject)
	assert.Equal(t, "crew-auth", claims.Issuer)
	assert.Equal(t, assertion.ID, claims.ID)
	require.NotNil(t, claims.IssuedAt)
	assert.Equal(t, assertion.IssuedAt.Unix(), claims.IssuedAt.Unix())
}

func TestTokenManager_NoSecretMaterialInClaims(t *testing.T) {
	tm := NewTokenManager("s3cret", time.Hour, "crew-auth")
	assertion, err := tm.Issue(domain.Identity{EmployeeID: "ann", Name: "Ann", Role: domain.RoleDriver})
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(assertion.Token, claims)
	require.NoError(t, err)

	for key := range claims {
		lower := strings.ToLower(key)
		assert.NotContains(t, lower, "pin")
		assert.NotContains(t, lower, "hash")
	}
	assert.ElementsMatch(t,
		[]string{"employee_id", "role", "name", "jti", "sub", "iss", "iat", "nbf", "exp"},
		keys(claims))
}

func TestTokenManager_Rejects(t *testing.T) {
	now := time.Now()
	tm := NewTokenManager("s3cret", time.Hour, "crew-auth")
	identity := domain.Identity{EmployeeID: "ann", Name: "Ann", Role: domain.RoleDriver}
	good, err := tm.Issue(identity)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := NewTokenManager("s3cret", time.Hour, "crew-auth").WithClock(func() time.Time { return now.Add(2 * time.Hour) })
		_, err := later.Parse(good.Token)
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewTokenManager("other", time.Hour, "crew-auth").Parse(good.Token)
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := NewTokenManager("s3cret", time.Hour, "someone-else").Parse(good.Token)
		assert.Error(t, err)
	})

	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(good.Token, ".")
		require.Len(t, parts, 3)
		forged, err := NewTokenManager("attacker", time.Hour, "crew-auth").
			Issue(domain.Identity{EmployeeID: "ann", Name: "Ann", Role: domain.RoleOwner})
		require.NoError(t, err)
		mixed := strings.Split(forged.Token, ".")[1]
		_, err = tm.Parse(parts[0] + "." + mixed + "." + parts[2])
		assert.Error(t, err)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			EmployeeID: "ann",
			Role:       domain.RoleOwner,
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        "x",
				Issuer:    "crew-auth",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		})
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = tm.Parse(raw)
		assert.Error(t, err)
	})

	t.Run("unknown role", func(t *testing.T) {
		bad, err := tm.Issue(domain.Identity{EmployeeID: "ann", Name: "Ann", Role: domain.Role("mechanic")})
		require.NoError(t, err)
		_, err = tm.Parse(bad.Token)
		assert.Error(t, err)
	})
}

func keys(m jwt.MapClaims) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
