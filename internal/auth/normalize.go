package auth

import (
	"regexp"
	"strings"

	apperrors "github.com/spec-kit/crew-auth/pkg/util"
)

const minEmployeeIDLength = 3

var (
	pinPattern     = regexp.MustCompile(`^[0-9]{4}$`)
	nonAlphanumRun = regexp.MustCompile(`[^a-z0-9]+`)
)

// NormalizeLoginID trims and lower-cases an employee ID submitted at sign-in.
func NormalizeLoginID(raw string) (string, error) {
	id := strings.ToLower(strings.TrimSpace(raw))
	if len(id) < minEmployeeIDLength {
		return "", apperrors.NewInvalidArgument("Employee ID is required.")
	}
	return id, nil
}

// CanonicalEmployeeID reduces raw to lower-case ASCII letters and digits, the
// form used as the credential record key. It may return an empty string.
func CanonicalEmployeeID(raw string) string {
	return nonAlphanumRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), "")
}

// NormalizePIN trims raw and requires exactly four decimal digits.
func NormalizePIN(raw string) (string, error) {
	pin := strings.TrimSpace(raw)
	if !pinPattern.MatchString(pin) {
		return "", apperrors.NewInvalidArgument("PIN must be exactly 4 digits.")
	}
	return pin, nil
}
