package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrPinMismatch is returned by Compare when the PIN does not match the hash.
var ErrPinMismatch = errors.New("pin mismatch")

// PinHasher salts and hashes PINs with bcrypt.
type PinHasher struct {
	Cost int
}

// NewPinHasher clamps cost to the range bcrypt accepts.
func NewPinHasher(cost int) *PinHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &PinHasher{Cost: cost}
}

// Hash returns a salted bcrypt hash of pin.
func (h *PinHasher) Hash(pin string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), h.Cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare checks pin against hashed. bcrypt compares the derived keys in constant time.
// A wrong PIN yields ErrPinMismatch; a malformed hash yields the bcrypt error.
func (h *PinHasher) Compare(hashed, pin string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pin))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPinMismatch
	}
	return err
}
