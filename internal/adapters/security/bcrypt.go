package security

import (
	"errors"

	"github.com/viralforge/facility-assistant/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// BcryptMatcher stores bcrypt hashes instead of the raw password.
type BcryptMatcher struct {
	cost int
}

func NewBcryptMatcher(cost int) *BcryptMatcher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptMatcher{cost: cost}
}

func (m *BcryptMatcher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare checks password against a bcrypt hash. A stored value that is not a bcrypt hash was
// written under the plaintext scheme and is compared as plaintext, so switching an existing store to
// bcrypt keeps old accounts usable; they move to a hash on their next password reset.
func (m *BcryptMatcher) Compare(stored, password string) error {
	if _, err := bcrypt.Cost([]byte(stored)); err != nil {
		return PlaintextMatcher{}.Compare(stored, password)
	}
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return domain.ErrInvalidCredentials
	default:
		return errors.Join(domain.ErrInvalidCredentials, err)
	}
}
