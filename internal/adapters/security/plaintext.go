package security

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/viralforge/facility-assistant/internal/domain"
	"github.com/viralforge/facility-assistant/internal/ports"
)

const (
	SchemePlaintext = "plaintext"
	SchemeBcrypt    = "bcrypt"
)

// PlaintextMatcher keeps passwords as entered, which is the format existing credential stores use.
type PlaintextMatcher struct{}

func (PlaintextMatcher) Hash(password string) (string, error) {
	return password, nil
}

func (PlaintextMatcher) Compare(stored, password string) error {
	if subtle.ConstantTimeCompare([]byte(stored), []byte(password)) != 1 {
		return domain.ErrInvalidCredentials
	}
	return nil
}

// NewMatcher picks the credential matcher for a configured scheme name.
func NewMatcher(scheme string, bcryptCost int) (ports.CredentialMatcher, error) {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", SchemePlaintext:
		return PlaintextMatcher{}, nil
	case SchemeBcrypt:
		return NewBcryptMatcher(bcryptCost), nil
	default:
		return nil, fmt.Errorf("unsupported password scheme %q", scheme)
	}
}
