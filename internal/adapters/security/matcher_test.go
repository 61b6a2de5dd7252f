package security

import (
	"errors"
	"testing"

	"github.com/viralforge/facility-assistant/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptMatcher(t *testing.T) {
	t.Parallel()

	m := NewBcryptMatcher(bcrypt.MinCost)
	stored, err := m.Hash("password123")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if stored == "password123" {
		t.Fatalf("bcrypt must not store the raw password")
	}
	if err := m.Compare(stored, "password123"); err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if err := m.Compare(stored, "nope"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestBcryptMatcherAcceptsPlaintextStoredValues(t *testing.T) {
	t.Parallel()

	m := NewBcryptMatcher(bcrypt.MinCost)
	if err := m.Compare("password123", "password123"); err != nil {
		t.Fatalf("a store written under the plaintext scheme should still log in, got %v", err)
	}
	if err := m.Compare("password123", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if err := m.Compare("", "password123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("empty stored value must not match, got %v", err)
	}
}

func TestNewMatcher(t *testing.T) {
	t.Parallel()

	plain, err := NewMatcher("", 0)
	if err != nil {
		t.Fatalf("default scheme failed: %v", err)
	}
	if err := plain.Compare("pw", "pw"); err != nil {
		t.Fatalf("plaintext compare failed: %v", err)
	}
	if err := plain.Compare("pw", "PW"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("passwords are case-sensitive, got %v", err)
	}
	if _, err := NewMatcher("BCRYPT", 4); err != nil {
		t.Fatalf("bcrypt scheme failed: %v", err)
	}
	if _, err := NewMatcher("md5", 0); err == nil {
		t.Fatalf("unknown scheme should fail")
	}
}
