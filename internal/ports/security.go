package ports

// CredentialMatcher is the single boundary where stored passwords are produced and checked.
// Compare returns a non-nil error when password does not match stored.
type CredentialMatcher interface {
	Hash(password string) (string, error)
	Compare(stored, password string) error
}
