// Package service declares the credential and token ports the usecase layer
// depends on. Implementations live under internal/infra/auth.
package service

// PasswordHasher turns plaintext passwords into self-describing salted hashes
// and verifies candidates against them.
type PasswordHasher interface {
	// Hash returns a new salted hash. Inputs the algorithm cannot accept
	// are reported as domainerrors.ErrValidationFailed.
	Hash(password string) (string, error)

	// Check reports whether password matches hash in constant time.
	// An empty or malformed hash never matches.
	Check(password, hash string) bool
}
