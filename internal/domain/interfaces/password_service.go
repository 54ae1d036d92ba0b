// File: internal/domain/interfaces/password_service.go
package interfaces

// PasswordService hashes and verifies administrative passwords.
type PasswordService interface {
	HashPassword(password string) (string, error)
	// CheckPasswordHash reports whether password matches encodedHash.
	// A malformed hash is an error; a simple mismatch is (false, nil).
	CheckPasswordHash(password, encodedHash string) (bool, error)
}
