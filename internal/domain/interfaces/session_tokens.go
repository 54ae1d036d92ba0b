// File: internal/domain/interfaces/session_tokens.go
package interfaces

import (
	"github.com/google/uuid"

	"github.com/inkwell-cms/admin-auth/internal/domain/models"
)

// SessionTokenService issues and parses the signed tokens that represent
// an authenticated admin session. Issued only after the full login state
// machine reaches AUTHENTICATED.
type SessionTokenService interface {
	Issue(user *models.User) (string, error)
	// Parse validates signature and expiry and returns the subject.
	Parse(token string) (uuid.UUID, error)
}
