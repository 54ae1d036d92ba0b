// File: internal/domain/interfaces/challenge_store.go
package interfaces

import (
	"context"
	"time"

	"github.com/inkwell-cms/admin-auth/internal/domain/models"
)

// ChallengeStore holds pending login challenges server-side, keyed by an
// opaque challenge token and bounded by a TTL. The transport layer never
// sees challenge contents, only the token.
type ChallengeStore interface {
	Put(ctx context.Context, token string, challenge *models.PendingChallenge, ttl time.Duration) error
	// Get returns ErrChallengeNotFound for an unknown or expired token.
	Get(ctx context.Context, token string) (*models.PendingChallenge, error)
	Delete(ctx context.Context, token string) error
}
