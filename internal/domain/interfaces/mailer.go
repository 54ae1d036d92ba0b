// File: internal/domain/interfaces/mailer.go
package interfaces

import "context"

// Mailer delivers human-readable messages to users. Implementations wrap
// send failures in domain errors so callers can offer an alternate factor.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
