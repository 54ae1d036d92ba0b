// File: internal/infrastructure/security/token_hash.go
package security

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashToken derives the storable one-way hash of a bearer token. Raw
// trusted-device tokens and email codes never reach the database; only
// this hash does.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
