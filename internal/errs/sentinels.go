// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey indicates a unique constraint violation on a must-be-new insert.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidID indicates a malformed content identifier (wrong length or encoding).
	ErrInvalidID = errors.New("invalid identifier")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTraversalLimit indicates a family traversal exceeded the configured round cap.
	ErrTraversalLimit = errors.New("traversal limit exceeded")
)

// BlockedError reports that a document body is withheld by a moderation block.
// Voluntary distinguishes author/moderator takedowns from compulsory ones;
// the boundary maps them to distinct statuses (410 vs 451).
type BlockedError struct {
	Voluntary bool
}

func (e *BlockedError) Error() string {
	if e.Voluntary {
		return "document blocked: voluntary takedown"
	}
	return "document blocked: compulsory takedown"
}

// IsBlocked reports whether err carries a moderation block and, if so, its voluntary flag.
func IsBlocked(err error) (voluntary, ok bool) {
	var be *BlockedError
	if errors.As(err, &be) {
		return be.Voluntary, true
	}
	return false, false
}

// Validation wraps a human-readable validation failure for client-facing 400s.
func Validation(format string, args ...any) error {
	return fmt.Errorf("validation: "+format, args...)
}
