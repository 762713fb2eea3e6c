package ledger

import (
	"errors"

	"github.com/stayops/backend/internal/domain/shared"
)

// withConflictRetry runs fn and retries it exactly once when it fails with
// an optimistic-lock conflict. Every other error class surfaces to the
// caller untouched.
func withConflictRetry(fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) && domainErr.Code == shared.ErrConcurrencyConflict.Code {
		return fn()
	}
	return err
}
