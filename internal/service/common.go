package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"stampjoy/internal/repository"
)

const (
	listDefaultPage = 1
	listDefaultSize = 20
	listMaxPageSize = 200

	// scanMaxAttempts bounds the retry loop on write conflicts before
	// the scan is surfaced as ErrTransientConflict.
	scanMaxAttempts = 3
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("operation not allowed for this identity")
	// ErrTransientConflict means concurrent writes kept winning the race.
	// The caller may safely retry: accepted scans are replay-protected.
	ErrTransientConflict = errors.New("transient write conflict, retry")
)

func normalizePagination(page, pageSize int) (int, int) {
	if page <= 0 {
		page = listDefaultPage
	}
	if pageSize <= 0 {
		pageSize = listDefaultSize
	}
	if pageSize > listMaxPageSize {
		pageSize = listMaxPageSize
	}
	return page, pageSize
}

func strPtr(v string) *string {
	return &v
}

func trimStringPtr(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// isRetryableWriteError reports whether a transaction failed in a way
// that a fresh re-read plus re-apply can resolve: a lost optimistic
// write, a serialization failure, or a deadlock abort.
func isRetryableWriteError(err error) bool {
	if errors.Is(err, repository.ErrConflict) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

func withConflictRetry(ctx context.Context, attempts int, fn func(ctx context.Context) error) error {
	if attempts <= 0 {
		attempts = scanMaxAttempts
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if !isRetryableWriteError(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(i+1) * 10 * time.Millisecond):
		}
	}
	return ErrTransientConflict
}
