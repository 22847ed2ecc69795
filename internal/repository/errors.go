package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicate maps unique-constraint violations from either driver.
	ErrDuplicate = errors.New("duplicate record")

	// ErrSessionExpired is returned after the expired row has already
	// been deleted. Expiry is enforced lazily on read, not by the sweep.
	ErrSessionExpired = errors.New("session expired")

	// ErrRefreshReused means the presented refresh jti no longer matches
	// the session. The session row is gone by the time this returns.
	ErrRefreshReused = errors.New("refresh token already used")
)

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	// modernc sqlite reports constraint violations by message only.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
