package auth

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrInvalidInput marks a blank or missing code or token.
	ErrInvalidInput = errors.New("auth: input is required")
	// ErrInvalidInvitation covers unknown and deactivated invitation codes alike.
	ErrInvalidInvitation = errors.New("auth: invalid invitation code")
	// ErrInvalidSession covers unknown and expired session tokens alike.
	ErrInvalidSession = errors.New("auth: invalid or expired session")
	// ErrTokenConflict is returned by the session store when a token is already taken.
	ErrTokenConflict = errors.New("auth: session token already exists")
	// ErrNotFound is the store-level miss.
	ErrNotFound = errors.New("auth: record not found")
)

// isUniqueConstraintError detects uniqueness violations across database vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique constraint") ||
		strings.Contains(lower, "duplicate")
}
