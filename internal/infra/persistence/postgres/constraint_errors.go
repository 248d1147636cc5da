package postgres

import (
	"context"
	"strings"

	domainerrors "usersvc/internal/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

func isUniqueConstraintViolation(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	// Drivers that do not translate errors still report the violation in the message.
	errMsg := strings.ToLower(err.Error())

	return strings.Contains(errMsg, "unique constraint") ||
		strings.Contains(errMsg, "duplicate key")
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// translateError maps a raw gorm error onto the domain error taxonomy.
func translateError(err error, details string) error {
	switch {
	case err == nil:
		return nil
	case isTimeout(err):
		return domainerrors.ErrServiceUnavailable.WrapMessage(details)
	case isUniqueConstraintViolation(err):
		return domainerrors.ErrUserAlreadyExists.WrapMessage("username or email already exists")
	default:
		return domainerrors.NewDatabaseExecuteError(err, details)
	}
}
