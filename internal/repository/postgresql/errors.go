package postgresql

import (
	"errors"
	"fmt"
	"strings"

	entity "game-exchange/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// mapError turns driver failures into the entity error kinds. Errors that
// already carry a kind pass through untouched.
func mapError(what string, err error) error {
	if err == nil {
		return nil
	}
	var known *entity.Error
	if errors.As(err, &known) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.NotFoundError(what + " not found")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return entity.ConflictError(what + " already exists")
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique constraint failed") || strings.Contains(msg, "duplicate key") {
		return entity.ConflictError(what + " already exists")
	}
	return fmt.Errorf("%s: %w", what, err)
}
