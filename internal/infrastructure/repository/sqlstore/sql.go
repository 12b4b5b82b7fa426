package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// namedExec binds :name parameters and rebinds them for the driver in use.
func namedExec(ctx context.Context, tx *sqlx.Tx, query string, arg any) error {
	bound, args, err := sqlx.Named(query, arg)
	if err != nil {
		return crerr.Wrap(err, "bind named query")
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(bound), args...); err != nil {
		return err
	}
	return nil
}

// storedTime normalizes to UTC so postgres and sqlite round-trip the same
// instant regardless of column type.
func storedTime(t time.Time) time.Time {
	return t.UTC()
}

func storedTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
