package database

import (
	"context"

	"github.com/charmbracelet/roster/pkg/db"
)

// execOne executes an update or delete that must touch exactly one row. It
// returns db.ErrRecordNotFound when nothing matched.
func execOne(ctx context.Context, h db.Handler, query string, args ...interface{}) error {
	n, err := execCount(ctx, h, query, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return db.ErrRecordNotFound
	}
	return nil
}

func execCount(ctx context.Context, h db.Handler, query string, args ...interface{}) (int64, error) {
	res, err := h.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err //nolint:wrapcheck
	}
	return res.RowsAffected() //nolint:wrapcheck
}
