package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

func execAffected(ctx context.Context, db sqlx.ExecerContext, op, q string, args ...interface{}) (int64, error) {
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		if mapped := mapError(err); mapped != err {
			return 0, mapped
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// count only takes table names from this package, never user input.
func count(ctx context.Context, db sqlx.QueryerContext, table string) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, db, &n, `SELECT COUNT(*) FROM `+table); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
