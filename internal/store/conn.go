package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// conn pairs an ent executor (driver or transaction) with its dialect so
// repositories can build dialect-correct statements.
type conn struct {
	dialect.ExecQuerier
	dialect string
}

func (c conn) sql() *entsql.DialectBuilder {
	return entsql.Dialect(c.dialect)
}

// exec runs a statement and returns the number of affected rows.
func (c conn) exec(ctx context.Context, query string, args []any) (int64, error) {
	var res entsql.Result
	if err := c.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// scan runs a query and scans all rows into dest, a pointer to a slice.
func (c conn) scan(ctx context.Context, query string, args []any, dest any) error {
	var rows entsql.Rows
	if err := c.Query(ctx, query, args, &rows); err != nil {
		return err
	}
	defer rows.Close()
	return entsql.ScanSlice(&rows, dest)
}
