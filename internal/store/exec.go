package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/kiln/internal/render"
)

// Execute runs a rendered query against the store and materializes the
// result set as ordered column maps. Parameters bind by name, matching
// the :name placeholders the sqlite renderer emits.
func (s *Store) Execute(ctx context.Context, q *render.RenderedQuery) ([]map[string]any, error) {
	args := make([]any, 0, len(q.Params))
	for name, value := range q.Params {
		args = append(args, sql.Named(name, value))
	}

	rows, err := s.db.QueryContext(ctx, q.SQL, args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			// The sqlite driver returns TEXT as []byte through any.
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
