package mysql

import (
	"context"
	"database/sql"
	"fmt"
)

// ApprovalRepo stores approved review ids, one row per id.
type ApprovalRepo struct{ db *sql.DB }

func New(db *sql.DB) *ApprovalRepo { return &ApprovalRepo{db: db} }

func (r *ApprovalRepo) Load(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, selectApprovedSQL)
	if err != nil {
		return nil, fmt.Errorf("select approvals: %w", err)
	}
	defer rows.Close()

	out := map[string]struct{}{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ApprovalRepo) Set(ctx context.Context, id string, approved bool) error {
	q := deleteApprovalSQL
	if approved {
		q = insertApprovalSQL
	}
	if _, err := r.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("set approval %s: %w", id, err)
	}
	return nil
}
