package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/loanman/internal/model"
)

// PostgresLatenessRepo はPostgreSQLを使用した返却遅延記録リポジトリ。
type PostgresLatenessRepo struct {
	db *sql.DB
}

// NewPostgresLatenessRepo はPostgresLatenessRepoを生成する。
func NewPostgresLatenessRepo(db *sql.DB) *PostgresLatenessRepo {
	return &PostgresLatenessRepo{db: db}
}

// Create は遅延記録を作成し、採番されたIDを返す。
func (r *PostgresLatenessRepo) Create(ctx context.Context, userID int64) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO latenesses (user_id) VALUES ($1) RETURNING id`,
		userID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert lateness: %w", err)
	}
	return id, nil
}

// List は全遅延記録を新しい順で返す。
func (r *PostgresLatenessRepo) List(ctx context.Context) ([]*model.Lateness, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, created_at FROM latenesses ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list latenesses: %w", err)
	}
	defer rows.Close()

	var latenesses []*model.Lateness
	for rows.Next() {
		l := &model.Lateness{}
		if err := rows.Scan(&l.ID, &l.UserID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lateness: %w", err)
		}
		l.CreatedAt = l.CreatedAt.UTC()
		latenesses = append(latenesses, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate latenesses: %w", err)
	}
	return latenesses, nil
}

// compile-time interface check
var _ LatenessRepository = (*PostgresLatenessRepo)(nil)
