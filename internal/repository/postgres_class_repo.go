package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/loanman/internal/model"
)

// PostgresClassRepo はPostgreSQLを使用したクラスリポジトリ。
type PostgresClassRepo struct {
	db *sql.DB
}

// NewPostgresClassRepo はPostgresClassRepoを生成する。
func NewPostgresClassRepo(db *sql.DB) *PostgresClassRepo {
	return &PostgresClassRepo{db: db}
}

// Create はクラスを作成し、採番されたIDを返す。
func (r *PostgresClassRepo) Create(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO classes (name) VALUES ($1) RETURNING id`,
		name,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert class: %w", err)
	}
	return id, nil
}

// List は全クラスをID昇順で返す。
func (r *PostgresClassRepo) List(ctx context.Context) ([]*model.Class, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM classes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	defer rows.Close()

	var classes []*model.Class
	for rows.Next() {
		class := &model.Class{}
		if err := rows.Scan(&class.ID, &class.Name); err != nil {
			return nil, fmt.Errorf("failed to scan class: %w", err)
		}
		classes = append(classes, class)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate classes: %w", err)
	}
	return classes, nil
}

// Register はユーザーをクラスに登録する。重複登録はUNIQUE制約エラーになる。
func (r *PostgresClassRepo) Register(ctx context.Context, classID, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO class_registrations (class_id, user_id) VALUES ($1, $2)`,
		classID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert class registration: %w", err)
	}
	return nil
}

// IsUserRegisteredInAny はユーザーが指定クラス群のいずれかに登録されているかを返す。
// 任意個のIDをpq.Arrayでパラメータ化してバインドする。文字列連結は使わない。
func (r *PostgresClassRepo) IsUserRegisteredInAny(ctx context.Context, userID int64, classIDs []int64) (bool, error) {
	if len(classIDs) == 0 {
		return false, nil
	}

	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM class_registrations
			WHERE user_id = $1 AND class_id = ANY($2)
		)`,
		userID, pq.Array(classIDs),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check class registration: %w", err)
	}
	return exists, nil
}

// compile-time interface check
var _ ClassRepository = (*PostgresClassRepo)(nil)
