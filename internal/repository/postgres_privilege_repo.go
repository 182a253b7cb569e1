package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresPrivilegeRepo はPostgreSQLを使用した貸出権限リポジトリ。
type PostgresPrivilegeRepo struct {
	db *sql.DB
}

// NewPostgresPrivilegeRepo はPostgresPrivilegeRepoを生成する。
func NewPostgresPrivilegeRepo(db *sql.DB) *PostgresPrivilegeRepo {
	return &PostgresPrivilegeRepo{db: db}
}

// Grant は(user, device_type)の貸出権限を付与する。
// 重複付与はUNIQUE制約エラーになる。
func (r *PostgresPrivilegeRepo) Grant(ctx context.Context, userID int64, deviceType string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO device_type_privileges (user_id, device_type) VALUES ($1, $2)`,
		userID, deviceType,
	)
	if err != nil {
		return fmt.Errorf("failed to insert privilege: %w", err)
	}
	return nil
}

// HasPrivilege はユーザーが指定機材タイプの貸出権限を持つかを返す。
func (r *PostgresPrivilegeRepo) HasPrivilege(ctx context.Context, userID int64, deviceType string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM device_type_privileges
			WHERE user_id = $1 AND device_type = $2
		)`,
		userID, deviceType,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check privilege: %w", err)
	}
	return exists, nil
}

// compile-time interface check
var _ PrivilegeRepository = (*PostgresPrivilegeRepo)(nil)
