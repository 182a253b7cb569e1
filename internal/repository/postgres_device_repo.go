package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/loanman/internal/model"
)

// PostgresDeviceRepo はPostgreSQLを使用した機材リポジトリ。
type PostgresDeviceRepo struct {
	db *sql.DB
}

// NewPostgresDeviceRepo はPostgresDeviceRepoを生成する。
func NewPostgresDeviceRepo(db *sql.DB) *PostgresDeviceRepo {
	return &PostgresDeviceRepo{db: db}
}

// Create は機材を作成し、採番されたIDを返す。
func (r *PostgresDeviceRepo) Create(ctx context.Context, device *model.Device) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO devices (device_type, serial_number, is_active)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		device.DeviceType, device.SerialNumber, device.IsActive,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert device: %w", err)
	}
	return id, nil
}

// FindByID は指定IDの機材を取得する。見つからない場合はnilを返す。
func (r *PostgresDeviceRepo) FindByID(ctx context.Context, id int64) (*model.Device, error) {
	device := &model.Device{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, device_type, serial_number, is_active, loaned_by FROM devices WHERE id = $1`,
		id,
	).Scan(&device.ID, &device.DeviceType, &device.SerialNumber, &device.IsActive, &device.LoanedBy)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find device by ID: %w", err)
	}
	return device, nil
}

// List は全機材をID昇順で返す。
func (r *PostgresDeviceRepo) List(ctx context.Context) ([]*model.Device, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, device_type, serial_number, is_active, loaned_by FROM devices ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	var devices []*model.Device
	for rows.Next() {
		device := &model.Device{}
		if err := rows.Scan(
			&device.ID, &device.DeviceType, &device.SerialNumber, &device.IsActive, &device.LoanedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, device)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate devices: %w", err)
	}
	return devices, nil
}

// CountActiveByType は指定タイプの稼働中機材数を返す。
func (r *PostgresDeviceRepo) CountActiveByType(ctx context.Context, deviceType string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM devices WHERE device_type = $1 AND is_active = TRUE`,
		deviceType,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active devices: %w", err)
	}
	return count, nil
}

// SetActive は機材の稼働フラグを更新する。既存の貸出には影響しない。
func (r *PostgresDeviceRepo) SetActive(ctx context.Context, id int64, isActive bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE devices SET is_active = $2 WHERE id = $1`,
		id, isActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update device active flag: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewNotFoundError("機材", id)
	}
	return nil
}

// AssignLoan はloaned_byが未設定の場合に限り機材をユーザーに貸出する。
// 条件付きUPDATEの単一文なので、並行する貸出リクエストが同じ機材を
// 二重に取得することはない。
func (r *PostgresDeviceRepo) AssignLoan(ctx context.Context, deviceID, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE devices SET loaned_by = $2 WHERE id = $1 AND loaned_by IS NULL`,
		deviceID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to assign loan: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}

// ReleaseLoan は機材が指定ユーザーに貸出中の場合に限りloaned_byを解除する。
func (r *PostgresDeviceRepo) ReleaseLoan(ctx context.Context, deviceID, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE devices SET loaned_by = NULL WHERE id = $1 AND loaned_by = $2`,
		deviceID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to release loan: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}

// compile-time interface check
var _ DeviceRepository = (*PostgresDeviceRepo)(nil)
