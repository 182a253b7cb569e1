package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/loanman/internal/model"
)

// PostgresReservationRepo はPostgreSQLを使用した予約リポジトリ。
type PostgresReservationRepo struct {
	db *sql.DB
}

// NewPostgresReservationRepo はPostgresReservationRepoを生成する。
func NewPostgresReservationRepo(db *sql.DB) *PostgresReservationRepo {
	return &PostgresReservationRepo{db: db}
}

const reservationColumns = `id, device_type, start_time, end_time, device_count, safe_zone_seconds, class_id, user_id, created_at`

// Create は予約を作成し、採番されたIDを返す。
func (r *PostgresReservationRepo) Create(ctx context.Context, res *model.Reservation) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO reservations (device_type, start_time, end_time, device_count, safe_zone_seconds, class_id, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		res.DeviceType, res.StartTime, res.EndTime, res.DeviceCount,
		int64(res.SafeZone/time.Second), res.ClassID, res.UserID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert reservation: %w", err)
	}
	return id, nil
}

// FindByID は指定IDの予約を取得する。見つからない場合はnilを返す。
func (r *PostgresReservationRepo) FindByID(ctx context.Context, id int64) (*model.Reservation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)

	res, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find reservation by ID: %w", err)
	}
	return res, nil
}

// List は全予約をstart_time昇順で返す。
func (r *PostgresReservationRepo) List(ctx context.Context) ([]*model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations ORDER BY start_time, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()
	return collectReservations(rows)
}

// DeleteByID は指定IDの予約を削除する。
func (r *PostgresReservationRepo) DeleteByID(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewNotFoundError("予約", id)
	}
	return nil
}

// FindColliding は指定タイプの予約のうち、safe_zone拡張ウィンドウが
// 半開区間[start, end)と交差するものを返す。
// 条件: start_time − safe_zone < end AND end_time ≥ start。
// start == endの場合は、拡張ウィンドウがその瞬間を含む予約が選択される。
func (r *PostgresReservationRepo) FindColliding(ctx context.Context, deviceType string, start, end time.Time) ([]*model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reservationColumns+`
		 FROM reservations
		 WHERE device_type = $1
		   AND start_time - make_interval(secs => safe_zone_seconds) < $3
		   AND end_time >= $2
		 ORDER BY start_time, id`,
		deviceType, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query colliding reservations: %w", err)
	}
	defer rows.Close()
	return collectReservations(rows)
}

// rowScanner は*sql.Rowと*sql.Rowsの共通Scanインターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*model.Reservation, error) {
	res := &model.Reservation{}
	var safeZoneSeconds int64
	if err := row.Scan(
		&res.ID, &res.DeviceType, &res.StartTime, &res.EndTime, &res.DeviceCount,
		&safeZoneSeconds, &res.ClassID, &res.UserID, &res.CreatedAt,
	); err != nil {
		return nil, err
	}
	res.SafeZone = time.Duration(safeZoneSeconds) * time.Second
	// 全タイムスタンプをUTCに正規化して返す
	res.StartTime = res.StartTime.UTC()
	res.EndTime = res.EndTime.UTC()
	res.CreatedAt = res.CreatedAt.UTC()
	return res, nil
}

func collectReservations(rows *sql.Rows) ([]*model.Reservation, error) {
	var reservations []*model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reservations: %w", err)
	}
	return reservations, nil
}

// compile-time interface check
var _ ReservationRepository = (*PostgresReservationRepo)(nil)
