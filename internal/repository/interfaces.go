// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/loanman/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成し、採番されたIDを返す。
	Create(ctx context.Context, user *model.User) (int64, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	// Basic認証の照合に使用する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// List は全ユーザーを返す。
	List(ctx context.Context) ([]*model.User, error)

	// DeleteByID は指定IDのユーザーを削除する。
	// 予約や登録などの外部参照が残っている場合はストレージエラーがそのまま返る。
	DeleteByID(ctx context.Context, id int64) error
}

// DeviceRepository は機材データの永続化インターフェース。
type DeviceRepository interface {
	// Create は機材を作成し、採番されたIDを返す。
	Create(ctx context.Context, device *model.Device) (int64, error)

	// FindByID は指定IDの機材を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Device, error)

	// List は全機材を返す。
	List(ctx context.Context) ([]*model.Device, error)

	// CountActiveByType は指定タイプの稼働中機材数を返す。
	CountActiveByType(ctx context.Context, deviceType string) (int, error)

	// SetActive は機材の稼働フラグを更新する。既存の貸出には影響しない。
	SetActive(ctx context.Context, id int64, isActive bool) error

	// AssignLoan はloaned_byが未設定の場合に限り機材をユーザーに貸出する。
	// 条件付きUPDATEの単一文で実行し、更新できた場合にtrueを返す。
	AssignLoan(ctx context.Context, deviceID, userID int64) (bool, error)

	// ReleaseLoan は機材が指定ユーザーに貸出中の場合に限りloaned_byを解除する。
	// 更新できた場合にtrueを返す。
	ReleaseLoan(ctx context.Context, deviceID, userID int64) (bool, error)
}

// PrivilegeRepository は機材タイプ貸出権限の永続化インターフェース。
type PrivilegeRepository interface {
	// Grant は(user, device_type)の貸出権限を付与する。
	Grant(ctx context.Context, userID int64, deviceType string) error

	// HasPrivilege はユーザーが指定機材タイプの貸出権限を持つかを返す。
	HasPrivilege(ctx context.Context, userID int64, deviceType string) (bool, error)
}

// ClassRepository はクラスとクラス登録の永続化インターフェース。
type ClassRepository interface {
	// Create はクラスを作成し、採番されたIDを返す。
	Create(ctx context.Context, name string) (int64, error)

	// List は全クラスを返す。
	List(ctx context.Context) ([]*model.Class, error)

	// Register はユーザーをクラスに登録する。
	Register(ctx context.Context, classID, userID int64) error

	// IsUserRegisteredInAny はユーザーが指定クラス群のいずれかに登録されているかを返す。
	// classIDsはパラメータ化されたANY句でバインドする。
	IsUserRegisteredInAny(ctx context.Context, userID int64, classIDs []int64) (bool, error)
}

// ReservationRepository は予約データの永続化インターフェース。
type ReservationRepository interface {
	// Create は予約を作成し、採番されたIDを返す。
	Create(ctx context.Context, r *model.Reservation) (int64, error)

	// FindByID は指定IDの予約を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Reservation, error)

	// List は全予約をstart_time昇順で返す。
	List(ctx context.Context) ([]*model.Reservation, error)

	// DeleteByID は指定IDの予約を削除する。
	DeleteByID(ctx context.Context, id int64) error

	// FindColliding は指定タイプの予約のうち、safe_zone拡張ウィンドウが
	// 半開区間[start, end)と交差するものを返す。
	// 判定条件: start_time − safe_zone < end AND end_time ≥ start。
	// start == endの瞬時クエリにも対応する。読み取り専用で副作用はない。
	FindColliding(ctx context.Context, deviceType string, start, end time.Time) ([]*model.Reservation, error)
}

// LatenessRepository は返却遅延記録の永続化インターフェース。
type LatenessRepository interface {
	// Create は遅延記録を作成し、採番されたIDを返す。
	Create(ctx context.Context, userID int64) (int64, error)

	// List は全遅延記録を新しい順で返す。
	List(ctx context.Context) ([]*model.Lateness, error)
}
