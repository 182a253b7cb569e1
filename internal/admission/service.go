package admission

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/loanman/internal/model"
)

// DeviceStore は許可判定が必要とする機材データ操作のインターフェース。
type DeviceStore interface {
	// FindByID は指定IDの機材を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Device, error)
	// CountActiveByType は指定タイプの稼働中機材数を返す。
	CountActiveByType(ctx context.Context, deviceType string) (int, error)
	// AssignLoan はloaned_byが未設定の場合に限り貸出を記録し、成功したかを返す。
	AssignLoan(ctx context.Context, deviceID, userID int64) (bool, error)
	// ReleaseLoan は指定ユーザーへの貸出中の場合に限り解除し、成功したかを返す。
	ReleaseLoan(ctx context.Context, deviceID, userID int64) (bool, error)
}

// UserFinder はユーザー照会のインターフェース。
type UserFinder interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// PrivilegeChecker は貸出権限照合のインターフェース。
type PrivilegeChecker interface {
	// HasPrivilege はユーザーが指定機材タイプの貸出権限を持つかを返す。
	HasPrivilege(ctx context.Context, userID int64, deviceType string) (bool, error)
}

// ReservationStore は許可判定が必要とする予約データ操作のインターフェース。
type ReservationStore interface {
	// FindColliding はsafe_zone拡張ウィンドウが[start, end)と交差する同タイプの予約を返す。
	FindColliding(ctx context.Context, deviceType string, start, end time.Time) ([]*model.Reservation, error)
	// Create は予約を作成し、採番されたIDを返す。
	Create(ctx context.Context, r *model.Reservation) (int64, error)
}

// MetricsRecorder は許可判定メトリクスの記録インターフェース。
type MetricsRecorder interface {
	RecordAdmissionGranted(operation string)
	RecordAdmissionDenied(operation string, reason string)
	RecordAdmissionLatency(operation string, d time.Duration)
}

// Service は貸出・返却・予約の許可判定を編成するサービス層。
// read-then-writeの判定シーケンスは機材タイプごとのロックで直列化される。
type Service struct {
	devices      DeviceStore
	users        UserFinder
	privileges   PrivilegeChecker
	reservations ReservationStore
	classes      ClassMembershipChecker
	metrics      MetricsRecorder

	locks *typeLocks
	now   func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnil可（記録しない）。
func NewService(
	devices DeviceStore,
	users UserFinder,
	privileges PrivilegeChecker,
	reservations ReservationStore,
	classes ClassMembershipChecker,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		devices:      devices,
		users:        users,
		privileges:   privileges,
		reservations: reservations,
		classes:      classes,
		metrics:      metrics,
		locks:        newTypeLocks(),
		now:          time.Now,
	}
}

// LoanResult は貸出・返却コミットの結果を表す。
type LoanResult struct {
	DeviceID int64 `json:"device_id"`
	UserID   int64 `json:"user_id"`
}

// Loan は単一機材の貸出リクエストを判定し、許可された場合はコミットする。
//
// 状態遷移: Requested → PrivilegeChecked → AvailabilityChecked → SafetyChecked → Committed。
// 各チェックポイントで失敗すると理由コード付きのDenialErrorで短絡する。
func (s *Service) Loan(ctx context.Context, deviceID, userID int64) (*LoanResult, error) {
	start := s.now()
	defer s.recordLatency("loan", start)

	device, err := s.devices.FindByID(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("機材の取得に失敗しました: %w", err)
	}
	if device == nil {
		return nil, model.NewNotFoundError("機材", deviceID)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewNotFoundError("ユーザー", userID)
	}

	// 1. 権限チェック
	privileged, err := s.privileges.HasPrivilege(ctx, userID, device.DeviceType)
	if err != nil {
		return nil, fmt.Errorf("貸出権限の照合に失敗しました: %w", err)
	}
	if !privileged {
		return nil, s.deny("loan", model.NewNotPrivilegedError(userID, device.DeviceType))
	}

	// 2. 在庫チェック: 貸出中なら現在の保持者を添付して拒否
	if device.LoanedBy != nil {
		holder, err := s.holderProfile(ctx, *device.LoanedBy)
		if err != nil {
			return nil, err
		}
		return nil, s.deny("loan", model.NewAlreadyLoanedError(holder))
	}

	// 3〜4. 安全チェックとコミットは同一タイプ内で直列化する
	lock := s.locks.get(device.DeviceType)
	lock.Lock()
	defer lock.Unlock()

	// 3. 安全チェック: 瞬時クエリ（start == end == now）で衝突予約を収集
	now := s.now().UTC()
	colliding, err := s.reservations.FindColliding(ctx, device.DeviceType, now, now)
	if err != nil {
		return nil, fmt.Errorf("衝突予約の取得に失敗しました: %w", err)
	}

	active, err := s.devices.CountActiveByType(ctx, device.DeviceType)
	if err != nil {
		return nil, fmt.Errorf("稼働機材数の取得に失敗しました: %w", err)
	}

	remaining := Remaining(active, colliding, 1)
	if remaining < 0 {
		if len(colliding) == 0 {
			// 予約と無関係に稼働機材数が既存の貸出を賄えない。
			// 交差すべきクラスが存在しないためオーバーライドは適用できない。
			return nil, s.deny("loan", model.NewNoDevicesAvailableError(device.DeviceType))
		}

		override, err := resolveOverride(ctx, s.classes, userID, colliding)
		if err != nil {
			return nil, err
		}
		if !override {
			return nil, s.deny("loan", model.NewCapacityExceededError(colliding))
		}

		slog.Info("クラス共有オーバーライドにより超過貸出を許可します",
			slog.Int64("user_id", userID),
			slog.Int64("device_id", deviceID),
			slog.Int("remaining", remaining),
		)
	}

	// 4. コミット: 条件付きUPDATEなので貸出中への上書きは起こらない
	committed, err := s.devices.AssignLoan(ctx, deviceID, userID)
	if err != nil {
		return nil, fmt.Errorf("貸出のコミットに失敗しました: %w", err)
	}
	if !committed {
		// ロック外で先行した貸出に敗れた場合。現在の保持者を引き直して拒否する。
		refreshed, err := s.devices.FindByID(ctx, deviceID)
		if err != nil {
			return nil, fmt.Errorf("機材の再取得に失敗しました: %w", err)
		}
		var holder *model.UserProfile
		if refreshed != nil && refreshed.LoanedBy != nil {
			holder, err = s.holderProfile(ctx, *refreshed.LoanedBy)
			if err != nil {
				return nil, err
			}
		}
		return nil, s.deny("loan", model.NewAlreadyLoanedError(holder))
	}

	s.grant("loan")
	slog.Info("貸出を許可しました",
		slog.Int64("device_id", deviceID),
		slog.Int64("user_id", userID),
		slog.String("device_type", device.DeviceType),
		slog.Int("remaining", remaining),
	)

	return &LoanResult{DeviceID: deviceID, UserID: userID}, nil
}

// Return は返却リクエストを判定し、許可された場合はloaned_byを解除する。
//
// 状態遷移: Requested → OwnershipChecked → Committed | Denied(INVALID_USER_DEVICE_PAIR)。
// 所有確認と解除は条件付きUPDATEの単一文で行う。
func (s *Service) Return(ctx context.Context, deviceID, userID int64) (*LoanResult, error) {
	start := s.now()
	defer s.recordLatency("return", start)

	released, err := s.devices.ReleaseLoan(ctx, deviceID, userID)
	if err != nil {
		return nil, fmt.Errorf("返却のコミットに失敗しました: %w", err)
	}
	if !released {
		return nil, s.deny("return", model.NewInvalidUserDevicePairError(deviceID, userID))
	}

	s.grant("return")
	slog.Info("返却を受理しました",
		slog.Int64("device_id", deviceID),
		slog.Int64("user_id", userID),
	)

	return &LoanResult{DeviceID: deviceID, UserID: userID}, nil
}

// holderProfile は保持者の公開プロフィールを取得する。
func (s *Service) holderProfile(ctx context.Context, holderID int64) (*model.UserProfile, error) {
	holder, err := s.users.FindByID(ctx, holderID)
	if err != nil {
		return nil, fmt.Errorf("保持者の取得に失敗しました: %w", err)
	}
	if holder == nil {
		return nil, nil
	}
	return holder.PublicProfile(), nil
}

func (s *Service) grant(operation string) {
	if s.metrics != nil {
		s.metrics.RecordAdmissionGranted(operation)
	}
}

// deny は拒否メトリクスを記録してそのままDenialErrorを返す。
func (s *Service) deny(operation string, d *model.DenialError) *model.DenialError {
	if s.metrics != nil {
		s.metrics.RecordAdmissionDenied(operation, d.Reason)
	}
	return d
}

func (s *Service) recordLatency(operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordAdmissionLatency(operation, s.now().Sub(start))
	}
}
