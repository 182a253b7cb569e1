package admission

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/loanman/internal/model"
)

// Reserve はブロック予約リクエストを判定し、許可された場合は予約行を作成してIDを返す。
//
// 貸出と異なり中間状態を持たない線形フロー:
// ウィンドウ正規化 → 衝突収集 → キャパシティ計算 → 挿入。
// 残キャパシティが負の場合はINSUFFICIENT_CAPACITYで拒否し、衝突予約を添付する。
// 予約作成時にクラス共有オーバーライドは適用しない。予約は素のキャパシティに
// 対する先着順であり、例外は確定済み予約に対する貸出時のみ働く。
func (s *Service) Reserve(ctx context.Context, req *model.Reservation) (int64, error) {
	start := s.now()
	defer s.recordLatency("reservation", start)

	if err := validateReservation(req); err != nil {
		return 0, err
	}

	// タイムゾーンはUTCに正規化して比較・保存する
	req.StartTime = req.StartTime.UTC()
	req.EndTime = req.EndTime.UTC()

	lock := s.locks.get(req.DeviceType)
	lock.Lock()
	defer lock.Unlock()

	colliding, err := s.reservations.FindColliding(ctx, req.DeviceType, req.StartTime, req.EndTime)
	if err != nil {
		return 0, fmt.Errorf("衝突予約の取得に失敗しました: %w", err)
	}

	active, err := s.devices.CountActiveByType(ctx, req.DeviceType)
	if err != nil {
		return 0, fmt.Errorf("稼働機材数の取得に失敗しました: %w", err)
	}

	remaining := Remaining(active, colliding, req.DeviceCount)
	if remaining < 0 {
		return 0, s.deny("reservation", model.NewInsufficientCapacityError(colliding))
	}

	id, err := s.reservations.Create(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("予約の作成に失敗しました: %w", err)
	}

	s.grant("reservation")
	slog.Info("予約を許可しました",
		slog.Int64("reservation_id", id),
		slog.String("device_type", req.DeviceType),
		slog.Int("count", req.DeviceCount),
		slog.Int("remaining", remaining),
	)

	return id, nil
}

// validateReservation は予約リクエストの形式を検証する。状態変更は行わない。
func validateReservation(req *model.Reservation) error {
	if req.DeviceType == "" {
		return model.NewValidationError("device_typeは必須です")
	}
	if req.DeviceCount < 1 {
		return model.NewValidationError("countは1以上を指定してください: %d", req.DeviceCount)
	}
	if !req.StartTime.Before(req.EndTime) {
		return model.NewValidationError("start_timeはend_timeより前である必要があります")
	}
	if req.SafeZone < 0 {
		return model.NewValidationError("safe_zoneは負にできません")
	}
	return nil
}
