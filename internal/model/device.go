// Package model はドメインモデルを定義する。
package model

import "time"

// Device は貸出対象の物理機材を表す。
// LoanedByがnilでない場合、その機材は当該ユーザーに貸出中である。
// 同時に複数のユーザーが保持することはできない。
type Device struct {
	ID           int64  `json:"id"`
	DeviceType   string `json:"device_type"`
	SerialNumber string `json:"serial_number"`
	IsActive     bool   `json:"is_active"`
	LoanedBy     *int64 `json:"loaned_by"`
}

// Class は機材プールを共同利用する授業クラスを表す。
type Class struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Reservation は機材タイプに対する数量予約を表す。
// 特定の機材個体への割当てではなく、期間中のキャパシティへの請求である。
// 衝突判定には [StartTime − SafeZone, EndTime) の拡張ウィンドウを用いる。
type Reservation struct {
	ID          int64         `json:"id"`
	DeviceType  string        `json:"device_type"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	DeviceCount int           `json:"count"`
	SafeZone    time.Duration `json:"-"`
	ClassID     int64         `json:"class_id"`
	UserID      int64         `json:"user_id"`
	CreatedAt   time.Time     `json:"created_at"`
}

// DefaultSafeZone はsafe_zone未指定時の既定値。
const DefaultSafeZone = time.Hour

// ExpandedStart はsafe_zoneを差し引いた衝突判定用の開始時刻を返す。
func (r *Reservation) ExpandedStart() time.Time {
	return r.StartTime.Add(-r.SafeZone)
}
