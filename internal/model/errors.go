// Package model はドメインモデルを定義する。
package model

import "fmt"

// 貸出・予約拒否の理由コード（内部名）。
const (
	ReasonNotPrivileged         = "NOT_PRIVILEGED"
	ReasonAlreadyLoaned         = "ALREADY_LOANED"
	ReasonCapacityExceeded      = "CAPACITY_EXCEEDED"
	ReasonNoDevicesAvailable    = "NO_DEVICES_AVAILABLE"
	ReasonInsufficientCapacity  = "INSUFFICIENT_CAPACITY"
	ReasonInvalidUserDevicePair = "INVALID_USER_DEVICE_PAIR"
)

// ワイヤ上の整数理由コード。
// CAPACITY_EXCEEDEDとNO_DEVICES_AVAILABLEは同一コードを共有し、
// メッセージと添付データで区別する。
const (
	CodeNotPrivileged         = 1
	CodeAlreadyLoaned         = 2
	CodeCapacityExceeded      = 3
	CodeInsufficientCapacity  = 1
	CodeInvalidUserDevicePair = 1
)

// DenialError は貸出・予約の方針拒否を表す。
// バリデーションエラーと区別され、クライアントはCodeとDataで
// キャパシティ固有のUIを描画できる。
type DenialError struct {
	Code    int    // ワイヤ上の整数コード
	Reason  string // 内部理由名
	Message string // 人間向けメッセージ
	Data    any    // 診断ペイロード（保持者プロフィール、衝突予約など）
}

// Error はerrorインターフェースを実装する。
func (e *DenialError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Reason, e.Message)
}

// NewNotPrivilegedError は権限不足による拒否を生成する。
func NewNotPrivilegedError(userID int64, deviceType string) *DenialError {
	return &DenialError{
		Code:    CodeNotPrivileged,
		Reason:  ReasonNotPrivileged,
		Message: fmt.Sprintf("ユーザー%dは機材タイプ%sの貸出権限を持っていません。", userID, deviceType),
	}
}

// NewAlreadyLoanedError は貸出中機材への重複貸出の拒否を生成する。
// 現在の保持者の公開プロフィールを添付する。
func NewAlreadyLoanedError(holder *UserProfile) *DenialError {
	return &DenialError{
		Code:    CodeAlreadyLoaned,
		Reason:  ReasonAlreadyLoaned,
		Message: "この機材はすでに貸出中です。",
		Data:    holder,
	}
}

// NewCapacityExceededError は予約との衝突によるキャパシティ超過の拒否を生成する。
// 衝突した予約の一覧を添付する。
func NewCapacityExceededError(colliding []*Reservation) *DenialError {
	return &DenialError{
		Code:    CodeCapacityExceeded,
		Reason:  ReasonCapacityExceeded,
		Message: "予約によりこの機材タイプのキャパシティを超過しています。",
		Data:    colliding,
	}
}

// NewNoDevicesAvailableError は予約と無関係に稼働機材が足りない場合の拒否を生成する。
func NewNoDevicesAvailableError(deviceType string) *DenialError {
	return &DenialError{
		Code:    CodeCapacityExceeded,
		Reason:  ReasonNoDevicesAvailable,
		Message: fmt.Sprintf("機材タイプ%sに貸出可能な機材がありません。", deviceType),
	}
}

// NewInsufficientCapacityError は予約作成時のキャパシティ不足の拒否を生成する。
func NewInsufficientCapacityError(colliding []*Reservation) *DenialError {
	return &DenialError{
		Code:    CodeInsufficientCapacity,
		Reason:  ReasonInsufficientCapacity,
		Message: "指定期間のキャパシティが不足しています。",
		Data:    colliding,
	}
}

// NewInvalidUserDevicePairError は返却時のユーザー・機材不一致の拒否を生成する。
func NewInvalidUserDevicePairError(deviceID, userID int64) *DenialError {
	return &DenialError{
		Code:    CodeInvalidUserDevicePair,
		Reason:  ReasonInvalidUserDevicePair,
		Message: fmt.Sprintf("機材%dはユーザー%dに貸出されていません。", deviceID, userID),
	}
}

// ValidationError は入力不正によるエラーを表す。状態変更は発生しない。
type ValidationError struct {
	Message string
}

// Error はerrorインターフェースを実装する。
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError はバリデーションエラーを生成する。
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError は対象リソースが存在しないことを表す。
type NotFoundError struct {
	Resource string
	ID       int64
}

// Error はerrorインターフェースを実装する。
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%sが見つかりません: %d", e.Resource, e.ID)
}

// NewNotFoundError はNotFoundErrorを生成する。
func NewNotFoundError(resource string, id int64) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}
