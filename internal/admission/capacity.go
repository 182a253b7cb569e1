package admission

import "github.com/hitoshi/loanman/internal/model"

// Remaining は残キャパシティを計算する。
//
//	remaining = 稼働機材数 − Σ(衝突予約の数量) − 要求数量
//
// 符号付きで返し、負の値は超過予約を意味する。
// 即時貸出では要求数量は常に1。
func Remaining(activeCount int, colliding []*model.Reservation, requestedCount int) int {
	reserved := 0
	for _, r := range colliding {
		reserved += r.DeviceCount
	}
	return activeCount - reserved - requestedCount
}
