// Package admission は貸出・予約の許可判定ロジックを提供する。
//
// 判定は3つの部品から構成される:
// 時間ウィンドウの衝突判定（Collides）、残キャパシティの計算（Remaining）、
// クラス共有によるオーバーライド解決（resolveOverride）。
// LoanServiceとReservationServiceがこれらを編成する。
package admission

import (
	"time"

	"github.com/hitoshi/loanman/internal/model"
)

// Collides は保存済み予約のsafe_zone拡張ウィンドウ [start−safe_zone, end) が
// 問い合わせの半開区間 [qStart, qEnd) と交差するかを返す。
//
// 判定条件: r.start − r.safe_zone < qEnd AND r.end ≥ qStart。
// 境界の扱いに注意: r.end == qStart は衝突と判定される（≥のため）。
// qStart == qEnd の瞬時クエリでは、拡張ウィンドウがその瞬間を含む予約が衝突する。
//
// リポジトリのFindCollidingはこの述語と同一のSQL条件で実装されており、
// 両者は常に一致しなければならない。
func Collides(r *model.Reservation, qStart, qEnd time.Time) bool {
	return r.ExpandedStart().Before(qEnd) && !r.EndTime.Before(qStart)
}
