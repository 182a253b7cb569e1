package admission

import (
	"testing"
	"time"

	"github.com/hitoshi/loanman/internal/model"
)

// at は2026-03-10のUTC時刻を生成するテストヘルパー。
func at(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
}

func reservation(start, end time.Time, safeZone time.Duration, count int, classID int64) *model.Reservation {
	return &model.Reservation{
		DeviceType:  "laptop",
		StartTime:   start,
		EndTime:     end,
		SafeZone:    safeZone,
		DeviceCount: count,
		ClassID:     classID,
	}
}

// TestCollides_ExpandedWindowOverlap はsafe_zone拡張後に重なるウィンドウが
// 衝突と判定されることを検証する（予約A [10:00,11:00) sz30m と [10:45,11:15)）。
func TestCollides_ExpandedWindowOverlap(t *testing.T) {
	r := reservation(at(10, 0), at(11, 0), 30*time.Minute, 2, 1)

	if !Collides(r, at(10, 45), at(11, 15)) {
		t.Error("expected collision: 10:00−0:30=9:30 < 11:15 and 11:00 ≥ 10:45")
	}
}

// TestCollides_DisjointWindows は完全に離れたウィンドウが衝突しないことを検証する。
func TestCollides_DisjointWindows(t *testing.T) {
	r := reservation(at(10, 0), at(11, 0), 30*time.Minute, 1, 1)

	if Collides(r, at(12, 0), at(13, 0)) {
		t.Error("expected no collision for window entirely after reservation")
	}
	if Collides(r, at(8, 0), at(9, 0)) {
		t.Error("expected no collision for window entirely before expanded start")
	}
}

// TestCollides_ReservationEndEqualsQueryStart は予約の終了がクエリの開始と
// ちょうど一致する場合に衝突と判定されることを検証する（end ≥ startのため）。
func TestCollides_ReservationEndEqualsQueryStart(t *testing.T) {
	r := reservation(at(9, 0), at(10, 0), 0, 1, 1)

	if !Collides(r, at(10, 0), at(11, 0)) {
		t.Error("expected collision when reservation.end == query.start (end ≥ start)")
	}
}

// TestCollides_ExpandedStartEqualsQueryEnd は拡張後の開始がクエリの終了と
// ちょうど一致する場合に衝突しないことを検証する（start − safe_zone < end は厳密）。
func TestCollides_ExpandedStartEqualsQueryEnd(t *testing.T) {
	r := reservation(at(10, 0), at(11, 0), 30*time.Minute, 1, 1)

	if Collides(r, at(9, 0), at(9, 30)) {
		t.Error("expected no collision when expanded start == query end (strict <)")
	}
}

// TestCollides_InstantQuery は瞬時クエリ（start == end）が
// 拡張ウィンドウ内の瞬間に衝突することを検証する。
func TestCollides_InstantQuery(t *testing.T) {
	r := reservation(at(10, 0), at(11, 0), 30*time.Minute, 1, 1)

	tests := []struct {
		name    string
		instant time.Time
		want    bool
	}{
		{"拡張開始前", at(9, 15), false},
		{"safe_zone内", at(9, 45), true},
		{"ウィンドウ内", at(10, 50), true},
		{"終了ちょうど", at(11, 0), true}, // end ≥ instant のため衝突
		{"終了後", at(11, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Collides(r, tt.instant, tt.instant)
			if got != tt.want {
				t.Errorf("Collides(instant=%v) = %v, want %v", tt.instant, got, tt.want)
			}
		})
	}
}

// TestRemaining はキャパシティ計算の符号付き結果を検証する。
func TestRemaining(t *testing.T) {
	a := reservation(at(10, 0), at(11, 0), 30*time.Minute, 2, 1)
	b := reservation(at(10, 30), at(12, 0), 0, 1, 2)

	tests := []struct {
		name      string
		active    int
		colliding []*model.Reservation
		requested int
		want      int
	}{
		{"衝突なし", 3, nil, 1, 2},
		{"即時貸出で残0", 3, []*model.Reservation{a}, 1, 0},
		{"超過予約で負", 3, []*model.Reservation{a}, 2, -1},
		{"複数衝突の合算", 5, []*model.Reservation{a, b}, 1, 1},
		{"稼働機材不足", 0, nil, 1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Remaining(tt.active, tt.colliding, tt.requested)
			if got != tt.want {
				t.Errorf("Remaining(%d, %d件, %d) = %d, want %d",
					tt.active, len(tt.colliding), tt.requested, got, tt.want)
			}
		})
	}
}

// TestCollidingClassIDs は衝突予約のクラスIDが重複なく収集されることを検証する。
func TestCollidingClassIDs(t *testing.T) {
	colliding := []*model.Reservation{
		reservation(at(10, 0), at(11, 0), 0, 1, 1),
		reservation(at(10, 15), at(11, 30), 0, 1, 2),
		reservation(at(10, 30), at(12, 0), 0, 1, 1),
	}

	ids := collidingClassIDs(colliding)
	if len(ids) != 2 {
		t.Fatalf("expected 2 unique class ids, got %v", ids)
	}
	if ids[0] != 1 || ids[1] != 2 {
		t.Errorf("class ids = %v, want [1 2]", ids)
	}
}

// TestCollidingClassIDs_Empty は衝突なしで空集合が返ることを検証する。
func TestCollidingClassIDs_Empty(t *testing.T) {
	if ids := collidingClassIDs(nil); len(ids) != 0 {
		t.Errorf("expected empty class id set, got %v", ids)
	}
}
