package admission

import (
	"context"
	"fmt"

	"github.com/hitoshi/loanman/internal/model"
)

// ClassMembershipChecker はクラス登録の照合インターフェース。
type ClassMembershipChecker interface {
	// IsUserRegisteredInAny はユーザーが指定クラス群のいずれかに登録されているかを返す。
	IsUserRegisteredInAny(ctx context.Context, userID int64, classIDs []int64) (bool, error)
}

// resolveOverride は残キャパシティが負のときのクラス共有オーバーライドを解決する。
// 衝突予約を所有するクラスのいずれかに申請ユーザーが登録されていればtrue。
// 衝突予約が空の場合、交差すべきクラスが存在しないためオーバーライドは決して成立しない。
//
// 方針: プールを既に確保したクラスの遅れて来たメンバーは同じプールから
// 引き出せるが、無関係な第三者がプールを負に押し込むことはできない。
func resolveOverride(ctx context.Context, checker ClassMembershipChecker, userID int64, colliding []*model.Reservation) (bool, error) {
	classIDs := collidingClassIDs(colliding)
	if len(classIDs) == 0 {
		return false, nil
	}

	ok, err := checker.IsUserRegisteredInAny(ctx, userID, classIDs)
	if err != nil {
		return false, fmt.Errorf("クラス登録の照合に失敗しました: %w", err)
	}
	return ok, nil
}

// collidingClassIDs は衝突予約を所有するクラスIDの重複を除いた集合を返す。
func collidingClassIDs(colliding []*model.Reservation) []int64 {
	seen := make(map[int64]struct{}, len(colliding))
	var ids []int64
	for _, r := range colliding {
		if _, ok := seen[r.ClassID]; ok {
			continue
		}
		seen[r.ClassID] = struct{}{}
		ids = append(ids, r.ClassID)
	}
	return ids
}
