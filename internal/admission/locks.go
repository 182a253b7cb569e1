package admission

import "sync"

// typeLocks は機材タイプごとの排他ロックを管理する。
// 許可判定のread-then-writeを同一タイプ内で直列化し、
// 並行リクエストが同時に更新前のキャパシティを観測して
// 二重に許可される競合を防ぐ。単一ノード前提。
type typeLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newTypeLocks() *typeLocks {
	return &typeLocks{locks: make(map[string]*sync.Mutex)}
}

// get は指定機材タイプのロックを返す。未登録の場合は生成する。
func (t *typeLocks) get(deviceType string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.locks[deviceType]
	if !ok {
		l = &sync.Mutex{}
		t.locks[deviceType] = l
	}
	return l
}
