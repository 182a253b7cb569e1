package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/loanman/internal/model"
)

// LatenessStore は遅延記録ハンドラーが必要とするリポジトリインターフェース。
// repository.LatenessRepositoryの部分集合として定義する。
type LatenessStore interface {
	Create(ctx context.Context, userID int64) (int64, error)
	List(ctx context.Context) ([]*model.Lateness, error)
}

// LatenessHandler は返却遅延記録のHTTPハンドラー。
// 遅延記録は監査用であり、貸出判定には関与しない。
type LatenessHandler struct {
	store LatenessStore
}

// NewLatenessHandler はLatenessHandlerを生成する。
func NewLatenessHandler(store LatenessStore) *LatenessHandler {
	return &LatenessHandler{store: store}
}

// createLatenessRequest は遅延記録リクエストのボディ。
type createLatenessRequest struct {
	UserID int64 `json:"user_id"`
}

// Create は遅延記録を作成する。
// POST /lateness
func (h *LatenessHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLatenessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}
	if req.UserID <= 0 {
		handleServiceError(w, model.NewValidationError("user_idは必須です"))
		return
	}

	id, err := h.store.Create(r.Context(), req.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]int64{"id": id})
}

// List は全遅延記録を新しい順で返す。
// GET /lateness
func (h *LatenessHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, records)
}
