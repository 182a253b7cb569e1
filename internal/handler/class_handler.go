package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hitoshi/loanman/internal/model"
)

// ClassStore はクラスハンドラーが必要とするリポジトリインターフェース。
// repository.ClassRepositoryの部分集合として定義する。
type ClassStore interface {
	Create(ctx context.Context, name string) (int64, error)
	List(ctx context.Context) ([]*model.Class, error)
	Register(ctx context.Context, classID, userID int64) error
}

// ClassHandler はクラス管理のHTTPハンドラー。
type ClassHandler struct {
	store ClassStore
}

// NewClassHandler はClassHandlerを生成する。
func NewClassHandler(store ClassStore) *ClassHandler {
	return &ClassHandler{store: store}
}

// createClassRequest はクラス作成リクエストのボディ。
type createClassRequest struct {
	Name string `json:"name"`
}

// Create はクラスを作成する。
// POST /class
func (h *ClassHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		handleServiceError(w, model.NewValidationError("nameは必須です"))
		return
	}

	id, err := h.store.Create(r.Context(), req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]int64{"id": id})
}

// List は全クラスを返す。
// GET /class
func (h *ClassHandler) List(w http.ResponseWriter, r *http.Request) {
	classes, err := h.store.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, classes)
}

// registerRequest はクラス登録リクエストのボディ。
type registerRequest struct {
	UserID int64 `json:"user_id"`
}

// Register はユーザーをクラスに登録する。
// POST /class/{id}/register
func (h *ClassHandler) Register(w http.ResponseWriter, r *http.Request) {
	classID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}
	if req.UserID <= 0 {
		handleServiceError(w, model.NewValidationError("user_idは必須です"))
		return
	}

	if err := h.store.Register(r.Context(), classID, req.UserID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]int64{"class_id": classID, "user_id": req.UserID})
}
