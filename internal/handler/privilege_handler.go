package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hitoshi/loanman/internal/model"
)

// PrivilegeStore は権限ハンドラーが必要とするリポジトリインターフェース。
// repository.PrivilegeRepositoryの部分集合として定義する。
type PrivilegeStore interface {
	Grant(ctx context.Context, userID int64, deviceType string) error
}

// PrivilegeHandler は機材タイプ貸出権限のHTTPハンドラー。
type PrivilegeHandler struct {
	store PrivilegeStore
}

// NewPrivilegeHandler はPrivilegeHandlerを生成する。
func NewPrivilegeHandler(store PrivilegeStore) *PrivilegeHandler {
	return &PrivilegeHandler{store: store}
}

// grantRequest は権限付与リクエストのボディ。
type grantRequest struct {
	UserID     int64  `json:"user_id"`
	DeviceType string `json:"device_type"`
}

// Grant は(user, device_type)の貸出権限を付与する。
// POST /privilege
func (h *PrivilegeHandler) Grant(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	if req.UserID <= 0 {
		handleServiceError(w, model.NewValidationError("user_idは必須です"))
		return
	}
	if strings.TrimSpace(req.DeviceType) == "" {
		handleServiceError(w, model.NewValidationError("device_typeは必須です"))
		return
	}

	if err := h.store.Grant(r.Context(), req.UserID, req.DeviceType); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, &model.DeviceTypePrivilege{
		UserID:     req.UserID,
		DeviceType: req.DeviceType,
	})
}
