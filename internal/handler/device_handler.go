package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hitoshi/loanman/internal/admission"
	"github.com/hitoshi/loanman/internal/model"
)

// DeviceStore は機材ハンドラーが必要とするリポジトリインターフェース。
// repository.DeviceRepositoryの部分集合として定義する。
type DeviceStore interface {
	Create(ctx context.Context, device *model.Device) (int64, error)
	FindByID(ctx context.Context, id int64) (*model.Device, error)
	List(ctx context.Context) ([]*model.Device, error)
	SetActive(ctx context.Context, id int64, isActive bool) error
}

// AdmissionService は貸出・返却判定のインターフェース。
// admission.Serviceの部分集合として定義する。
type AdmissionService interface {
	Loan(ctx context.Context, deviceID, userID int64) (*admission.LoanResult, error)
	Return(ctx context.Context, deviceID, userID int64) (*admission.LoanResult, error)
}

// DeviceHandler は機材管理と貸出・返却のHTTPハンドラー。
type DeviceHandler struct {
	store     DeviceStore
	admission AdmissionService
}

// NewDeviceHandler はDeviceHandlerを生成する。
func NewDeviceHandler(store DeviceStore, admission AdmissionService) *DeviceHandler {
	return &DeviceHandler{
		store:     store,
		admission: admission,
	}
}

// createDeviceRequest は機材登録リクエストのボディ。
type createDeviceRequest struct {
	DeviceType   string `json:"device_type"`
	SerialNumber string `json:"serial_number"`
	IsActive     *bool  `json:"is_active"`
}

// Create は機材を登録する。is_active未指定時は稼働中として登録する。
// POST /device
func (h *DeviceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	if strings.TrimSpace(req.DeviceType) == "" {
		handleServiceError(w, model.NewValidationError("device_typeは必須です"))
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	device := &model.Device{
		DeviceType:   req.DeviceType,
		SerialNumber: req.SerialNumber,
		IsActive:     isActive,
	}

	id, err := h.store.Create(r.Context(), device)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]int64{"id": id})
}

// List は全機材を返す。
// GET /device
func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	devices, err := h.store.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, devices)
}

// Get は指定IDの機材を返す。
// GET /device/{device_id}
func (h *DeviceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "device_id")
	if !ok {
		return
	}

	device, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if device == nil {
		writeNotFound(w, "機材", id)
		return
	}

	writeSuccess(w, http.StatusOK, device)
}

// setActiveRequest は稼働フラグ更新リクエストのボディ。
type setActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

// SetActive は機材の稼働フラグを更新する。既存の貸出状態には影響しない。
// PUT /device/{device_id}/active
func (h *DeviceHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "device_id")
	if !ok {
		return
	}

	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}
	if req.IsActive == nil {
		handleServiceError(w, model.NewValidationError("is_activeは必須です"))
		return
	}

	device, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if device == nil {
		writeNotFound(w, "機材", id)
		return
	}

	if err := h.store.SetActive(r.Context(), id, *req.IsActive); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"id": id, "is_active": *req.IsActive})
}

// Loan は貸出リクエストを判定し、許可された場合はコミットする。
// PUT /device/{device_id}/loan/{user_id}
func (h *DeviceHandler) Loan(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := parseIDParam(w, r, "device_id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(w, r, "user_id")
	if !ok {
		return
	}

	result, err := h.admission.Loan(r.Context(), deviceID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, result)
}

// Return は返却リクエストを処理する。
// DELETE /device/{device_id}/loan/{user_id}
func (h *DeviceHandler) Return(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := parseIDParam(w, r, "device_id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(w, r, "user_id")
	if !ok {
		return
	}

	result, err := h.admission.Return(r.Context(), deviceID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, result)
}
