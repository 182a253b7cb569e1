package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/loanman/internal/model"
)

// ReservationAdmission は予約判定のインターフェース。
// admission.Serviceの部分集合として定義する。
type ReservationAdmission interface {
	Reserve(ctx context.Context, req *model.Reservation) (int64, error)
}

// ReservationStore は予約ハンドラーが必要とするリポジトリインターフェース。
// repository.ReservationRepositoryの部分集合として定義する。
type ReservationStore interface {
	FindByID(ctx context.Context, id int64) (*model.Reservation, error)
	List(ctx context.Context) ([]*model.Reservation, error)
	DeleteByID(ctx context.Context, id int64) error
}

// ReservationHandler は予約管理のHTTPハンドラー。
type ReservationHandler struct {
	admission       ReservationAdmission
	store           ReservationStore
	defaultSafeZone time.Duration
}

// NewReservationHandler はReservationHandlerを生成する。
// defaultSafeZoneが0以下の場合はmodel.DefaultSafeZoneを使う。
func NewReservationHandler(admission ReservationAdmission, store ReservationStore, defaultSafeZone time.Duration) *ReservationHandler {
	if defaultSafeZone <= 0 {
		defaultSafeZone = model.DefaultSafeZone
	}
	return &ReservationHandler{
		admission:       admission,
		store:           store,
		defaultSafeZone: defaultSafeZone,
	}
}

// createReservationRequest は予約作成リクエストのボディ。
// safe_zoneはGoのduration文字列（"1h"、"30m"など）。未指定時はサーバー既定値。
type createReservationRequest struct {
	DeviceType  string    `json:"device_type"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	DeviceCount int       `json:"count"`
	SafeZone    string    `json:"safe_zone"`
	ClassID     int64     `json:"class_id"`
	UserID      int64     `json:"user_id"`
}

// reservationResponse は予約のAPIレスポンス。safe_zoneはduration文字列で表す。
type reservationResponse struct {
	ID          int64     `json:"id"`
	DeviceType  string    `json:"device_type"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	DeviceCount int       `json:"count"`
	SafeZone    string    `json:"safe_zone"`
	ClassID     int64     `json:"class_id"`
	UserID      int64     `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func toReservationResponse(r *model.Reservation) *reservationResponse {
	return &reservationResponse{
		ID:          r.ID,
		DeviceType:  r.DeviceType,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		DeviceCount: r.DeviceCount,
		SafeZone:    r.SafeZone.String(),
		ClassID:     r.ClassID,
		UserID:      r.UserID,
		CreatedAt:   r.CreatedAt,
	}
}

// Create は予約作成リクエストを判定し、許可された場合は予約を作成する。
// POST /reservation
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	safeZone := h.defaultSafeZone
	if req.SafeZone != "" {
		parsed, err := time.ParseDuration(req.SafeZone)
		if err != nil {
			handleServiceError(w, model.NewValidationError("safe_zoneの形式が不正です: %s", req.SafeZone))
			return
		}
		safeZone = parsed
	}

	reservation := &model.Reservation{
		DeviceType:  req.DeviceType,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		DeviceCount: req.DeviceCount,
		SafeZone:    safeZone,
		ClassID:     req.ClassID,
		UserID:      req.UserID,
	}

	id, err := h.admission.Reserve(r.Context(), reservation)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]int64{"id": id})
}

// List は全予約をstart_time昇順で返す。
// GET /reservation
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.store.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]*reservationResponse, 0, len(reservations))
	for _, res := range reservations {
		out = append(out, toReservationResponse(res))
	}

	writeSuccess(w, http.StatusOK, out)
}

// Get は指定IDの予約を返す。
// GET /reservation/{id}
func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	reservation, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if reservation == nil {
		writeNotFound(w, "予約", id)
		return
	}

	writeSuccess(w, http.StatusOK, toReservationResponse(reservation))
}

// Delete は指定IDの予約を削除する。
// DELETE /reservation/{id}
func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	reservation, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if reservation == nil {
		writeNotFound(w, "予約", id)
		return
	}

	if err := h.store.DeleteByID(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]int64{"id": id})
}
