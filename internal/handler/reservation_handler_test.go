package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/loanman/internal/model"
)

// --- モック定義 ---

type mockReservationAdmission struct {
	reserveFn func(ctx context.Context, req *model.Reservation) (int64, error)
}

func (m *mockReservationAdmission) Reserve(ctx context.Context, req *model.Reservation) (int64, error) {
	if m.reserveFn != nil {
		return m.reserveFn(ctx, req)
	}
	return 1, nil
}

type mockReservationStore struct {
	findByIDFn func(ctx context.Context, id int64) (*model.Reservation, error)
	listFn     func(ctx context.Context) ([]*model.Reservation, error)
	deleteFn   func(ctx context.Context, id int64) error
}

func (m *mockReservationStore) FindByID(ctx context.Context, id int64) (*model.Reservation, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockReservationStore) List(ctx context.Context) ([]*model.Reservation, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockReservationStore) DeleteByID(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func newReservationRouter(adm ReservationAdmission, store ReservationStore) http.Handler {
	h := NewReservationHandler(adm, store, time.Hour)
	r := chi.NewRouter()
	r.Post("/reservation", h.Create)
	r.Get("/reservation", h.List)
	r.Get("/reservation/{id}", h.Get)
	r.Delete("/reservation/{id}", h.Delete)
	return r
}

// --- テスト ---

func TestReservationHandler_Create_ParsesSafeZone(t *testing.T) {
	var captured *model.Reservation
	adm := &mockReservationAdmission{
		reserveFn: func(ctx context.Context, req *model.Reservation) (int64, error) {
			captured = req
			return 5, nil
		},
	}

	body := `{"device_type":"camera","start_time":"2026-03-10T10:00:00Z","end_time":"2026-03-10T12:00:00Z","count":2,"safe_zone":"30m","class_id":1,"user_id":2}`
	req := httptest.NewRequest(http.MethodPost, "/reservation", strings.NewReader(body))
	w := httptest.NewRecorder()

	newReservationRouter(adm, &mockReservationStore{}).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d\nbody: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	if captured == nil {
		t.Fatal("Reserve should be called")
	}
	if captured.SafeZone != 30*time.Minute {
		t.Errorf("safe_zone = %v, want %v", captured.SafeZone, 30*time.Minute)
	}
	if captured.DeviceCount != 2 {
		t.Errorf("count = %d, want %d", captured.DeviceCount, 2)
	}
}

func TestReservationHandler_Create_DefaultSafeZone(t *testing.T) {
	var captured *model.Reservation
	adm := &mockReservationAdmission{
		reserveFn: func(ctx context.Context, req *model.Reservation) (int64, error) {
			captured = req
			return 5, nil
		},
	}

	body := `{"device_type":"camera","start_time":"2026-03-10T10:00:00Z","end_time":"2026-03-10T12:00:00Z","count":1,"class_id":1,"user_id":2}`
	req := httptest.NewRequest(http.MethodPost, "/reservation", strings.NewReader(body))
	w := httptest.NewRecorder()

	newReservationRouter(adm, &mockReservationStore{}).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if captured.SafeZone != time.Hour {
		t.Errorf("safe_zone = %v, want %v", captured.SafeZone, time.Hour)
	}
}

func TestReservationHandler_Create_InvalidSafeZone_Returns400(t *testing.T) {
	body := `{"device_type":"camera","start_time":"2026-03-10T10:00:00Z","end_time":"2026-03-10T12:00:00Z","count":1,"safe_zone":"sometime"}`
	req := httptest.NewRequest(http.MethodPost, "/reservation", strings.NewReader(body))
	w := httptest.NewRecorder()

	newReservationRouter(&mockReservationAdmission{}, &mockReservationStore{}).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestReservationHandler_Create_InsufficientCapacity_AttachesColliding(t *testing.T) {
	colliding := []*model.Reservation{
		{ID: 8, DeviceType: "camera", DeviceCount: 3},
	}
	adm := &mockReservationAdmission{
		reserveFn: func(ctx context.Context, req *model.Reservation) (int64, error) {
			return 0, model.NewInsufficientCapacityError(colliding)
		},
	}

	body := `{"device_type":"camera","start_time":"2026-03-10T10:00:00Z","end_time":"2026-03-10T12:00:00Z","count":4}`
	req := httptest.NewRequest(http.MethodPost, "/reservation", strings.NewReader(body))
	w := httptest.NewRecorder()

	newReservationRouter(adm, &mockReservationStore{}).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	env := decodeEnvelope(t, w)
	if env.Error == nil || env.Error.Code != model.CodeInsufficientCapacity {
		t.Errorf("error = %+v, want code %d", env.Error, model.CodeInsufficientCapacity)
	}

	var attached []*model.Reservation
	if err := json.Unmarshal(env.Data, &attached); err != nil {
		t.Fatalf("data should contain colliding reservations: %v", err)
	}
	if len(attached) != 1 || attached[0].ID != 8 {
		t.Errorf("attached = %+v, want reservation 8", attached)
	}
}

func TestReservationHandler_Get_SerializesSafeZoneAsDuration(t *testing.T) {
	store := &mockReservationStore{
		findByIDFn: func(ctx context.Context, id int64) (*model.Reservation, error) {
			return &model.Reservation{
				ID:          id,
				DeviceType:  "camera",
				DeviceCount: 2,
				SafeZone:    90 * time.Minute,
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/reservation/8", nil)
	w := httptest.NewRecorder()

	newReservationRouter(&mockReservationAdmission{}, store).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	env := decodeEnvelope(t, w)
	var resp struct {
		SafeZone string `json:"safe_zone"`
	}
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("data: %v", err)
	}
	if resp.SafeZone != "1h30m0s" {
		t.Errorf("safe_zone = %q, want %q", resp.SafeZone, "1h30m0s")
	}
}

func TestReservationHandler_Delete_NotFound_Returns404(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/reservation/99", nil)
	w := httptest.NewRecorder()

	newReservationRouter(&mockReservationAdmission{}, &mockReservationStore{}).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
