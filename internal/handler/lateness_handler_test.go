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

func newLatenessRouter(store LatenessStore) http.Handler {
	h := NewLatenessHandler(store)
	r := chi.NewRouter()
	r.Post("/lateness", h.Create)
	r.Get("/lateness", h.List)
	return r
}

func TestLatenessHandler_Create_ReturnsID(t *testing.T) {
	store := &mockLatenessStore{
		createFn: func(ctx context.Context, userID int64) (int64, error) {
			if userID != 7 {
				t.Errorf("userID = %d, want %d", userID, 7)
			}
			return 11, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/lateness", strings.NewReader(`{"user_id":7}`))
	w := httptest.NewRecorder()

	newLatenessRouter(store).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestLatenessHandler_Create_MissingUserID_Returns400(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/lateness", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	newLatenessRouter(&mockLatenessStore{}).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestLatenessHandler_List_ReturnsRecords(t *testing.T) {
	store := &mockLatenessStore{
		listFn: func(ctx context.Context) ([]*model.Lateness, error) {
			return []*model.Lateness{
				{ID: 2, UserID: 7, CreatedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)},
				{ID: 1, UserID: 5, CreatedAt: time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/lateness", nil)
	w := httptest.NewRecorder()

	newLatenessRouter(store).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	env := decodeEnvelope(t, w)
	var records []*model.Lateness
	if err := json.Unmarshal(env.Data, &records); err != nil {
		t.Fatalf("data: %v", err)
	}
	if len(records) != 2 || records[0].ID != 2 {
		t.Errorf("records = %+v, want newest first", records)
	}
}
