package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newPrivilegeRouter(store PrivilegeStore) http.Handler {
	h := NewPrivilegeHandler(store)
	r := chi.NewRouter()
	r.Post("/privilege", h.Grant)
	return r
}

func TestPrivilegeHandler_Grant_PassesPair(t *testing.T) {
	var gotUser int64
	var gotType string
	store := &mockPrivilegeStore{
		grantFn: func(ctx context.Context, userID int64, deviceType string) error {
			gotUser, gotType = userID, deviceType
			return nil
		},
	}

	body := `{"user_id":7,"device_type":"camera"}`
	req := httptest.NewRequest(http.MethodPost, "/privilege", strings.NewReader(body))
	w := httptest.NewRecorder()

	newPrivilegeRouter(store).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d\nbody: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	if gotUser != 7 || gotType != "camera" {
		t.Errorf("Grant(%d, %q), want Grant(7, %q)", gotUser, gotType, "camera")
	}
}

func TestPrivilegeHandler_Grant_MissingFields_Returns400(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"user_idなし", `{"device_type":"camera"}`},
		{"device_typeなし", `{"user_id":7}`},
		{"device_typeが空白", `{"user_id":7,"device_type":"  "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/privilege", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			newPrivilegeRouter(&mockPrivilegeStore{}).ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}
