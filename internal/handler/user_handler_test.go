package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/loanman/internal/model"
)

// --- モック定義 ---

type mockUserStore struct {
	createFn   func(ctx context.Context, user *model.User) (int64, error)
	findByIDFn func(ctx context.Context, id int64) (*model.User, error)
	listFn     func(ctx context.Context) ([]*model.User, error)
	deleteFn   func(ctx context.Context, id int64) error
}

func (m *mockUserStore) Create(ctx context.Context, user *model.User) (int64, error) {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return 1, nil
}

func (m *mockUserStore) FindByID(ctx context.Context, id int64) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserStore) List(ctx context.Context) ([]*model.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockUserStore) DeleteByID(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockQRGenerator struct {
	userPNGFn func(userID int64) ([]byte, error)
}

func (m *mockQRGenerator) UserPNG(userID int64) ([]byte, error) {
	if m.userPNGFn != nil {
		return m.userPNGFn(userID)
	}
	return []byte("png-bytes"), nil
}

type mockCardRenderer struct {
	userCardFn func(user *model.UserProfile) ([]byte, error)
}

func (m *mockCardRenderer) UserCard(user *model.UserProfile) ([]byte, error) {
	if m.userCardFn != nil {
		return m.userCardFn(user)
	}
	return []byte("%PDF-bytes"), nil
}

func newUserRouter(store UserStore) http.Handler {
	h := NewUserHandler(store, &mockQRGenerator{}, &mockCardRenderer{})
	r := chi.NewRouter()
	r.Post("/user", h.Signup)
	r.Get("/user", h.List)
	r.Get("/user/{id}", h.Get)
	r.Delete("/user/{id}", h.Delete)
	r.Get("/user/{id}/qr", h.QR)
	r.Get("/user/{id}/card", h.Card)
	return r
}

// --- テスト ---

func TestUserHandler_Signup_HashesPasswordAndReturnsID(t *testing.T) {
	var created *model.User
	store := &mockUserStore{
		createFn: func(ctx context.Context, user *model.User) (int64, error) {
			created = user
			return 42, nil
		},
	}

	body := `{"email":"taro@example.com","fname":"太郎","lname":"田中","type":"student","password":"s3cret"}`
	req := httptest.NewRequest(http.MethodPost, "/user", strings.NewReader(body))
	w := httptest.NewRecorder()

	newUserRouter(store).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d\nbody: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	env := decodeEnvelope(t, w)
	var data map[string]int64
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("data: %v", err)
	}
	if data["id"] != 42 {
		t.Errorf("id = %d, want %d", data["id"], 42)
	}

	if created == nil {
		t.Fatal("store.Create should be called")
	}
	if string(created.PasswordHash) == "s3cret" {
		t.Error("password should be stored hashed, not plaintext")
	}
	if len(created.PasswordHash) == 0 {
		t.Error("password hash should not be empty")
	}
}

func TestUserHandler_Signup_InvalidBody_Returns400(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/user", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	newUserRouter(&mockUserStore{}).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestUserHandler_Signup_MissingEmail_Returns400(t *testing.T) {
	body := `{"fname":"太郎","password":"s3cret"}`
	req := httptest.NewRequest(http.MethodPost, "/user", strings.NewReader(body))
	w := httptest.NewRecorder()

	newUserRouter(&mockUserStore{}).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestUserHandler_List_ExcludesPasswordHash(t *testing.T) {
	store := &mockUserStore{
		listFn: func(ctx context.Context) ([]*model.User, error) {
			return []*model.User{
				{ID: 1, Email: "a@example.com", PasswordHash: []byte("hash")},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	w := httptest.NewRecorder()

	newUserRouter(store).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("hash")) {
		t.Error("response should not contain the password hash")
	}
}

func TestUserHandler_Get_NotFound_Returns404(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/user/99", nil)
	w := httptest.NewRecorder()

	newUserRouter(&mockUserStore{}).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestUserHandler_Get_InvalidID_Returns400(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/user/abc", nil)
	w := httptest.NewRecorder()

	newUserRouter(&mockUserStore{}).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestUserHandler_Delete_ForeignKeyError_Returns500(t *testing.T) {
	store := &mockUserStore{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id}, nil
		},
		deleteFn: func(ctx context.Context, id int64) error {
			return fmt.Errorf("violates foreign key constraint")
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/user/1", nil)
	w := httptest.NewRecorder()

	newUserRouter(store).ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestUserHandler_QR_ReturnsPNG(t *testing.T) {
	store := &mockUserStore{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/user/5/qr", nil)
	w := httptest.NewRecorder()

	newUserRouter(store).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("Content-Type = %q, want %q", got, "image/png")
	}
}

func TestUserHandler_QR_UnknownUser_Returns404(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/user/5/qr", nil)
	w := httptest.NewRecorder()

	newUserRouter(&mockUserStore{}).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestUserHandler_Card_ReturnsPDF(t *testing.T) {
	store := &mockUserStore{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, FName: "太郎", LName: "田中"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/user/5/card", nil)
	w := httptest.NewRecorder()

	newUserRouter(store).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("Content-Type = %q, want %q", got, "application/pdf")
	}
}
