package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/loanman/internal/auth"
	"github.com/hitoshi/loanman/internal/model"
)

// UserStore はユーザーハンドラーが必要とするリポジトリインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserStore interface {
	Create(ctx context.Context, user *model.User) (int64, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	DeleteByID(ctx context.Context, id int64) error
}

// QRGenerator はユーザーIDからQRコードPNGを生成するインターフェース。
type QRGenerator interface {
	UserPNG(userID int64) ([]byte, error)
}

// CardRenderer はユーザーの貸出カードPDFを生成するインターフェース。
type CardRenderer interface {
	UserCard(user *model.UserProfile) ([]byte, error)
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	store UserStore
	qr    QRGenerator
	card  CardRenderer
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(store UserStore, qr QRGenerator, card CardRenderer) *UserHandler {
	return &UserHandler{
		store: store,
		qr:    qr,
		card:  card,
	}
}

// signupRequest はユーザー登録リクエストのボディ。
type signupRequest struct {
	Email    string `json:"email"`
	FName    string `json:"fname"`
	LName    string `json:"lname"`
	Type     string `json:"type"`
	Password string `json:"password"`
}

// Signup はユーザー登録を処理する。パスワードはbcryptでハッシュ化して保存する。
// POST /user
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	if err := validateSignup(&req); err != nil {
		handleServiceError(w, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	user := &model.User{
		Email:        strings.TrimSpace(req.Email),
		FName:        req.FName,
		LName:        req.LName,
		Type:         req.Type,
		PasswordHash: hash,
	}

	id, err := h.store.Create(r.Context(), user)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]int64{"id": id})
}

// validateSignup はユーザー登録リクエストを検証する。
func validateSignup(req *signupRequest) error {
	if strings.TrimSpace(req.Email) == "" {
		return model.NewValidationError("emailは必須です")
	}
	if !strings.Contains(req.Email, "@") {
		return model.NewValidationError("emailの形式が不正です: %s", req.Email)
	}
	if req.Password == "" {
		return model.NewValidationError("passwordは必須です")
	}
	return nil
}

// List は全ユーザーの公開プロフィール一覧を返す。
// GET /user
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	profiles := make([]*model.UserProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.PublicProfile())
	}

	writeSuccess(w, http.StatusOK, profiles)
}

// Get は指定IDのユーザーの公開プロフィールを返す。
// GET /user/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	user, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if user == nil {
		writeNotFound(w, "ユーザー", id)
		return
	}

	writeSuccess(w, http.StatusOK, user.PublicProfile())
}

// Delete は指定IDのユーザーを削除する。
// 予約や貸出などの外部参照が残っている場合はストレージエラーがそのまま500になる。
// DELETE /user/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	user, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if user == nil {
		writeNotFound(w, "ユーザー", id)
		return
	}

	if err := h.store.DeleteByID(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]int64{"id": id})
}

// QR はユーザーIDをエンコードしたQRコードPNGを返す。
// GET /user/{id}/qr
func (h *UserHandler) QR(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	user, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if user == nil {
		writeNotFound(w, "ユーザー", id)
		return
	}

	png, err := h.qr.UserPNG(id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// Card はQRコードを埋め込んだユーザーの貸出カードPDFを返す。
// GET /user/{id}/card
func (h *UserHandler) Card(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	user, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if user == nil {
		writeNotFound(w, "ユーザー", id)
		return
	}

	pdf, err := h.card.UserCard(user.PublicProfile())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// parseIDParam はURLパスパラメータを int64 として解析する。
// 解析に失敗した場合は400を書き込み、falseを返す。
func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeFailed(w, http.StatusBadRequest, 0, "IDの形式が不正です: "+raw, nil)
		return 0, false
	}
	return id, true
}
