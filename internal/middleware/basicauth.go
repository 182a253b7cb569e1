// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/loanman/internal/auth"
	"github.com/hitoshi/loanman/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userContextKey はリクエストコンテキストに認証済みユーザーを格納するためのキー。
var userContextKey = contextKey("user")

// CredentialFinder は認証情報の検索に必要なインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type CredentialFinder interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// NewBasicAuthMiddleware はHTTP Basic認証でメールアドレスとパスワードを検証する
// ミドルウェアを返す。認証済みユーザーをリクエストコンテキストに注入する。
// 未認証リクエストには401 Unauthorizedを返す。
func NewBasicAuthMiddleware(users CredentialFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, password, ok := r.BasicAuth()
			if !ok || email == "" {
				writeUnauthorized(w)
				return
			}

			user, err := users.FindByEmail(r.Context(), email)
			if err != nil {
				slog.Error("failed to find user for authentication",
					slog.String("error", err.Error()),
				)
				writeUnauthorized(w)
				return
			}
			if user == nil {
				writeUnauthorized(w)
				return
			}

			if !auth.VerifyPassword(user.PasswordHash, password) {
				writeUnauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeUnauthorized はWWW-Authenticateヘッダー付きの401レスポンスを書き込む。
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="loanman"`)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

// UserFromContext はリクエストコンテキストから認証済みユーザーを取得する。
// Basic認証ミドルウェアを通過したリクエストでのみ有効。
func UserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	return user, nil
}

// ContextWithUser はコンテキストにユーザーを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
