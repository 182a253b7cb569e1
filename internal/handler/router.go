package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/loanman/internal/middleware"
)

// Pinger はヘルスチェックに必要なデータベース接続のインターフェース。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CredentialFinder  middleware.CredentialFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	StatusObserver    middleware.StatusObserver

	// ユーザー
	UserStore    UserStore
	QRGenerator  QRGenerator
	CardRenderer CardRenderer

	// 機材と貸出判定
	DeviceStore      DeviceStore
	AdmissionService AdmissionService

	// 予約
	ReservationAdmission ReservationAdmission
	ReservationStore     ReservationStore
	DefaultSafeZone      time.Duration

	// クラス・権限・遅延記録
	ClassStore     ClassStore
	PrivilegeStore PrivilegeStore
	LatenessStore  LatenessStore

	// 運用エンドポイント
	DB             Pinger
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → RequestID → Logging → Recovery → BasicAuth → RateLimit
//
// ユーザー登録（POST /user）と運用エンドポイント（/health、/metrics）は
// 認証チェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// 全ルートに効くミドルウェア
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger, deps.StatusObserver))
	r.Use(middleware.NewRecoveryMiddleware())

	userHandler := NewUserHandler(deps.UserStore, deps.QRGenerator, deps.CardRenderer)
	deviceHandler := NewDeviceHandler(deps.DeviceStore, deps.AdmissionService)
	reservationHandler := NewReservationHandler(deps.ReservationAdmission, deps.ReservationStore, deps.DefaultSafeZone)
	classHandler := NewClassHandler(deps.ClassStore)
	privilegeHandler := NewPrivilegeHandler(deps.PrivilegeStore)
	latenessHandler := NewLatenessHandler(deps.LatenessStore)

	// --- 認証不要のルート ---

	// ユーザー登録
	r.Post("/user", userHandler.Signup)

	// 運用エンドポイント
	r.Get("/health", NewHealthHandler(deps.DB))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: BasicAuth → RateLimit
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewBasicAuthMiddleware(deps.CredentialFinder))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}

		// ユーザー管理（POST /userは認証チェーンの外で登録済み）
		r.Get("/user", userHandler.List)
		r.Route("/user/{id}", func(r chi.Router) {
			r.Get("/", userHandler.Get)
			r.Delete("/", userHandler.Delete)
			r.Get("/qr", userHandler.QR)
			r.Get("/card", userHandler.Card)
		})

		// 機材管理と貸出・返却
		r.Route("/device", func(r chi.Router) {
			r.Post("/", deviceHandler.Create)
			r.Get("/", deviceHandler.List)

			r.Route("/{device_id}", func(r chi.Router) {
				r.Get("/", deviceHandler.Get)
				r.Put("/active", deviceHandler.SetActive)

				r.Route("/loan/{user_id}", func(r chi.Router) {
					r.Put("/", deviceHandler.Loan)
					r.Delete("/", deviceHandler.Return)
				})
			})
		})

		// 予約管理
		r.Route("/reservation", func(r chi.Router) {
			r.Post("/", reservationHandler.Create)
			r.Get("/", reservationHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", reservationHandler.Get)
				r.Delete("/", reservationHandler.Delete)
			})
		})

		// クラス管理
		r.Route("/class", func(r chi.Router) {
			r.Post("/", classHandler.Create)
			r.Get("/", classHandler.List)
			r.Post("/{id}/register", classHandler.Register)
		})

		// 権限付与
		r.Post("/privilege", privilegeHandler.Grant)

		// 遅延記録
		r.Route("/lateness", func(r chi.Router) {
			r.Post("/", latenessHandler.Create)
			r.Get("/", latenessHandler.List)
		})
	})

	return r
}

// NewHealthHandler はデータベース接続を確認するヘルスチェックハンドラーを返す。
func NewHealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := db.PingContext(ctx); err != nil {
				writeFailed(w, http.StatusServiceUnavailable, 0, "データベースに接続できません。", nil)
				return
			}
		}
		writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
