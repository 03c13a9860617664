package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/carhub/internal/metrics"
	"github.com/hitoshi/carhub/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Collector         metrics.MetricsCollector
	Logger            *slog.Logger

	// ドメインサービス
	AccountService   AccountServiceInterface
	VehicleService   VehicleServiceInterface
	CheckoutService  CheckoutServiceInterface
	DirectoryService DirectoryServiceInterface
	SuggestService   SuggestServiceInterface

	// AI提案に使用するモデル名（レスポンスに含める）
	SuggestModelName string

	// Prometheusスクレイプ対象のGatherer
	MetricsGatherer prometheus.Gatherer

	// ヘルスチェック
	HealthCheck http.HandlerFunc
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Recovery → Logging → Metrics → RateLimit(General)
//
// /health はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// CORS ミドルウェアを最上位に適用（全ルートに効く）
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewMetricsMiddleware(deps.Collector))

	accountHandler := NewAccountHandler(deps.AccountService, deps.Collector)
	vehicleHandler := NewVehicleHandler(deps.VehicleService, deps.Collector)
	checkoutHandler := NewCheckoutHandler(deps.CheckoutService, deps.Collector)
	directoryHandler := NewDirectoryHandler(deps.DirectoryService)
	suggestHandler := NewSuggestHandler(deps.SuggestService, deps.Collector, deps.SuggestModelName)

	// ヘルスチェックとメトリクス（レート制限の外）
	r.Get("/health", deps.HealthCheck)
	r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))

	// --- APIルート ---
	// ミドルウェアスタック: RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 認証
		r.Route("/api/auth", func(r chi.Router) {
			// POST /api/auth/register - アカウント登録（登録専用レート制限を追加）
			r.With(deps.RateLimiter.RegisterMiddleware()).Post("/register", accountHandler.Register)
			r.Post("/login", accountHandler.Login)
			r.Post("/reset", accountHandler.ResetPassword)
		})

		// プロフィール
		r.Get("/api/users/{id}", accountHandler.GetProfile)

		// 車両
		r.Route("/api/vehicles", func(r chi.Router) {
			r.Get("/", vehicleHandler.ListVehicles)
			r.Post("/", vehicleHandler.CreateVehicle)
			r.Get("/{id}", vehicleHandler.GetVehicle)
		})

		// 企業一覧
		r.Get("/api/companies", directoryHandler.ListCompanies)

		// 購入（購入専用レート制限を追加）
		r.Route("/api/checkout", func(r chi.Router) {
			r.With(deps.RateLimiter.CheckoutMiddleware()).Post("/", checkoutHandler.SubmitPurchase)
			r.Post("/cancel", checkoutHandler.CancelCheckout)
		})

		// AI車両提案
		r.Post("/api/suggest", suggestHandler.Suggest)
	})

	return r
}
