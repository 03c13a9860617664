// Package app はアプリケーションの起動と依存関係のワイヤリングを担う。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/carhub/internal/account"
	"github.com/hitoshi/carhub/internal/checkout"
	"github.com/hitoshi/carhub/internal/client/api"
	"github.com/hitoshi/carhub/internal/client/authflow"
	"github.com/hitoshi/carhub/internal/client/authz"
	"github.com/hitoshi/carhub/internal/client/nav"
	"github.com/hitoshi/carhub/internal/client/terminal"
	"github.com/hitoshi/carhub/internal/config"
	"github.com/hitoshi/carhub/internal/database"
	"github.com/hitoshi/carhub/internal/directory"
	"github.com/hitoshi/carhub/internal/handler"
	"github.com/hitoshi/carhub/internal/logger"
	"github.com/hitoshi/carhub/internal/metrics"
	"github.com/hitoshi/carhub/internal/middleware"
	"github.com/hitoshi/carhub/internal/repository"
	"github.com/hitoshi/carhub/internal/security"
	"github.com/hitoshi/carhub/internal/suggest"
	"github.com/hitoshi/carhub/internal/vehicle"
	"github.com/hitoshi/carhub/internal/worker/cleanup"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck と client はDB等のフル初期化を必要としない軽量サブコマンド
	switch cmd {
	case CommandHealthcheck:
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	case CommandClient:
		baseURL := os.Getenv("API_BASE_URL")
		if baseURL == "" {
			baseURL = "http://localhost:8080"
		}
		return runClient(baseURL)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	vehicleRepo := repository.NewPostgresVehicleRepo(db)
	saleRepo := repository.NewPostgresSaleRepo(db)
	suggestionRepo := repository.NewPostgresSuggestionLogRepo(db)

	// 3. セキュリティサービスの初期化
	ssrfGuard := security.NewSSRFGuard()
	sanitizer := security.NewContentSanitizer()

	// 4. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 5. ドメインサービスの初期化
	accountService := account.NewService(userRepo)
	vehicleService := vehicle.NewService(vehicleRepo, sanitizer, ssrfGuard)
	checkoutService := checkout.NewService(saleRepo)

	logoFinder := directory.NewLogoFinder(ssrfGuard)
	directoryService := directory.NewService(userRepo, logoFinder)

	generator := suggest.NewGeminiGenerator(cfg.GeminiAPIKey, cfg.SuggestModel)
	suggestService := suggest.NewService(generator, suggestionRepo, cfg.SuggestModel, cfg.SuggestTimeout)

	// 6. レートリミッターの構築（configはreq/min単位）
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfigFromPerMinute(
		cfg.RateLimitGeneral, cfg.RateLimitRegister, cfg.RateLimitCheckout,
	))
	defer rateLimiter.Stop()

	// 7. ルーターの構築
	deps := &handler.RouterDeps{
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Collector:         collector,
		Logger:            slog.Default(),

		AccountService:   accountService,
		VehicleService:   vehicleService,
		CheckoutService:  checkoutService,
		DirectoryService: directoryService,
		SuggestService:   suggestService,

		SuggestModelName: cfg.SuggestModel,

		MetricsGatherer: registry,
		HealthCheck:     handler.NewHealthCheck(db),
	}

	router := handler.NewRouter(deps)

	// 8. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// AI提案の監査ログを日次でクリーンアップする。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	cleanupJob := cleanup.NewCleanupJob(db, slog.Default())
	cleanupJob.RetentionDays = cfg.SuggestionLogRetentionDays

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Int("retention_days", cleanupJob.RetentionDays),
	)

	// 起動直後に1回実行し、以降は日次で実行する
	if err := cleanupJob.Run(ctx); err != nil {
		slog.Error("cleanup job failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped gracefully")
			return nil
		case <-ticker.C:
			if err := cleanupJob.Run(ctx); err != nil {
				slog.Error("cleanup job failed", slog.String("error", err.Error()))
			}
		}
	}
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runClient は対話ターミナルクライアントとして起動する。
// バックエンドAPIのベースURLはAPI_BASE_URL環境変数で指定する。
func runClient(baseURL string) error {
	client := api.NewClient(baseURL)
	controller := nav.NewController(authz.New())
	flow := authflow.NewFlow(client)

	term := terminal.New(controller, flow, client, os.Stdin, os.Stdout)
	return term.Run(context.Background())
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
