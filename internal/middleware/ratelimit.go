package middleware

import (
	"encoding/json"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig はレート制限の設定を保持する。
type RateLimiterConfig struct {
	GeneralRate     rate.Limit    // API全般のレート（req/sec）。120/60 = 2 req/sec
	GeneralBurst    int           // API全般のバーストサイズ
	RegisterRate    rate.Limit    // アカウント登録のレート（req/sec）。10/60
	RegisterBurst   int           // アカウント登録のバーストサイズ
	CheckoutRate    rate.Limit    // 購入確定のレート（req/sec）。20/60
	CheckoutBurst   int           // 購入確定のバーストサイズ
	CleanupInterval time.Duration // 期限切れエントリのクリーンアップ間隔
}

// DefaultRateLimiterConfig はデフォルトのレート制限設定を返す。
// API全般 120 req/min、アカウント登録 10 req/min、購入確定 20 req/min（いずれもIP単位）。
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(120.0 / 60.0), // 2 req/sec
		GeneralBurst:    120,
		RegisterRate:    rate.Limit(10.0 / 60.0), // ~0.167 req/sec
		RegisterBurst:   10,
		CheckoutRate:    rate.Limit(20.0 / 60.0), // ~0.333 req/sec
		CheckoutBurst:   20,
		CleanupInterval: 5 * time.Minute,
	}
}

// RateLimiterConfigFromPerMinute はreq/min単位の設定値からRateLimiterConfigを組み立てる。
// バーストサイズは1分あたりの許可リクエスト数と同じにする。
func RateLimiterConfigFromPerMinute(general, register, checkout int) RateLimiterConfig {
	cfg := DefaultRateLimiterConfig()
	if general > 0 {
		cfg.GeneralRate = rate.Limit(float64(general) / 60.0)
		cfg.GeneralBurst = general
	}
	if register > 0 {
		cfg.RegisterRate = rate.Limit(float64(register) / 60.0)
		cfg.RegisterBurst = register
	}
	if checkout > 0 {
		cfg.CheckoutRate = rate.Limit(float64(checkout) / 60.0)
		cfg.CheckoutBurst = checkout
	}
	return cfg
}

// clientLimiter はクライアントごとのレートリミッターとアクセス時刻を保持する。
type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// limiterTier は1種類のレート制限を管理する。
type limiterTier struct {
	name  string
	rate  rate.Limit
	burst int

	mu       sync.RWMutex
	limiters map[string]*clientLimiter
}

func newLimiterTier(name string, r rate.Limit, burst int) *limiterTier {
	return &limiterTier{
		name:     name,
		rate:     r,
		burst:    burst,
		limiters: make(map[string]*clientLimiter),
	}
}

// getOrCreate はクライアントのリミッターを取得または作成する。
func (t *limiterTier) getOrCreate(key string) *rate.Limiter {
	t.mu.RLock()
	cl, exists := t.limiters[key]
	t.mu.RUnlock()

	if exists {
		t.mu.Lock()
		cl.lastAccess = time.Now()
		t.mu.Unlock()
		return cl.limiter
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// ダブルチェック
	if cl, exists := t.limiters[key]; exists {
		cl.lastAccess = time.Now()
		return cl.limiter
	}

	limiter := rate.NewLimiter(t.rate, t.burst)
	t.limiters[key] = &clientLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	return limiter
}

// count は現在管理されているエントリ数を返す。
func (t *limiterTier) count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.limiters)
}

// cleanup は最終アクセス時刻がttlを超えたエントリを削除する。
func (t *limiterTier) cleanup(ttl time.Duration) {
	now := time.Now()

	t.mu.Lock()
	for key, cl := range t.limiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(t.limiters, key)
		}
	}
	t.mu.Unlock()
}

// RateLimiter はクライアントIPごとのレート制限を管理する。
// API全般、アカウント登録、購入確定の3種類を独立に提供する。
type RateLimiter struct {
	config RateLimiterConfig

	general  *limiterTier
	register *limiterTier
	checkout *limiterTier

	stopCh chan struct{}
}

// NewRateLimiter は新しいRateLimiterを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:   config,
		general:  newLimiterTier("general", config.GeneralRate, config.GeneralBurst),
		register: newLimiterTier("register", config.RegisterRate, config.RegisterBurst),
		checkout: newLimiterTier("checkout", config.CheckoutRate, config.CheckoutBurst),
		stopCh:   make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// GeneralMiddleware はAPI全般のレート制限ミドルウェアを返す。
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return rl.middlewareFor(rl.general)
}

// RegisterMiddleware はアカウント登録専用のレート制限ミドルウェアを返す。
// API全般のレート制限とは独立に動作する。
func (rl *RateLimiter) RegisterMiddleware() func(next http.Handler) http.Handler {
	return rl.middlewareFor(rl.register)
}

// CheckoutMiddleware は購入確定専用のレート制限ミドルウェアを返す。
func (rl *RateLimiter) CheckoutMiddleware() func(next http.Handler) http.Handler {
	return rl.middlewareFor(rl.checkout)
}

// middlewareFor は指定ティアのレート制限ミドルウェアを構築する。
func (rl *RateLimiter) middlewareFor(tier *limiterTier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			limiter := tier.getOrCreate(ip)

			if !limiter.Allow() {
				writeRateLimitResponse(w, tier.rate)
				slog.Warn("rate limit exceeded",
					slog.String("client_ip", ip),
					slog.String("limit_type", tier.name),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GeneralLimiterCount は現在管理されているAPI全般リミッターのエントリ数を返す。
// テストおよびメトリクス用。
func (rl *RateLimiter) GeneralLimiterCount() int {
	return rl.general.count()
}

// RegisterLimiterCount は現在管理されている登録リミッターのエントリ数を返す。
// テストおよびメトリクス用。
func (rl *RateLimiter) RegisterLimiterCount() int {
	return rl.register.count()
}

// cleanupLoop はバックグラウンドで期限切れエントリを定期的にクリーンアップする。
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ttl := rl.config.CleanupInterval * 2
			rl.general.cleanup(ttl)
			rl.register.cleanup(ttl)
			rl.checkout.cleanup(ttl)
		case <-rl.stopCh:
			return
		}
	}
}

// clientIP はレート制限のキーとなるクライアントIPを求める。
// リバースプロキシ経由を想定してX-Forwarded-Forの先頭を優先する。
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeRateLimitResponse は429 Too Many Requestsレスポンスを書き込む。
// Retry-Afterヘッダーにはトークンが補充されるまでの推定秒数を設定する。
func writeRateLimitResponse(w http.ResponseWriter, r rate.Limit) {
	// Retry-Afterの算出: 1トークンが補充されるまでの秒数
	retryAfterSec := int(math.Ceil(1.0 / float64(r)))
	if retryAfterSec < 1 {
		retryAfterSec = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSec))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	json.NewEncoder(w).Encode(map[string]string{
		"code":     "rate_limit_exceeded",
		"message":  "Too many requests. Please try again later.",
		"category": "system",
		"action":   "Please wait and retry after the specified time.",
	})
}
