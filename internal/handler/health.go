package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger はヘルスチェックで疎通確認する対象。*sql.DBが満たす。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewHealthCheck はヘルスチェックのHandlerFuncを生成する。
// DBへの疎通が取れれば200、取れなければ503を返す。
func NewHealthCheck(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
