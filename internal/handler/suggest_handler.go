package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/carhub/internal/metrics"
	"github.com/hitoshi/carhub/internal/model"
)

// SuggestServiceInterface はAI提案ハンドラーが必要とするサービスインターフェース。
type SuggestServiceInterface interface {
	// Suggest は希望条件から車両提案を生成する。
	Suggest(ctx context.Context, userID, preferences string) (string, error)
}

// SuggestHandler はAI車両提案のHTTPハンドラー。
type SuggestHandler struct {
	service   SuggestServiceInterface
	collector metrics.MetricsCollector
	modelName string
}

// NewSuggestHandler はSuggestHandlerを生成する。
func NewSuggestHandler(service SuggestServiceInterface, collector metrics.MetricsCollector, modelName string) *SuggestHandler {
	return &SuggestHandler{
		service:   service,
		collector: collector,
		modelName: modelName,
	}
}

// suggestRequest はAI提案リクエストのボディ。
type suggestRequest struct {
	UserID      string `json:"user_id,omitempty"`
	Preferences string `json:"preferences"`
}

// suggestResponse はAI提案のレスポンス。
type suggestResponse struct {
	Suggestion string `json:"suggestion"`
	ModelName  string `json:"model"`
}

// Suggest はAI車両提案を処理する。
// POST /api/suggest
func (h *SuggestHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	if req.Preferences == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "希望条件が空です。",
			Category: "validation",
			Action:   "探している車の条件を入力してください。",
		})
		return
	}

	start := time.Now()
	suggestion, err := h.service.Suggest(r.Context(), req.UserID, req.Preferences)
	h.collector.RecordSuggestionLatency(time.Since(start))

	if err != nil {
		h.collector.RecordSuggestionFailure()
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, suggestResponse{
		Suggestion: suggestion,
		ModelName:  h.modelName,
	})
}
