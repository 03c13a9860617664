package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/carhub/internal/model"
)

// --- モック定義 ---

type mockSuggestService struct {
	suggestFn func(ctx context.Context, userID, preferences string) (string, error)
}

func (m *mockSuggestService) Suggest(ctx context.Context, userID, preferences string) (string, error) {
	if m.suggestFn != nil {
		return m.suggestFn(ctx, userID, preferences)
	}
	return "", nil
}

var _ SuggestServiceInterface = (*mockSuggestService)(nil)

// --- テスト ---

func TestSuggest_Success_ReturnsSuggestion(t *testing.T) {
	svc := &mockSuggestService{
		suggestFn: func(ctx context.Context, userID, preferences string) (string, error) {
			return "Sugiro o Corolla, o Civic e o Onix.", nil
		},
	}

	h := NewSuggestHandler(svc, nopCollector{}, "gemini-2.5-flash")

	body := bytes.NewBufferString(`{"user_id":"u-1","preferences":"carro econômico"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/suggest", body)
	w := httptest.NewRecorder()

	h.Suggest(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp suggestResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Suggestion == "" {
		t.Error("expected non-empty suggestion")
	}
	if resp.ModelName != "gemini-2.5-flash" {
		t.Errorf("model = %q, want %q", resp.ModelName, "gemini-2.5-flash")
	}
}

func TestSuggest_EmptyPreferences_Returns400(t *testing.T) {
	h := NewSuggestHandler(&mockSuggestService{}, nopCollector{}, "gemini-2.5-flash")

	body := bytes.NewBufferString(`{"preferences":""}`)
	req := httptest.NewRequest(http.MethodPost, "/api/suggest", body)
	w := httptest.NewRecorder()

	h.Suggest(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestSuggest_GenerationFailure_Returns502(t *testing.T) {
	svc := &mockSuggestService{
		suggestFn: func(ctx context.Context, userID, preferences string) (string, error) {
			return "", model.NewSuggestionFailedError()
		},
	}

	h := NewSuggestHandler(svc, nopCollector{}, "gemini-2.5-flash")

	body := bytes.NewBufferString(`{"preferences":"SUV familiar"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/suggest", body)
	w := httptest.NewRecorder()

	h.Suggest(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}
}
