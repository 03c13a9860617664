package suggest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/carhub/internal/model"
	"github.com/hitoshi/carhub/internal/repository"
)

// --- モック定義 ---

type mockGenerator struct {
	generateFn func(ctx context.Context, prompt string) (string, error)
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, prompt)
	}
	return "", nil
}

type mockSuggestionLogRepo struct {
	createFn func(ctx context.Context, log *model.SuggestionLog) error
}

func (m *mockSuggestionLogRepo) Create(ctx context.Context, log *model.SuggestionLog) error {
	if m.createFn != nil {
		return m.createFn(ctx, log)
	}
	return nil
}

// --- compile-time interface checks ---
var (
	_ Generator                          = (*mockGenerator)(nil)
	_ repository.SuggestionLogRepository = (*mockSuggestionLogRepo)(nil)
)

// --- テスト ---

func TestSuggest_Success_ReturnsAnswerAndWritesLog(t *testing.T) {
	ctx := context.Background()

	var gotPrompt string
	gen := &mockGenerator{
		generateFn: func(ctx context.Context, prompt string) (string, error) {
			gotPrompt = prompt
			return "Sugiro o Corolla, o Civic e o Onix.", nil
		},
	}

	var savedLog *model.SuggestionLog
	logRepo := &mockSuggestionLogRepo{
		createFn: func(ctx context.Context, log *model.SuggestionLog) error {
			savedLog = log
			return nil
		},
	}

	svc := NewService(gen, logRepo, "gemini-2.5-flash", 30*time.Second)

	answer, err := svc.Suggest(ctx, "user-7", "carro econômico para cidade")
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}

	if answer != "Sugiro o Corolla, o Civic e o Onix." {
		t.Errorf("answer = %q, want suggestion text", answer)
	}

	// プロンプトにユーザーの希望条件が埋め込まれること
	if !strings.Contains(gotPrompt, "carro econômico para cidade") {
		t.Errorf("prompt does not contain preferences: %q", gotPrompt)
	}

	// 監査ログが記録されること
	if savedLog == nil {
		t.Fatal("expected suggestion log to be written")
	}
	if savedLog.UserID != "user-7" {
		t.Errorf("log user ID = %q, want %q", savedLog.UserID, "user-7")
	}
	if savedLog.Prompt != "carro econômico para cidade" {
		t.Errorf("log prompt = %q, want preferences", savedLog.Prompt)
	}
	if savedLog.Answer != "Sugiro o Corolla, o Civic e o Onix." {
		t.Errorf("log answer = %q, want suggestion text", savedLog.Answer)
	}
	if savedLog.ModelName != "gemini-2.5-flash" {
		t.Errorf("log model = %q, want %q", savedLog.ModelName, "gemini-2.5-flash")
	}
}

func TestSuggest_GenerationFails_StillWritesLog(t *testing.T) {
	ctx := context.Background()

	gen := &mockGenerator{
		generateFn: func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("quota exceeded")
		},
	}

	var savedLog *model.SuggestionLog
	logRepo := &mockSuggestionLogRepo{
		createFn: func(ctx context.Context, log *model.SuggestionLog) error {
			savedLog = log
			return nil
		},
	}

	svc := NewService(gen, logRepo, "gemini-2.5-flash", 30*time.Second)

	_, err := svc.Suggest(ctx, "", "SUV familiar")
	if err == nil {
		t.Fatal("expected error when generation fails")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeSuggestionFailed {
		t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeSuggestionFailed)
	}

	// 失敗時も監査ログが記録されること
	if savedLog == nil {
		t.Fatal("expected suggestion log to be written on failure")
	}
	if !strings.Contains(savedLog.Answer, "quota exceeded") {
		t.Errorf("log answer = %q, want failure reason", savedLog.Answer)
	}
}

func TestSuggest_LogWriteFailure_DoesNotFailSuggestion(t *testing.T) {
	ctx := context.Background()

	gen := &mockGenerator{
		generateFn: func(ctx context.Context, prompt string) (string, error) {
			return "Sugiro o Corolla.", nil
		},
	}
	logRepo := &mockSuggestionLogRepo{
		createFn: func(ctx context.Context, log *model.SuggestionLog) error {
			return errors.New("db down")
		},
	}

	svc := NewService(gen, logRepo, "gemini-2.5-flash", 30*time.Second)

	answer, err := svc.Suggest(ctx, "user-7", "hatch compacto")
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if answer != "Sugiro o Corolla." {
		t.Errorf("answer = %q, want suggestion text", answer)
	}
}
