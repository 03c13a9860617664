// Package suggest はAIによる車両提案のビジネスロジックを提供する。
package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/hitoshi/carhub/internal/model"
	"github.com/hitoshi/carhub/internal/repository"
)

// promptTemplate は車両提案のプロンプト。
// ブラジル市場向けのためポルトガル語で応答させる。
const promptTemplate = `Você é um assistente de compra de carros.
Analise o pedido do usuário para sugerir 3 modelos de carros no mercado brasileiro com uma breve justificativa para cada.
Pedido: '%s'
Responda em português e de forma amigável.`

// Generator はテキスト生成のインターフェース。
// 本番実装はGemini APIを呼び出す。
type Generator interface {
	// Generate はプロンプトに対する生成テキストを返す。
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator はGemini APIを使用するGeneratorの実装。
// クライアントは初回呼び出し時に生成される。
type GeminiGenerator struct {
	apiKey    string
	modelName string
	client    *genai.Client
}

// NewGeminiGenerator はGeminiGeneratorの新しいインスタンスを生成する。
func NewGeminiGenerator(apiKey, modelName string) *GeminiGenerator {
	return &GeminiGenerator{
		apiKey:    apiKey,
		modelName: modelName,
	}
}

// Generate はGemini APIでプロンプトに対するテキストを生成する。
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.client == nil {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return "", fmt.Errorf("failed to create Gemini client: %w", err)
		}
		g.client = client
	}

	result, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if result == nil {
		return "", fmt.Errorf("empty response from Gemini API")
	}

	return result.Text(), nil
}

// compile-time interface check
var _ Generator = (*GeminiGenerator)(nil)

// Service は車両提案のビジネスロジックを提供する。
type Service struct {
	generator Generator
	logRepo   repository.SuggestionLogRepository
	modelName string
	timeout   time.Duration
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(generator Generator, logRepo repository.SuggestionLogRepository, modelName string, timeout time.Duration) *Service {
	return &Service{
		generator: generator,
		logRepo:   logRepo,
		modelName: modelName,
		timeout:   timeout,
	}
}

// Suggest はユーザーの希望条件から車両提案を生成する。
// 生成の成否にかかわらず監査ログを記録する。ログの記録失敗は
// 提案の失敗にはしない。userIDは未ログイン時は空文字列。
func (s *Service) Suggest(ctx context.Context, userID, preferences string) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := fmt.Sprintf(promptTemplate, preferences)

	answer, genErr := s.generator.Generate(genCtx, prompt)
	if genErr != nil {
		slog.ErrorContext(ctx, "suggestion generation failed",
			"user_id", userID,
			"error", genErr,
		)
		// 失敗もエラーメッセージを回答として監査ログに残す
		answer = fmt.Sprintf("generation failed: %v", genErr)
	}

	s.writeLog(ctx, userID, preferences, answer)

	if genErr != nil {
		return "", model.NewSuggestionFailedError()
	}
	return answer, nil
}

// writeLog は監査ログを記録する。失敗は警告ログのみで握りつぶす。
func (s *Service) writeLog(ctx context.Context, userID, preferences, answer string) {
	log := &model.SuggestionLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Prompt:    preferences,
		Answer:    answer,
		ModelName: s.modelName,
		CreatedAt: time.Now(),
	}
	if err := s.logRepo.Create(ctx, log); err != nil {
		slog.WarnContext(ctx, "failed to write suggestion log", "error", err)
	}
}
