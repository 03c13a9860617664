package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/carhub/internal/model"
)

// PostgresSuggestionLogRepo はPostgreSQLを使用したAI提案監査ログリポジトリ。
type PostgresSuggestionLogRepo struct {
	db *sql.DB
}

// NewPostgresSuggestionLogRepo はPostgresSuggestionLogRepoを生成する。
func NewPostgresSuggestionLogRepo(db *sql.DB) *PostgresSuggestionLogRepo {
	return &PostgresSuggestionLogRepo{db: db}
}

// Create は監査ログを作成する。UserIDが空の場合はNULLとして保存する。
func (r *PostgresSuggestionLogRepo) Create(ctx context.Context, log *model.SuggestionLog) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO suggestion_logs (id, user_id, prompt, answer, model_name, created_at)
		 VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6)`,
		log.ID, log.UserID, log.Prompt, log.Answer, log.ModelName, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert suggestion log: %w", err)
	}
	return nil
}

// compile-time interface check
var _ SuggestionLogRepository = (*PostgresSuggestionLogRepo)(nil)
