package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/carhub/internal/model"
)

// uniqueViolation はPostgreSQLの一意制約違反のエラーコード。
const uniqueViolation = "23505"

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	var phone sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, account_class, phone_number, created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.AccountClass, &phone, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	user.PhoneNumber = phone.String

	return user, nil
}

// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	var phone sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, account_class, phone_number, created_at, updated_at
		 FROM users WHERE email = $1`,
		email,
	).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.AccountClass, &phone, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	user.PhoneNumber = phone.String

	return user, nil
}

// Create はユーザーを作成する。companyがnilでない場合は
// 企業プロフィールを同一トランザクションで作成する。
// メールアドレスが重複している場合はAPIError（EMAIL_TAKEN）を返す。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User, company *model.Company) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, account_class, phone_number, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.AccountClass, user.PhoneNumber, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return model.NewEmailTakenError(user.Email)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	if company != nil {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO companies (id, user_id, company_name, cnpj, website_url, created_at)
			 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)`,
			company.ID, company.UserID, company.CompanyName, company.CNPJ, company.WebsiteURL, company.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert company: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdatePasswordHash は指定ユーザーのパスワードハッシュを更新する。
func (r *PostgresUserRepo) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`,
		passwordHash, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewUserNotFoundError(userID)
	}
	return nil
}

// FindCompanyByUserID はユーザーの企業プロフィールを取得する。
// 見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindCompanyByUserID(ctx context.Context, userID string) (*model.Company, error) {
	company := &model.Company{}
	var website sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, company_name, cnpj, website_url, created_at
		 FROM companies WHERE user_id = $1`,
		userID,
	).Scan(&company.ID, &company.UserID, &company.CompanyName, &company.CNPJ, &website, &company.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find company by user ID: %w", err)
	}
	company.WebsiteURL = website.String

	return company, nil
}

// ListCompanies は企業アカウントの公開情報一覧を作成日時の降順で返す。
func (r *PostgresUserRepo) ListCompanies(ctx context.Context) ([]*model.CompanySummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.name, u.email, COALESCE(u.phone_number, ''),
		        c.company_name, c.cnpj, COALESCE(c.website_url, '')
		 FROM users u
		 JOIN companies c ON c.user_id = u.id
		 WHERE u.account_class = $1
		 ORDER BY c.created_at DESC`,
		model.AccountCompany,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var summaries []*model.CompanySummary
	for rows.Next() {
		s := &model.CompanySummary{}
		if err := rows.Scan(&s.UserID, &s.Name, &s.Email, &s.PhoneNumber, &s.CompanyName, &s.CNPJ, &s.WebsiteURL); err != nil {
			return nil, fmt.Errorf("failed to scan company summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate company summaries: %w", err)
	}

	return summaries, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
