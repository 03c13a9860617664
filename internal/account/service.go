// Package account はユーザー登録・ログイン・パスワード再設定のドメインロジックを提供する。
package account

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/carhub/internal/model"
	"github.com/hitoshi/carhub/internal/repository"
)

// AuthResult は認証成功時に返す識別情報。
// セッションの中身はクライアント側が保持するため、トークンは発行しない。
type AuthResult struct {
	UserID       string
	AccountClass model.AccountClass
}

// RegisterInput はユーザー登録の入力。
type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	AccountClass model.AccountClass
	PhoneNumber  string

	// 企業アカウントの場合のみ必須
	CompanyName string
	CNPJ        string
	WebsiteURL  string
}

// Service はアカウントに関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

// Register は新規ユーザーを登録する。
// 企業アカウントの場合は会社名とCNPJが必須で、
// usersとcompaniesのレコードを同一トランザクションで作成する。
// パスワードはbcryptでハッシュ化して保存する。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if !in.AccountClass.Valid() {
		return nil, model.NewInvalidAccountClassError(string(in.AccountClass))
	}
	if in.AccountClass == model.AccountCompany && (in.CompanyName == "" || in.CNPJ == "") {
		return nil, model.NewCompanyFieldsMissingError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		AccountClass: in.AccountClass,
		PhoneNumber:  in.PhoneNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var company *model.Company
	if in.AccountClass == model.AccountCompany {
		company = &model.Company{
			ID:          uuid.New().String(),
			UserID:      user.ID,
			CompanyName: in.CompanyName,
			CNPJ:        in.CNPJ,
			WebsiteURL:  in.WebsiteURL,
			CreatedAt:   now,
		}
	}

	if err := s.userRepo.Create(ctx, user, company); err != nil {
		return nil, err
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("account_class", string(user.AccountClass)),
	)

	return &AuthResult{UserID: user.ID, AccountClass: user.AccountClass}, nil
}

// Login はメールアドレスとパスワードで認証する。
// ユーザー不在とパスワード不一致は同一のエラー（INVALID_CREDENTIALS）として返し、
// 登録済みメールアドレスの探索を防ぐ。
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user for login: %w", err)
	}
	if user == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("login failed", slog.String("user_id", user.ID))
		return nil, model.NewInvalidCredentialsError()
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("account_class", string(user.AccountClass)),
	)

	return &AuthResult{UserID: user.ID, AccountClass: user.AccountClass}, nil
}

// ResetPassword は指定メールアドレスのユーザーのパスワードを再設定する。
// ユーザーが存在しない場合はUSER_NOT_FOUNDを返す。
func (s *Service) ResetPassword(ctx context.Context, email, newPassword string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user for password reset: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError(email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, user.ID, string(hash)); err != nil {
		return err
	}

	slog.Info("password reset", slog.String("user_id", user.ID))
	return nil
}

// GetProfile は指定ユーザーのプロフィールを取得する。
// 企業アカウントの場合は企業プロフィールをマージして返す。
func (s *Service) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user for profile: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(userID)
	}

	profile := &model.Profile{
		UserID:       user.ID,
		Name:         user.Name,
		Email:        user.Email,
		AccountClass: user.AccountClass,
		PhoneNumber:  user.PhoneNumber,
	}

	if user.AccountClass == model.AccountCompany {
		company, err := s.userRepo.FindCompanyByUserID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to find company profile: %w", err)
		}
		if company != nil {
			profile.CompanyName = company.CompanyName
			profile.CNPJ = company.CNPJ
			profile.WebsiteURL = company.WebsiteURL
		}
	}

	return profile, nil
}
