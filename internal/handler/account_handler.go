package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/carhub/internal/account"
	"github.com/hitoshi/carhub/internal/metrics"
	"github.com/hitoshi/carhub/internal/model"
)

// AccountServiceInterface はアカウントハンドラーが必要とするサービスインターフェース。
type AccountServiceInterface interface {
	// Register はアカウントを登録する。
	Register(ctx context.Context, input account.RegisterInput) (*account.AuthResult, error)
	// Login はメールアドレスとパスワードで認証する。
	Login(ctx context.Context, email, password string) (*account.AuthResult, error)
	// ResetPassword はパスワードを再設定する。
	ResetPassword(ctx context.Context, email, newPassword string) error
	// GetProfile はプロフィールを取得する。
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
}

// AccountHandler はアカウント管理のHTTPハンドラー。
type AccountHandler struct {
	service   AccountServiceInterface
	collector metrics.MetricsCollector
}

// NewAccountHandler はAccountHandlerを生成する。
func NewAccountHandler(service AccountServiceInterface, collector metrics.MetricsCollector) *AccountHandler {
	return &AccountHandler{
		service:   service,
		collector: collector,
	}
}

// registerRequest はアカウント登録リクエストのボディ。
type registerRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	AccountClass string `json:"account_type"`
	PhoneNumber  string `json:"phone,omitempty"`
	CompanyName  string `json:"company_name,omitempty"`
	CNPJ         string `json:"cnpj,omitempty"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// resetRequest はパスワード再設定リクエストのボディ。
type resetRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

// authResponse は認証成功時のレスポンス。
type authResponse struct {
	UserID       string `json:"user_id"`
	AccountClass string `json:"account_class"`
}

// profileResponse はプロフィールAPIのレスポンス。
type profileResponse struct {
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	AccountClass string `json:"account_class"`
	PhoneNumber  string `json:"phone,omitempty"`
	CompanyName  string `json:"company_name,omitempty"`
	CNPJ         string `json:"cnpj,omitempty"`
	WebsiteURL   string `json:"website_url,omitempty"`
}

// Register はアカウント登録を処理する。
// POST /api/auth/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	result, err := h.service.Register(r.Context(), account.RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		AccountClass: model.AccountClass(req.AccountClass),
		PhoneNumber:  req.PhoneNumber,
		CompanyName:  req.CompanyName,
		CNPJ:         req.CNPJ,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.collector.RecordRegistration(string(result.AccountClass))

	writeJSON(w, http.StatusCreated, authResponse{
		UserID:       result.UserID,
		AccountClass: string(result.AccountClass),
	})
}

// Login はログインを処理する。
// POST /api/auth/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.collector.RecordLoginFailure()
		handleServiceError(w, err)
		return
	}

	h.collector.RecordLoginSuccess()

	writeJSON(w, http.StatusOK, authResponse{
		UserID:       result.UserID,
		AccountClass: string(result.AccountClass),
	})
}

// ResetPassword はパスワード再設定を処理する。
// POST /api/auth/reset
func (h *AccountHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Email, req.NewPassword); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetProfile はプロフィール取得を処理する。
// GET /api/users/:id
func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		UserID:       profile.UserID,
		Name:         profile.Name,
		Email:        profile.Email,
		AccountClass: string(profile.AccountClass),
		PhoneNumber:  profile.PhoneNumber,
		CompanyName:  profile.CompanyName,
		CNPJ:         profile.CNPJ,
		WebsiteURL:   profile.WebsiteURL,
	})
}
