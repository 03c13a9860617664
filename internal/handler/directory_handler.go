package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/carhub/internal/model"
)

// DirectoryServiceInterface は企業一覧ハンドラーが必要とするサービスインターフェース。
type DirectoryServiceInterface interface {
	// ListCompanies は企業アカウントの公開情報一覧を返す。
	ListCompanies(ctx context.Context) ([]*model.CompanySummary, error)
}

// DirectoryHandler は企業一覧のHTTPハンドラー。
type DirectoryHandler struct {
	service DirectoryServiceInterface
}

// NewDirectoryHandler はDirectoryHandlerを生成する。
func NewDirectoryHandler(service DirectoryServiceInterface) *DirectoryHandler {
	return &DirectoryHandler{service: service}
}

// companyResponse は企業一覧のAPIレスポンス。
type companyResponse struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone,omitempty"`
	CompanyName string `json:"company_name"`
	CNPJ        string `json:"cnpj"`
	WebsiteURL  string `json:"website_url,omitempty"`
	LogoURL     string `json:"logo_url,omitempty"`
}

// ListCompanies は企業一覧を返す。
// GET /api/companies
func (h *DirectoryHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.ListCompanies(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]companyResponse, 0, len(summaries))
	for _, s := range summaries {
		responses = append(responses, companyResponse{
			UserID:      s.UserID,
			Name:        s.Name,
			Email:       s.Email,
			PhoneNumber: s.PhoneNumber,
			CompanyName: s.CompanyName,
			CNPJ:        s.CNPJ,
			WebsiteURL:  s.WebsiteURL,
			LogoURL:     s.LogoURL,
		})
	}

	writeJSON(w, http.StatusOK, responses)
}
