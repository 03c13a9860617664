package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/carhub/internal/account"
	"github.com/hitoshi/carhub/internal/metrics"
	"github.com/hitoshi/carhub/internal/model"
)

// --- モック定義 ---

// nopCollector は何も記録しないメトリクスコレクター。
type nopCollector struct{}

func (nopCollector) RecordRegistration(accountClass string)         {}
func (nopCollector) RecordLoginSuccess()                            {}
func (nopCollector) RecordLoginFailure()                            {}
func (nopCollector) RecordVehicleCreated()                          {}
func (nopCollector) RecordSaleCompleted()                           {}
func (nopCollector) RecordCheckoutCancelled()                       {}
func (nopCollector) RecordSuggestionLatency(duration time.Duration) {}
func (nopCollector) RecordSuggestionFailure()                       {}
func (nopCollector) RecordHTTPStatus(statusCode int)                {}

var _ metrics.MetricsCollector = nopCollector{}

type mockAccountService struct {
	registerFn      func(ctx context.Context, input account.RegisterInput) (*account.AuthResult, error)
	loginFn         func(ctx context.Context, email, password string) (*account.AuthResult, error)
	resetPasswordFn func(ctx context.Context, email, newPassword string) error
	getProfileFn    func(ctx context.Context, userID string) (*model.Profile, error)
}

func (m *mockAccountService) Register(ctx context.Context, input account.RegisterInput) (*account.AuthResult, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, input)
	}
	return &account.AuthResult{}, nil
}

func (m *mockAccountService) Login(ctx context.Context, email, password string) (*account.AuthResult, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return &account.AuthResult{}, nil
}

func (m *mockAccountService) ResetPassword(ctx context.Context, email, newPassword string) error {
	if m.resetPasswordFn != nil {
		return m.resetPasswordFn(ctx, email, newPassword)
	}
	return nil
}

func (m *mockAccountService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	if m.getProfileFn != nil {
		return m.getProfileFn(ctx, userID)
	}
	return &model.Profile{}, nil
}

var _ AccountServiceInterface = (*mockAccountService)(nil)

// --- テスト ---

func TestRegister_Success_Returns201(t *testing.T) {
	svc := &mockAccountService{
		registerFn: func(ctx context.Context, input account.RegisterInput) (*account.AuthResult, error) {
			if input.AccountClass != model.AccountPerson {
				t.Errorf("account class = %q, want %q", input.AccountClass, model.AccountPerson)
			}
			return &account.AuthResult{UserID: "user-1", AccountClass: model.AccountPerson}, nil
		},
	}

	h := NewAccountHandler(svc, nopCollector{})

	body := bytes.NewBufferString(`{"name":"João","email":"joao@example.com","password":"pw","account_type":"Person"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", body)
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d\nbody: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var resp struct {
		UserID       string `json:"user_id"`
		AccountClass string `json:"account_class"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.UserID != "user-1" {
		t.Errorf("user_id = %q, want %q", resp.UserID, "user-1")
	}
	if resp.AccountClass != "Person" {
		t.Errorf("account_class = %q, want %q", resp.AccountClass, "Person")
	}
}

func TestRegister_EmailTaken_Returns409(t *testing.T) {
	svc := &mockAccountService{
		registerFn: func(ctx context.Context, input account.RegisterInput) (*account.AuthResult, error) {
			return nil, model.NewEmailTakenError(input.Email)
		},
	}

	h := NewAccountHandler(svc, nopCollector{})

	body := bytes.NewBufferString(`{"name":"X","email":"dup@example.com","password":"pw","account_type":"Person"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", body)
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}

	var resp apiErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != model.ErrCodeEmailTaken {
		t.Errorf("code = %q, want %q", resp.Code, model.ErrCodeEmailTaken)
	}
}

func TestRegister_MissingCompanyFields_Returns400(t *testing.T) {
	svc := &mockAccountService{
		registerFn: func(ctx context.Context, input account.RegisterInput) (*account.AuthResult, error) {
			return nil, model.NewCompanyFieldsMissingError()
		},
	}

	h := NewAccountHandler(svc, nopCollector{})

	body := bytes.NewBufferString(`{"name":"X","email":"c@example.com","password":"pw","account_type":"Company"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", body)
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestRegister_InvalidJSON_Returns400(t *testing.T) {
	h := NewAccountHandler(&mockAccountService{}, nopCollector{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString("{broken"))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestLogin_Success_Returns200(t *testing.T) {
	svc := &mockAccountService{
		loginFn: func(ctx context.Context, email, password string) (*account.AuthResult, error) {
			return &account.AuthResult{UserID: "user-7", AccountClass: model.AccountCompany}, nil
		},
	}

	h := NewAccountHandler(svc, nopCollector{})

	body := bytes.NewBufferString(`{"email":"c@example.com","password":"pw"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		AccountClass string `json:"account_class"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.AccountClass != "Company" {
		t.Errorf("account_class = %q, want %q", resp.AccountClass, "Company")
	}
}

func TestLogin_InvalidCredentials_Returns401(t *testing.T) {
	svc := &mockAccountService{
		loginFn: func(ctx context.Context, email, password string) (*account.AuthResult, error) {
			return nil, model.NewInvalidCredentialsError()
		},
	}

	h := NewAccountHandler(svc, nopCollector{})

	body := bytes.NewBufferString(`{"email":"x@example.com","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestResetPassword_UnknownEmail_Returns404(t *testing.T) {
	svc := &mockAccountService{
		resetPasswordFn: func(ctx context.Context, email, newPassword string) error {
			return model.NewUserNotFoundError(email)
		},
	}

	h := NewAccountHandler(svc, nopCollector{})

	body := bytes.NewBufferString(`{"email":"unknown@example.com","new_password":"pw"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/reset", body)
	w := httptest.NewRecorder()

	h.ResetPassword(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestGetProfile_CompanyFieldsIncluded(t *testing.T) {
	svc := &mockAccountService{
		getProfileFn: func(ctx context.Context, userID string) (*model.Profile, error) {
			return &model.Profile{
				UserID:       userID,
				Name:         "Auto Center",
				Email:        "c@example.com",
				AccountClass: model.AccountCompany,
				CompanyName:  "Auto Center LTDA",
				CNPJ:         "12.345.678/0001-90",
			}, nil
		},
	}

	h := NewAccountHandler(svc, nopCollector{})

	req := newRequestWithURLParam(http.MethodGet, "/api/users/user-9", "id", "user-9")
	w := httptest.NewRecorder()

	h.GetProfile(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		CompanyName string `json:"company_name"`
		CNPJ        string `json:"cnpj"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.CompanyName != "Auto Center LTDA" {
		t.Errorf("company_name = %q, want %q", resp.CompanyName, "Auto Center LTDA")
	}
	if resp.CNPJ != "12.345.678/0001-90" {
		t.Errorf("cnpj = %q, want %q", resp.CNPJ, "12.345.678/0001-90")
	}
}
