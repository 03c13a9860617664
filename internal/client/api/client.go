// Package api はバックエンドのREST APIを呼び出すクライアント実装を提供する。
// 画面側のフローが必要とする窓口インターフェースをHTTPで満たす。
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hitoshi/carhub/internal/client/authflow"
	"github.com/hitoshi/carhub/internal/model"
)

const defaultTimeout = 15 * time.Second

// Vehicle は車両一覧・詳細の応答。
type Vehicle struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"seller_id"`
	Make        string    `json:"make"`
	Model       string    `json:"model"`
	Year        int       `json:"year"`
	Mileage     int       `json:"mileage"`
	Price       float64   `json:"price"`
	FuelType    string    `json:"fuel_type"`
	Color       string    `json:"color"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// VehicleInput は車両出品のリクエスト。
type VehicleInput struct {
	SellerID    string  `json:"seller_id"`
	SellerClass string  `json:"seller_class"`
	Make        string  `json:"make"`
	Model       string  `json:"model"`
	Year        int     `json:"year"`
	Mileage     int     `json:"mileage"`
	Price       float64 `json:"price"`
	FuelType    string  `json:"fuel_type"`
	Color       string  `json:"color"`
	Description string  `json:"description"`
	PhotoURL    string  `json:"photo_url"`
}

// Company は企業一覧の応答。
type Company struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone,omitempty"`
	CompanyName string `json:"company_name"`
	CNPJ        string `json:"cnpj"`
	WebsiteURL  string `json:"website_url,omitempty"`
	LogoURL     string `json:"logo_url,omitempty"`
}

// Profile はプロフィールの応答。
type Profile struct {
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	AccountClass string `json:"account_class"`
	PhoneNumber  string `json:"phone,omitempty"`
	CompanyName  string `json:"company_name,omitempty"`
	CNPJ         string `json:"cnpj,omitempty"`
	WebsiteURL   string `json:"website_url,omitempty"`
}

// Suggestion はAI提案の応答。
type Suggestion struct {
	Suggestion string `json:"suggestion"`
	ModelName  string `json:"model"`
}

// Client はバックエンドAPIのHTTPクライアント。
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient はClientを生成する。baseURLの末尾のスラッシュは取り除かれる。
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// NewClientWithHTTPClient はHTTPクライアントを差し替えてClientを生成する。
func NewClientWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

var _ authflow.AccountClient = (*Client)(nil)

// Login はログインを行い、認証結果を返す。
func (c *Client) Login(ctx context.Context, email, password string) (authflow.Result, error) {
	body := map[string]string{"email": email, "password": password}

	var resp struct {
		UserID       string `json:"user_id"`
		AccountClass string `json:"account_class"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", body, http.StatusOK, &resp); err != nil {
		return authflow.Result{}, err
	}
	return authflow.Result{
		UserID:       resp.UserID,
		AccountClass: model.AccountClass(resp.AccountClass),
	}, nil
}

// Register はアカウント登録を行い、認証結果を返す。
func (c *Client) Register(ctx context.Context, form authflow.RegisterForm) (authflow.Result, error) {
	body := map[string]string{
		"name":         form.Name,
		"email":        form.Email,
		"password":     form.Password,
		"account_type": string(form.AccountClass),
	}
	if form.CompanyName != "" {
		body["company_name"] = form.CompanyName
	}
	if form.CNPJ != "" {
		body["cnpj"] = form.CNPJ
	}

	var resp struct {
		UserID       string `json:"user_id"`
		AccountClass string `json:"account_class"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", body, http.StatusCreated, &resp); err != nil {
		return authflow.Result{}, err
	}
	return authflow.Result{
		UserID:       resp.UserID,
		AccountClass: model.AccountClass(resp.AccountClass),
	}, nil
}

// ResetPassword はパスワードを再設定する。
func (c *Client) ResetPassword(ctx context.Context, email, newPassword string) error {
	body := map[string]string{"email": email, "new_password": newPassword}
	return c.doJSON(ctx, http.MethodPost, "/api/auth/reset", body, http.StatusOK, nil)
}

// GetProfile はプロフィールを取得する。
func (c *Client) GetProfile(ctx context.Context, userID string) (Profile, error) {
	var profile Profile
	path := "/api/users/" + userID
	if err := c.doJSON(ctx, http.MethodGet, path, nil, http.StatusOK, &profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// ListVehicles は販売中の車両一覧を取得する。makeFilterとminPriceは任意の絞り込み。
func (c *Client) ListVehicles(ctx context.Context, makeFilter string, minPrice float64) ([]Vehicle, error) {
	path := "/api/vehicles"
	params := make([]string, 0, 2)
	if makeFilter != "" {
		params = append(params, "make="+makeFilter)
	}
	if minPrice > 0 {
		params = append(params, "min_price="+strconv.FormatFloat(minPrice, 'f', -1, 64))
	}
	if len(params) > 0 {
		path += "?" + strings.Join(params, "&")
	}

	var vehicles []Vehicle
	if err := c.doJSON(ctx, http.MethodGet, path, nil, http.StatusOK, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// CreateVehicle は車両を出品する。
func (c *Client) CreateVehicle(ctx context.Context, input VehicleInput) (Vehicle, error) {
	var vehicle Vehicle
	if err := c.doJSON(ctx, http.MethodPost, "/api/vehicles", input, http.StatusCreated, &vehicle); err != nil {
		return Vehicle{}, err
	}
	return vehicle, nil
}

// ListCompanies は販売企業の一覧を取得する。
func (c *Client) ListCompanies(ctx context.Context) ([]Company, error) {
	var companies []Company
	if err := c.doJSON(ctx, http.MethodGet, "/api/companies", nil, http.StatusOK, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

// SubmitPurchase は購入を確定し、売買IDを返す。
func (c *Client) SubmitPurchase(ctx context.Context, buyerID, vehicleID string, amount float64) (string, error) {
	body := map[string]any{
		"buyer_id":   buyerID,
		"vehicle_id": vehicleID,
		"amount":     amount,
	}

	var resp struct {
		SaleID string `json:"sale_id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/checkout", body, http.StatusCreated, &resp); err != nil {
		return "", err
	}
	return resp.SaleID, nil
}

// CancelCheckout は購入手続きのキャンセルをサーバーに通知する。
func (c *Client) CancelCheckout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/checkout/cancel", nil, http.StatusNoContent, nil)
}

// Suggest は希望条件からAIによる車両提案を取得する。
func (c *Client) Suggest(ctx context.Context, userID, preferences string) (Suggestion, error) {
	body := map[string]string{"preferences": preferences}
	if userID != "" {
		body["user_id"] = userID
	}

	var suggestion Suggestion
	if err := c.doJSON(ctx, http.MethodPost, "/api/suggest", body, http.StatusOK, &suggestion); err != nil {
		return Suggestion{}, err
	}
	return suggestion, nil
}

// doJSON はJSONリクエストを送信し、期待ステータスなら応答をoutへデコードする。
// エラー応答はmodel.APIErrorとして返され、呼び出し側でerrors.Asを使える。
func (c *Client) doJSON(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// decodeAPIError はエラー応答をmodel.APIErrorへ変換する。
// APIエラー形式でない応答はステータスコードだけを持つエラーになる。
func decodeAPIError(resp *http.Response) error {
	var apiErr model.APIError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Code == "" {
		return fmt.Errorf("unexpected response status %d", resp.StatusCode)
	}
	return &apiErr
}
