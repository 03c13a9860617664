// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, vehicle, checkout, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeEmailTaken           = "EMAIL_TAKEN"
	ErrCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	ErrCodeUserNotFound         = "USER_NOT_FOUND"
	ErrCodeCompanyFieldsMissing = "COMPANY_FIELDS_MISSING"
	ErrCodeInvalidAccountClass  = "INVALID_ACCOUNT_CLASS"
	ErrCodeVehicleNotFound      = "VEHICLE_NOT_FOUND"
	ErrCodeVehicleSold          = "VEHICLE_SOLD"
	ErrCodeInvalidVehicle       = "INVALID_VEHICLE"
	ErrCodeInvalidURL           = "INVALID_URL"
	ErrCodeSSRFBlocked          = "SSRF_BLOCKED"
	ErrCodeSuggestionFailed     = "SUGGESTION_FAILED"
)

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  fmt.Sprintf("このメールアドレスは既に登録されています: %s", email),
		Category: "validation",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// メールアドレス未登録とパスワード不一致を区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %s", userID),
		Category: "auth",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewCompanyFieldsMissingError は企業登録に必要なフィールドの欠落エラーを生成する。
func NewCompanyFieldsMissingError() *APIError {
	return &APIError{
		Code:     ErrCodeCompanyFieldsMissing,
		Message:  "企業アカウントの登録には会社名とCNPJが必要です。",
		Category: "validation",
		Action:   "会社名とCNPJを入力してください。",
	}
}

// NewInvalidAccountClassError は不正なアカウント種別エラーを生成する。
func NewInvalidAccountClassError(class string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidAccountClass,
		Message:  fmt.Sprintf("不正なアカウント種別です: %s", class),
		Category: "validation",
		Action:   "アカウント種別には Person または Company を指定してください。",
	}
}

// NewVehicleNotFoundError は車両未検出エラーを生成する。
func NewVehicleNotFoundError(vehicleID string) *APIError {
	return &APIError{
		Code:     ErrCodeVehicleNotFound,
		Message:  fmt.Sprintf("指定された車両が見つかりません: %s", vehicleID),
		Category: "vehicle",
		Action:   "車両IDを確認してください。",
	}
}

// NewVehicleSoldError は売却済み車両に対する購入エラーを生成する。
func NewVehicleSoldError(vehicleID string) *APIError {
	return &APIError{
		Code:     ErrCodeVehicleSold,
		Message:  fmt.Sprintf("この車両は既に売却済みです: %s", vehicleID),
		Category: "checkout",
		Action:   "車両一覧を更新して別の車両をお選びください。",
	}
}

// NewInvalidVehicleError は車両情報の検証エラーを生成する。
func NewInvalidVehicleError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidVehicle,
		Message:  fmt.Sprintf("車両情報が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewInvalidURLError は無効なURLエラーを生成する。
func NewInvalidURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidURL,
		Message:  fmt.Sprintf("無効なURLです: %s", reason),
		Category: "validation",
		Action:   "正しいURL形式（http:// または https:// で始まるURL）を入力してください。",
	}
}

// NewSSRFBlockedError はSSRFブロックエラーを生成する。
func NewSSRFBlockedError() *APIError {
	return &APIError{
		Code:     ErrCodeSSRFBlocked,
		Message:  "セキュリティポリシーにより、指定されたURLへのアクセスがブロックされました。",
		Category: "validation",
		Action:   "公開されている外部URLを指定してください。",
	}
}

// NewSuggestionFailedError はAI提案の生成失敗エラーを生成する。
func NewSuggestionFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeSuggestionFailed,
		Message:  "車両提案の生成に失敗しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
