// Package nav はシングルページクライアントの画面遷移とセッション状態を管理する。
// 画面は常にちょうど1つだけアクティブであり、遷移はすべてControllerを経由する。
package nav

import "github.com/hitoshi/carhub/internal/model"

// Screen はクライアントの画面を表す閉じた列挙。
type Screen int

const (
	// ScreenListing は車両一覧（初期画面）。
	ScreenListing Screen = iota
	// ScreenAISuggestion はAI車両提案画面。
	ScreenAISuggestion
	// ScreenCompanyList は企業一覧画面。
	ScreenCompanyList
	// ScreenAuth はログイン・登録画面。
	ScreenAuth
	// ScreenSell は出品画面。
	ScreenSell
	// ScreenProfile はプロフィール画面。
	ScreenProfile
	// ScreenCheckout は購入手続き画面。
	ScreenCheckout
	// ScreenPasswordReset はパスワード再設定画面。
	ScreenPasswordReset
)

// String は画面名を返す。
func (s Screen) String() string {
	switch s {
	case ScreenListing:
		return "Listing"
	case ScreenAISuggestion:
		return "AISuggestion"
	case ScreenCompanyList:
		return "CompanyList"
	case ScreenAuth:
		return "Auth"
	case ScreenSell:
		return "Sell"
	case ScreenProfile:
		return "Profile"
	case ScreenCheckout:
		return "Checkout"
	case ScreenPasswordReset:
		return "PasswordReset"
	default:
		return "Unknown"
	}
}

// Session はログイン中のユーザーを表す。
// ゼロ値は未ログインを意味する。設定とクリアはControllerのみが行い、
// UserIDとAccountClassは常に同時に更新される。
type Session struct {
	UserID       string
	AccountClass model.AccountClass
}

// LoggedIn はセッションが設定済みかを返す。
func (s Session) LoggedIn() bool {
	return s.UserID != ""
}

// VehicleRef は購入対象の車両への参照。
type VehicleRef struct {
	VehicleID string
	Make      string
	Model     string
	Price     float64
}

// PurchaseIntent は未ログイン時に退避された購入意図。
// 同時に保持されるのは最大1件で、認証成功またはキャンセルで消費される。
type PurchaseIntent struct {
	Vehicle VehicleRef
}
