// Package authz は画面遷移のルート認可を提供する。
// 判定はセッション状態と購入データの有無のみに依存する純粋なルール評価で、
// 外部I/Oを行わない。
package authz

import (
	"github.com/hitoshi/carhub/internal/client/nav"
	"github.com/hitoshi/carhub/internal/model"
)

// publicScreens は未ログインでも閲覧できる画面。
var publicScreens = map[nav.Screen]bool{
	nav.ScreenListing:       true,
	nav.ScreenAISuggestion:  true,
	nav.ScreenCompanyList:   true,
	nav.ScreenAuth:          true,
	nav.ScreenPasswordReset: true,
}

// authRequiredScreens は未ログイン時に認証画面へ誘導する画面。
var authRequiredScreens = map[nav.Screen]bool{
	nav.ScreenSell:     true,
	nav.ScreenProfile:  true,
	nav.ScreenCheckout: true,
}

// roleScreens はログイン済みユーザーがアカウント種別ごとに利用できる画面。
// Listing、Auth、PasswordResetは種別を問わず常に許可されるため含めない。
var roleScreens = map[model.AccountClass]map[nav.Screen]bool{
	model.AccountPerson: {
		nav.ScreenSell:         true,
		nav.ScreenAISuggestion: true,
		nav.ScreenCompanyList:  true,
		nav.ScreenProfile:      true,
		nav.ScreenCheckout:     true,
	},
	model.AccountCompany: {
		nav.ScreenSell:         true,
		nav.ScreenAISuggestion: true,
		nav.ScreenProfile:      true,
	},
}

// Authorizer はnav.Authorizerのルールベース実装。
type Authorizer struct{}

// New はAuthorizerを生成する。
func New() *Authorizer {
	return &Authorizer{}
}

// Authorize は指定画面への遷移可否を判定する。
//
// 判定順序:
//  1. Listing、Auth、PasswordResetは常に許可（Authはログイン中メニューに出さないだけで拒否はしない）
//  2. 未ログインで認証必須画面 → RedirectToAuth
//  3. 未ログインで公開画面 → Allow
//  4. ログイン済みはアカウント種別の画面集合で判定。集合外 → Denied
//  5. Checkoutは購入データがない場合、別事由のDenied
func (a *Authorizer) Authorize(target nav.Screen, session nav.Session, hasPurchase bool) nav.Decision {
	// 常時許可の画面
	if target == nav.ScreenListing || target == nav.ScreenAuth || target == nav.ScreenPasswordReset {
		return nav.Decision{Verdict: nav.VerdictAllow}
	}

	if !session.LoggedIn() {
		if authRequiredScreens[target] {
			return nav.Decision{Verdict: nav.VerdictRedirectToAuth}
		}
		if publicScreens[target] {
			return nav.Decision{Verdict: nav.VerdictAllow}
		}
		return nav.Decision{
			Verdict:  nav.VerdictDenied,
			Reason:   "この画面は利用できません。",
			Recovery: "車両一覧に戻ってください。",
		}
	}

	allowed := roleScreens[session.AccountClass]
	if !allowed[target] {
		return nav.Decision{
			Verdict:  nav.VerdictDenied,
			Reason:   "お使いのアカウント種別ではこの画面を利用できません。",
			Recovery: "別のアカウントでログインし直してください。",
		}
	}

	// Checkoutは購入対象が選択されていることが前提
	if target == nav.ScreenCheckout && !hasPurchase {
		return nav.Decision{
			Verdict:  nav.VerdictDenied,
			Reason:   "購入対象の車両が選択されていません。",
			Recovery: "車両一覧から購入したい車両を選んでください。",
		}
	}

	return nav.Decision{Verdict: nav.VerdictAllow}
}

// Offered はセッション状態に応じて提示するナビゲーション項目を返す。
// ログイン中はAuthを表示しない（拒否はしない）。PasswordResetはAuth経由で
// のみ到達するためメニューには含めない。
func (a *Authorizer) Offered(session nav.Session) []nav.Screen {
	if !session.LoggedIn() {
		return []nav.Screen{
			nav.ScreenListing,
			nav.ScreenAISuggestion,
			nav.ScreenCompanyList,
			nav.ScreenAuth,
		}
	}

	offered := []nav.Screen{nav.ScreenListing}
	for _, s := range []nav.Screen{
		nav.ScreenAISuggestion,
		nav.ScreenCompanyList,
		nav.ScreenSell,
		nav.ScreenProfile,
		nav.ScreenCheckout,
	} {
		if roleScreens[session.AccountClass][s] {
			offered = append(offered, s)
		}
	}
	return offered
}

// compile-time interface check
var _ nav.Authorizer = (*Authorizer)(nil)
