package nav

// Verdict はルート認可の判定結果の種別。
type Verdict int

const (
	// VerdictAllow は遷移を許可する。
	VerdictAllow Verdict = iota
	// VerdictRedirectToAuth は未ログインのため認証画面へ誘導する。
	VerdictRedirectToAuth
	// VerdictDenied はアカウント種別または状態により拒否する。
	VerdictDenied
)

// Decision はルート認可の判定結果。
// Deniedの場合はユーザー向けの理由と復帰手段を含む。
type Decision struct {
	Verdict  Verdict
	Reason   string // Denied時のユーザー向け理由
	Recovery string // Denied時の復帰手段の説明
}

// Authorizer は画面遷移の認可判定を行うインターフェース。
type Authorizer interface {
	// Authorize は指定画面への遷移可否を判定する。
	// hasPurchaseは購入データ（PendingIntentまたはアクティブな購入対象）の有無。
	Authorize(target Screen, session Session, hasPurchase bool) Decision

	// Offered はセッション状態に応じて提示するナビゲーション項目を返す。
	Offered(session Session) []Screen
}
