package nav

import (
	"log/slog"
	"sync"

	"github.com/hitoshi/carhub/internal/model"
)

// DenialView は拒否画面に表示する内容。
type DenialView struct {
	Target   Screen // 遷移しようとした画面
	Reason   string
	Recovery string
}

// Controller は画面遷移・セッション・購入意図の単一の書き込み主体。
// ターミナルループとフロー完了コールバックがプロセスを共有するため、
// すべての操作をミューテックスで直列化する。
type Controller struct {
	mu sync.Mutex

	authorizer Authorizer

	session Session
	pending *PurchaseIntent
	active  Screen
	item    *VehicleRef // Checkout画面で表示中の購入対象
	denial  *DenialView
	epoch   uint64
}

// NewController はControllerを生成する。初期画面は車両一覧。
func NewController(authorizer Authorizer) *Controller {
	return &Controller{
		authorizer: authorizer,
		active:     ScreenListing,
	}
}

// Navigate は指定画面への遷移を試みる。
// 認可結果に応じて、対象画面、認証画面、または拒否画面を表示する。
func (c *Controller) Navigate(target Screen) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.navigateLocked(target)
}

// OnAuthSuccess は認証成功を反映する。セッションは原子的に設定され、
// 退避された購入意図があれば購入手続きへ、なければプロフィールへ遷移する。
// 購入意図は購入手続きの完了またはキャンセルまで保持される。
func (c *Controller) OnAuthSuccess(userID string, class model.AccountClass) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session = Session{UserID: userID, AccountClass: class}

	if c.pending != nil {
		v := c.pending.Vehicle
		c.item = &v
		c.navigateLocked(ScreenCheckout)
		return
	}

	c.navigateLocked(ScreenProfile)
}

// RequestPurchase は車両の購入要求を処理する。
// 未ログイン時は購入意図を退避して認証画面へ、ログイン済みなら
// 購入対象を設定して購入手続きへ遷移する（認可は通常どおり適用される）。
func (c *Controller) RequestPurchase(v VehicleRef) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.session.LoggedIn() {
		c.pending = &PurchaseIntent{Vehicle: v}
		c.showLocked(ScreenAuth)
		return
	}

	c.item = &v
	c.navigateLocked(ScreenCheckout)
}

// CompleteCheckout は購入手続きの完了を反映する。
// 購入意図と購入対象をクリアして車両一覧へ戻る。
func (c *Controller) CompleteCheckout() {
	c.finishCheckout()
}

// CancelCheckout は購入手続きのキャンセルを反映する。
// 画面遷移の挙動は完了時と同一で、購入意図と購入対象をクリアして車両一覧へ戻る。
func (c *Controller) CancelCheckout() {
	c.finishCheckout()
}

func (c *Controller) finishCheckout() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = nil
	c.item = nil
	c.showLocked(ScreenListing)
}

// Logout はセッションと購入意図を無条件にクリアして車両一覧へ戻る。
// どの画面からでも呼び出せる。
func (c *Controller) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session = Session{}
	c.pending = nil
	c.item = nil
	c.showLocked(ScreenListing)
}

// Epoch は現在の表示世代を返す。表示が変わるたびに単調増加する。
// 時間のかかる処理を開始する前に取得し、応答後にStillCurrentで検証する。
func (c *Controller) Epoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// StillCurrent は取得時の世代と画面が現在も有効かを返す。
// falseの場合、遅延して到着した応答は破棄すべきである。
func (c *Controller) StillCurrent(epoch uint64, screen Screen) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch == epoch && c.active == screen
}

// Session は現在のセッションのコピーを返す。
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// ActiveScreen は現在アクティブな画面を返す。
func (c *Controller) ActiveScreen() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Denial は直近の遷移が拒否された場合の拒否画面の内容を返す。
// 拒否がない（直近の遷移が成功した）場合はnil。
func (c *Controller) Denial() *DenialView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.denial
}

// PendingPurchase は退避中の購入意図を返す。ない場合はnil。
func (c *Controller) PendingPurchase() *PurchaseIntent {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return nil
	}
	intent := *c.pending
	return &intent
}

// ActiveItem は購入手続き画面で表示中の購入対象を返す。ない場合はnil。
func (c *Controller) ActiveItem() *VehicleRef {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.item == nil {
		return nil
	}
	item := *c.item
	return &item
}

// Menu は現在のセッションで提示するナビゲーション項目を返す。
func (c *Controller) Menu() []Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authorizer.Offered(c.session)
}

// showLocked は画面を直接切り替える。呼び出し側がロックを保持していること。
func (c *Controller) showLocked(target Screen) {
	c.active = target
	c.denial = nil
	c.epoch++
}

// navigateLocked は認可を通して画面を切り替える。呼び出し側がロックを保持していること。
func (c *Controller) navigateLocked(target Screen) {
	decision := c.authorizer.Authorize(target, c.session, c.hasPurchaseLocked())

	switch decision.Verdict {
	case VerdictAllow:
		c.showLocked(target)
	case VerdictRedirectToAuth:
		slog.Debug("navigation redirected to auth", "target", target.String())
		c.showLocked(ScreenAuth)
	case VerdictDenied:
		slog.Debug("navigation denied", "target", target.String(), "reason", decision.Reason)
		c.denial = &DenialView{
			Target:   target,
			Reason:   decision.Reason,
			Recovery: decision.Recovery,
		}
		c.epoch++
	}
}

// hasPurchaseLocked は購入データの有無を返す。呼び出し側がロックを保持していること。
func (c *Controller) hasPurchaseLocked() bool {
	return c.pending != nil || c.item != nil
}
