package authflow

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/hitoshi/carhub/internal/model"
)

// Mode は認証画面内のフォーム種別。
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
	ModePasswordReset
)

// String はModeの文字列表現を返す。
func (m Mode) String() string {
	switch m {
	case ModeLogin:
		return "login"
	case ModeRegister:
		return "register"
	case ModePasswordReset:
		return "password_reset"
	default:
		return "unknown"
	}
}

// Result は認証成功時の結果。
type Result struct {
	UserID       string
	AccountClass model.AccountClass
}

// LoginForm はログインフォームの入力値。
type LoginForm struct {
	Email    string
	Password string
}

// RegisterForm は登録フォームの入力値。
type RegisterForm struct {
	Name         string
	Email        string
	Password     string
	AccountClass model.AccountClass
	CNPJ         string
	CompanyName  string
	WebsiteURL   string
}

// ResetForm はパスワード再設定フォームの入力値。
type ResetForm struct {
	Email       string
	NewPassword string
}

// AccountClient は認証操作のサーバー側の窓口。
type AccountClient interface {
	Login(ctx context.Context, email, password string) (Result, error)
	Register(ctx context.Context, form RegisterForm) (Result, error)
	ResetPassword(ctx context.Context, email, newPassword string) error
}

// ErrSubmissionInFlight は送信中に再送信が要求された場合に返される。
var ErrSubmissionInFlight = errors.New("authflow: a submission is already in flight")

// ErrInvalidTransition は許可されないフォーム切り替えが要求された場合に返される。
var ErrInvalidTransition = errors.New("authflow: invalid mode transition")

// Flow は認証画面のフォーム状態機械。
// ログインを中心に、登録とパスワード再設定の間を行き来する。
// フォームの入力値は切り替えやエラーで失われない。
type Flow struct {
	mu sync.Mutex

	client AccountClient

	mode       Mode
	login      LoginForm
	register   RegisterForm
	reset      ResetForm
	submitting bool
	lastErr    error
}

// NewFlow はFlowを生成する。初期フォームはログイン。
func NewFlow(client AccountClient) *Flow {
	return &Flow{client: client}
}

// Mode は現在のフォーム種別を返す。
func (f *Flow) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// LastError は直近の送信エラーを返す。成功または未送信の場合はnil。
func (f *Flow) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// SwitchToRegister はログインフォームから登録フォームへ切り替える。
// 入力済みのメールアドレスは引き継がれる。
func (f *Flow) SwitchToRegister() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.mode != ModeLogin {
		return ErrInvalidTransition
	}
	if f.register.Email == "" {
		f.register.Email = f.login.Email
	}
	f.mode = ModeRegister
	f.lastErr = nil
	return nil
}

// SwitchToPasswordReset はログインフォームからパスワード再設定フォームへ切り替える。
// 入力済みのメールアドレスは引き継がれる。
func (f *Flow) SwitchToPasswordReset() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.mode != ModeLogin {
		return ErrInvalidTransition
	}
	if f.reset.Email == "" {
		f.reset.Email = f.login.Email
	}
	f.mode = ModePasswordReset
	f.lastErr = nil
	return nil
}

// SwitchToLogin は登録またはパスワード再設定からログインフォームへ戻る。
func (f *Flow) SwitchToLogin() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.mode == ModeLogin {
		return ErrInvalidTransition
	}
	f.mode = ModeLogin
	f.lastErr = nil
	return nil
}

// SetLoginForm はログインフォームの入力値を更新する。
func (f *Flow) SetLoginForm(form LoginForm) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.login = form
}

// SetRegisterForm は登録フォームの入力値を更新する。
func (f *Flow) SetRegisterForm(form RegisterForm) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.register = form
}

// SetResetForm はパスワード再設定フォームの入力値を更新する。
func (f *Flow) SetResetForm(form ResetForm) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset = form
}

// LoginValues はログインフォームの現在の入力値を返す。
func (f *Flow) LoginValues() LoginForm {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.login
}

// RegisterValues は登録フォームの現在の入力値を返す。
func (f *Flow) RegisterValues() RegisterForm {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.register
}

// ResetValues はパスワード再設定フォームの現在の入力値を返す。
func (f *Flow) ResetValues() ResetForm {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reset
}

// SubmitLogin はログインフォームを送信する。
// 送信中の再送信は拒否される。エラー時も入力値は保持される。
func (f *Flow) SubmitLogin(ctx context.Context) (Result, error) {
	form, err := f.beginSubmit(ModeLogin)
	if err != nil {
		return Result{}, err
	}
	login := form.(LoginForm)

	result, err := f.client.Login(ctx, strings.TrimSpace(login.Email), login.Password)
	f.endSubmit(err)
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

// SubmitRegister は登録フォームを送信する。
// 送信中の再送信は拒否される。エラー時も入力値は保持される。
func (f *Flow) SubmitRegister(ctx context.Context) (Result, error) {
	form, err := f.beginSubmit(ModeRegister)
	if err != nil {
		return Result{}, err
	}
	register := form.(RegisterForm)
	register.Email = strings.TrimSpace(register.Email)

	result, err := f.client.Register(ctx, register)
	f.endSubmit(err)
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

// SubmitPasswordReset はパスワード再設定フォームを送信する。
// 成功するとログインフォームへ戻る。
func (f *Flow) SubmitPasswordReset(ctx context.Context) error {
	form, err := f.beginSubmit(ModePasswordReset)
	if err != nil {
		return err
	}
	reset := form.(ResetForm)

	err = f.client.ResetPassword(ctx, strings.TrimSpace(reset.Email), reset.NewPassword)
	f.endSubmit(err)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.mode = ModeLogin
	f.login.Email = reset.Email
	f.mu.Unlock()
	return nil
}

// beginSubmit は送信を開始し、該当モードのフォームのコピーを返す。
// 送信中またはモード不一致の場合はエラーを返す。
func (f *Flow) beginSubmit(mode Mode) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.submitting {
		return nil, ErrSubmissionInFlight
	}
	if f.mode != mode {
		return nil, ErrInvalidTransition
	}
	f.submitting = true

	switch mode {
	case ModeRegister:
		return f.register, nil
	case ModePasswordReset:
		return f.reset, nil
	default:
		return f.login, nil
	}
}

// endSubmit は送信を終了し、結果のエラーを記録する。
func (f *Flow) endSubmit(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	f.lastErr = err
}
