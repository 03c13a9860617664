package onboarding

import (
	"errors"
	"sync"

	"github.com/hitoshi/carhub/internal/model"
)

// Step は出品者登録フローの段階。後戻りの遷移は存在しない。
type Step int

const (
	// StepRegistering はアカウント登録フォームの段階。
	StepRegistering Step = iota
	// StepVehicleForm は個人アカウントの初回出品フォームの段階。
	StepVehicleForm
	// StepCompanyComplete は企業アカウントの登録完了表示の段階。
	StepCompanyComplete
	// StepDone はフロー完了の段階。Completeで出品者IDを取り出せる。
	StepDone
)

// String はStepの文字列表現を返す。
func (s Step) String() string {
	switch s {
	case StepRegistering:
		return "registering"
	case StepVehicleForm:
		return "vehicle_form"
	case StepCompanyComplete:
		return "company_complete"
	case StepDone:
		return "done"
	default:
		return "unknown"
	}
}

// ErrInvalidStep は現在の段階で許可されない操作が要求された場合に返される。
var ErrInvalidStep = errors.New("onboarding: operation not allowed in current step")

// ErrNotDone は完了前にCompleteが呼ばれた場合に返される。
var ErrNotDone = errors.New("onboarding: flow has not reached done")

// Flow は出品者登録フローの状態機械。
// 登録 → (個人)初回出品 → 完了、または 登録 → (企業)完了表示 → 完了 と進む。
type Flow struct {
	mu sync.Mutex

	step     Step
	sellerID string
	class    model.AccountClass
	notice   string // 回復可能なエラーの表示用メッセージ
}

// NewFlow はFlowを生成する。初期段階は登録フォーム。
func NewFlow() *Flow {
	return &Flow{step: StepRegistering}
}

// Step は現在の段階を返す。
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Notice は回復可能なエラーの表示用メッセージを返す。ない場合は空文字列。
func (f *Flow) Notice() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notice
}

// OnRegistered はアカウント登録の成功を反映する。
// 個人アカウントは初回出品フォームへ、企業アカウントは完了表示へ進む。
// 出品者IDが空の場合は登録フォームに戻し、回復可能なエラーを表示する。
func (f *Flow) OnRegistered(sellerID string, class model.AccountClass) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepRegistering {
		return ErrInvalidStep
	}

	if sellerID == "" {
		f.notice = "登録結果に出品者IDが含まれていません。もう一度お試しください。"
		return nil
	}

	f.sellerID = sellerID
	f.class = class
	f.notice = ""

	if class == model.AccountCompany {
		f.step = StepCompanyComplete
	} else {
		f.step = StepVehicleForm
	}
	return nil
}

// OnVehicleCreated は初回出品の成功を反映し、フローを完了させる。
func (f *Flow) OnVehicleCreated() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepVehicleForm {
		return ErrInvalidStep
	}
	f.step = StepDone
	return nil
}

// AckCompanyComplete は企業アカウントの完了表示の確認を反映し、フローを完了させる。
func (f *Flow) AckCompanyComplete() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepCompanyComplete {
		return ErrInvalidStep
	}
	f.step = StepDone
	return nil
}

// SellerID は登録済みの出品者IDを返す。登録前は空文字列。
func (f *Flow) SellerID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sellerID
}

// Complete は完了したフローから出品者IDとアカウント種別を取り出す。
// 呼び出し後、このフローは破棄されることを想定している。
func (f *Flow) Complete() (string, model.AccountClass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepDone {
		return "", "", ErrNotDone
	}
	return f.sellerID, f.class, nil
}
