// Package terminal は行指向の対話クライアントを提供する。
// 1プロセス1セッションで、画面遷移コントローラを唯一の書き込み主体として駆動する。
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hitoshi/carhub/internal/client/api"
	"github.com/hitoshi/carhub/internal/client/authflow"
	"github.com/hitoshi/carhub/internal/client/nav"
	"github.com/hitoshi/carhub/internal/client/onboarding"
	"github.com/hitoshi/carhub/internal/model"
)

// Backend はターミナルが必要とするバックエンド操作の窓口。
// 認証操作はauthflow.AccountClient経由で行うためここには含まれない。
type Backend interface {
	ListVehicles(ctx context.Context, makeFilter string, minPrice float64) ([]api.Vehicle, error)
	CreateVehicle(ctx context.Context, input api.VehicleInput) (api.Vehicle, error)
	ListCompanies(ctx context.Context) ([]api.Company, error)
	GetProfile(ctx context.Context, userID string) (api.Profile, error)
	SubmitPurchase(ctx context.Context, buyerID, vehicleID string, amount float64) (string, error)
	CancelCheckout(ctx context.Context) error
	Suggest(ctx context.Context, userID, preferences string) (api.Suggestion, error)
}

var _ Backend = (*api.Client)(nil)

// Terminal は対話クライアントの本体。
type Terminal struct {
	controller *nav.Controller
	flow       *authflow.Flow
	backend    Backend

	in  *bufio.Scanner
	out io.Writer

	// 直近に表示した車両一覧。buyコマンドの番号解決に使う。
	listed []api.Vehicle
	// 認証画面から登録した直後の出品者オンボーディング。
	onboard *onboarding.Flow
}

// New はTerminalを生成する。
func New(controller *nav.Controller, flow *authflow.Flow, backend Backend, in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		controller: controller,
		flow:       flow,
		backend:    backend,
		in:         bufio.NewScanner(in),
		out:        out,
	}
}

// Run は入力が尽きるか quit が入力されるまで対話ループを実行する。
func (t *Terminal) Run(ctx context.Context) error {
	fmt.Fprintln(t.out, "CarHub - 中古車マーケットプレイス")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		t.renderScreen()
		fmt.Fprint(t.out, "> ")

		if !t.in.Scan() {
			return t.in.Err()
		}
		line := strings.TrimSpace(t.in.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			fmt.Fprintln(t.out, "ご利用ありがとうございました。")
			return nil
		}

		t.dispatch(ctx, line)
	}
}

// dispatch は共通コマンドを処理し、残りを画面別ハンドラへ渡す。
func (t *Terminal) dispatch(ctx context.Context, line string) {
	fields := strings.Fields(line)
	cmd := fields[0]

	switch cmd {
	case "menu":
		t.printMenu()
		return
	case "go":
		if len(fields) < 2 {
			fmt.Fprintln(t.out, "使い方: go <画面名>")
			return
		}
		t.goTo(fields[1])
		return
	case "logout":
		t.controller.Logout()
		fmt.Fprintln(t.out, "ログアウトしました。")
		return
	}

	switch t.controller.ActiveScreen() {
	case nav.ScreenListing:
		t.handleListing(ctx, cmd, fields[1:])
	case nav.ScreenAISuggestion:
		t.handleSuggestion(ctx, cmd, line)
	case nav.ScreenCompanyList:
		t.handleCompanyList(ctx, cmd)
	case nav.ScreenAuth:
		t.handleAuth(ctx, cmd)
	case nav.ScreenSell:
		t.handleSell(ctx, cmd)
	case nav.ScreenProfile:
		t.handleProfile(ctx, cmd)
	case nav.ScreenCheckout:
		t.handleCheckout(ctx, cmd)
	case nav.ScreenPasswordReset:
		t.handleAuth(ctx, cmd)
	default:
		fmt.Fprintln(t.out, "不明なコマンドです。menuで画面一覧を表示します。")
	}
}

var screenNames = map[string]nav.Screen{
	"listing":   nav.ScreenListing,
	"suggest":   nav.ScreenAISuggestion,
	"companies": nav.ScreenCompanyList,
	"auth":      nav.ScreenAuth,
	"sell":      nav.ScreenSell,
	"profile":   nav.ScreenProfile,
	"checkout":  nav.ScreenCheckout,
	"reset":     nav.ScreenPasswordReset,
}

var screenLabels = map[nav.Screen]string{
	nav.ScreenListing:       "listing (車両一覧)",
	nav.ScreenAISuggestion:  "suggest (AI提案)",
	nav.ScreenCompanyList:   "companies (販売企業)",
	nav.ScreenAuth:          "auth (ログイン/登録)",
	nav.ScreenSell:          "sell (出品)",
	nav.ScreenProfile:       "profile (プロフィール)",
	nav.ScreenCheckout:      "checkout (購入手続き)",
	nav.ScreenPasswordReset: "reset (パスワード再設定)",
}

func (t *Terminal) goTo(name string) {
	target, ok := screenNames[strings.ToLower(name)]
	if !ok {
		fmt.Fprintf(t.out, "不明な画面です: %s\n", name)
		return
	}

	t.controller.Navigate(target)

	if denial := t.controller.Denial(); denial != nil {
		fmt.Fprintf(t.out, "アクセスできません: %s\n", denial.Reason)
		fmt.Fprintf(t.out, "対処: %s\n", denial.Recovery)
	}
}

func (t *Terminal) printMenu() {
	fmt.Fprintln(t.out, "利用できる画面:")
	for _, screen := range t.controller.Menu() {
		fmt.Fprintf(t.out, "  %s\n", screenLabels[screen])
	}
}

// renderScreen は現在の画面のヘッダと操作ヒントを表示する。
func (t *Terminal) renderScreen() {
	screen := t.controller.ActiveScreen()

	switch screen {
	case nav.ScreenListing:
		fmt.Fprintln(t.out, "--- 車両一覧 ---")
		fmt.Fprintln(t.out, "list [メーカー] [最低価格] / buy <番号> / menu / quit")
	case nav.ScreenAISuggestion:
		fmt.Fprintln(t.out, "--- AI提案 ---")
		fmt.Fprintln(t.out, "ask <希望条件> で3台の提案を受け取れます")
	case nav.ScreenCompanyList:
		fmt.Fprintln(t.out, "--- 販売企業一覧 ---")
		fmt.Fprintln(t.out, "show で一覧を表示します")
	case nav.ScreenAuth:
		mode := t.flow.Mode()
		fmt.Fprintf(t.out, "--- 認証 (%s) ---\n", mode)
		switch mode {
		case authflow.ModeLogin:
			fmt.Fprintln(t.out, "login / register / forgot で各フォームへ")
		case authflow.ModeRegister:
			fmt.Fprintln(t.out, "submit で登録 / back でログインへ戻る")
		case authflow.ModePasswordReset:
			fmt.Fprintln(t.out, "submit で再設定 / back でログインへ戻る")
		}
	case nav.ScreenSell:
		fmt.Fprintln(t.out, "--- 車両出品 ---")
		fmt.Fprintln(t.out, "new で出品フォームを開始します")
	case nav.ScreenProfile:
		fmt.Fprintln(t.out, "--- プロフィール ---")
		fmt.Fprintln(t.out, "show で表示します")
	case nav.ScreenCheckout:
		fmt.Fprintln(t.out, "--- 購入手続き ---")
		if item := t.controller.ActiveItem(); item != nil {
			fmt.Fprintf(t.out, "購入対象: %s %s (R$ %.2f)\n", item.Make, item.Model, item.Price)
		}
		fmt.Fprintln(t.out, "confirm で確定 / cancel で中止")
	case nav.ScreenPasswordReset:
		fmt.Fprintln(t.out, "--- パスワード再設定 ---")
	}
}

// --- 車両一覧 ---

func (t *Terminal) handleListing(ctx context.Context, cmd string, args []string) {
	switch cmd {
	case "list":
		makeFilter := ""
		minPrice := 0.0
		if len(args) > 0 {
			makeFilter = args[0]
		}
		if len(args) > 1 {
			if p, err := strconv.ParseFloat(args[1], 64); err == nil {
				minPrice = p
			}
		}

		epoch := t.controller.Epoch()
		vehicles, err := t.backend.ListVehicles(ctx, makeFilter, minPrice)
		if err != nil {
			t.printError(err)
			return
		}
		if !t.controller.StillCurrent(epoch, nav.ScreenListing) {
			return
		}

		t.listed = vehicles
		if len(vehicles) == 0 {
			fmt.Fprintln(t.out, "該当する車両はありません。")
			return
		}
		for i, v := range vehicles {
			fmt.Fprintf(t.out, "%2d. %s %s %d年 %dkm R$ %.2f\n",
				i+1, v.Make, v.Model, v.Year, v.Mileage, v.Price)
		}
	case "buy":
		if len(args) < 1 {
			fmt.Fprintln(t.out, "使い方: buy <番号>")
			return
		}
		index, err := strconv.Atoi(args[0])
		if err != nil || index < 1 || index > len(t.listed) {
			fmt.Fprintln(t.out, "番号が正しくありません。先にlistで一覧を表示してください。")
			return
		}
		v := t.listed[index-1]
		t.controller.RequestPurchase(nav.VehicleRef{
			VehicleID: v.ID,
			Make:      v.Make,
			Model:     v.Model,
			Price:     v.Price,
		})
		if denial := t.controller.Denial(); denial != nil {
			fmt.Fprintf(t.out, "購入できません: %s\n", denial.Reason)
		}
	default:
		fmt.Fprintln(t.out, "不明なコマンドです。list / buy <番号> が使えます。")
	}
}

// --- AI提案 ---

func (t *Terminal) handleSuggestion(ctx context.Context, cmd, line string) {
	if cmd != "ask" {
		fmt.Fprintln(t.out, "使い方: ask <希望条件>")
		return
	}
	preferences := strings.TrimSpace(strings.TrimPrefix(line, "ask"))
	if preferences == "" {
		fmt.Fprintln(t.out, "希望条件を入力してください。")
		return
	}

	// 生成には時間がかかるため、応答時に画面が変わっていれば破棄する。
	epoch := t.controller.Epoch()
	suggestion, err := t.backend.Suggest(ctx, t.controller.Session().UserID, preferences)
	if err != nil {
		t.printError(err)
		return
	}
	if !t.controller.StillCurrent(epoch, nav.ScreenAISuggestion) {
		return
	}

	fmt.Fprintln(t.out, suggestion.Suggestion)
}

// --- 販売企業一覧 ---

func (t *Terminal) handleCompanyList(ctx context.Context, cmd string) {
	if cmd != "show" {
		fmt.Fprintln(t.out, "使い方: show")
		return
	}

	companies, err := t.backend.ListCompanies(ctx)
	if err != nil {
		t.printError(err)
		return
	}
	if len(companies) == 0 {
		fmt.Fprintln(t.out, "登録企業はまだありません。")
		return
	}
	for _, c := range companies {
		fmt.Fprintf(t.out, "- %s (CNPJ: %s)", c.CompanyName, c.CNPJ)
		if c.WebsiteURL != "" {
			fmt.Fprintf(t.out, " %s", c.WebsiteURL)
		}
		fmt.Fprintln(t.out)
	}
}

// --- 認証 ---

func (t *Terminal) handleAuth(ctx context.Context, cmd string) {
	switch cmd {
	case "login":
		if t.flow.Mode() != authflow.ModeLogin {
			if err := t.flow.SwitchToLogin(); err != nil {
				t.printError(err)
				return
			}
		}
		t.flow.SetLoginForm(authflow.LoginForm{
			Email:    t.prompt("メールアドレス"),
			Password: t.prompt("パスワード"),
		})
		epoch := t.controller.Epoch()
		result, err := t.flow.SubmitLogin(ctx)
		if err != nil {
			t.printError(err)
			return
		}
		// 往復中に画面が変わっていたら結果を破棄する
		if !t.controller.StillCurrent(epoch, nav.ScreenAuth) {
			return
		}
		t.controller.OnAuthSuccess(result.UserID, result.AccountClass)
		fmt.Fprintln(t.out, "ログインしました。")
	case "register":
		if err := t.flow.SwitchToRegister(); err != nil && !errors.Is(err, authflow.ErrInvalidTransition) {
			t.printError(err)
		}
		t.runRegistration(ctx)
	case "forgot":
		if err := t.flow.SwitchToPasswordReset(); err != nil {
			t.printError(err)
			return
		}
		t.flow.SetResetForm(authflow.ResetForm{
			Email:       t.prompt("メールアドレス"),
			NewPassword: t.prompt("新しいパスワード"),
		})
		if err := t.flow.SubmitPasswordReset(ctx); err != nil {
			t.printError(err)
			return
		}
		fmt.Fprintln(t.out, "パスワードを再設定しました。改めてログインしてください。")
	case "back":
		if err := t.flow.SwitchToLogin(); err != nil {
			t.printError(err)
		}
	default:
		fmt.Fprintln(t.out, "login / register / forgot が使えます。")
	}
}

// runRegistration は登録フォームと出品者オンボーディングを進める。
func (t *Terminal) runRegistration(ctx context.Context) {
	t.onboard = onboarding.NewFlow()

	classInput := t.prompt("アカウント種別 (Person/Company)")
	class := model.AccountClass(classInput)

	form := authflow.RegisterForm{
		Name:         t.prompt("名前"),
		Email:        t.prompt("メールアドレス"),
		Password:     t.prompt("パスワード"),
		AccountClass: class,
	}
	if class == model.AccountCompany {
		form.CompanyName = t.prompt("企業名")
		form.CNPJ = t.prompt("CNPJ")
	}
	t.flow.SetRegisterForm(form)

	epoch := t.controller.Epoch()
	result, err := t.flow.SubmitRegister(ctx)
	if err != nil {
		t.printError(err)
		return
	}
	// 往復中に画面が変わっていたら結果を破棄する
	if !t.controller.StillCurrent(epoch, nav.ScreenAuth) {
		return
	}

	if err := t.onboard.OnRegistered(result.UserID, result.AccountClass); err != nil {
		t.printError(err)
		return
	}
	if notice := t.onboard.Notice(); notice != "" {
		fmt.Fprintln(t.out, notice)
		return
	}

	switch t.onboard.Step() {
	case onboarding.StepVehicleForm:
		fmt.Fprintln(t.out, "登録が完了しました。最初の出品を登録します。")
		if t.promptVehicle(ctx, result.UserID, result.AccountClass) {
			if err := t.onboard.OnVehicleCreated(); err != nil {
				t.printError(err)
				return
			}
		} else {
			return
		}
	case onboarding.StepCompanyComplete:
		fmt.Fprintln(t.out, "企業アカウントの登録が完了しました。")
		if err := t.onboard.AckCompanyComplete(); err != nil {
			t.printError(err)
			return
		}
	}

	sellerID, sellerClass, err := t.onboard.Complete()
	if err != nil {
		t.printError(err)
		return
	}
	t.onboard = nil
	t.controller.OnAuthSuccess(sellerID, sellerClass)
}

// --- 出品 ---

func (t *Terminal) handleSell(ctx context.Context, cmd string) {
	if cmd != "new" {
		fmt.Fprintln(t.out, "使い方: new")
		return
	}
	session := t.controller.Session()
	t.promptVehicle(ctx, session.UserID, session.AccountClass)
}

// promptVehicle は出品フォームを対話で埋めて送信する。成功時にtrueを返す。
func (t *Terminal) promptVehicle(ctx context.Context, sellerID string, class model.AccountClass) bool {
	input := api.VehicleInput{
		SellerID:    sellerID,
		SellerClass: string(class),
		Make:        t.prompt("メーカー"),
		Model:       t.prompt("モデル"),
		FuelType:    t.prompt("燃料種別"),
		Color:       t.prompt("色"),
		Description: t.prompt("説明"),
		PhotoURL:    t.prompt("写真URL (任意)"),
	}
	input.Year, _ = strconv.Atoi(t.prompt("年式"))
	input.Mileage, _ = strconv.Atoi(t.prompt("走行距離(km)"))
	input.Price, _ = strconv.ParseFloat(t.prompt("価格(R$)"), 64)

	vehicle, err := t.backend.CreateVehicle(ctx, input)
	if err != nil {
		t.printError(err)
		return false
	}
	fmt.Fprintf(t.out, "出品しました: %s %s (ID: %s)\n", vehicle.Make, vehicle.Model, vehicle.ID)
	return true
}

// --- プロフィール ---

func (t *Terminal) handleProfile(ctx context.Context, cmd string) {
	if cmd != "show" {
		fmt.Fprintln(t.out, "使い方: show")
		return
	}

	profile, err := t.backend.GetProfile(ctx, t.controller.Session().UserID)
	if err != nil {
		t.printError(err)
		return
	}
	fmt.Fprintf(t.out, "名前: %s\n", profile.Name)
	fmt.Fprintf(t.out, "メール: %s\n", profile.Email)
	fmt.Fprintf(t.out, "種別: %s\n", profile.AccountClass)
	if profile.CompanyName != "" {
		fmt.Fprintf(t.out, "企業名: %s (CNPJ: %s)\n", profile.CompanyName, profile.CNPJ)
	}
}

// --- 購入手続き ---

func (t *Terminal) handleCheckout(ctx context.Context, cmd string) {
	item := t.controller.ActiveItem()

	switch cmd {
	case "confirm":
		if item == nil {
			fmt.Fprintln(t.out, "購入対象がありません。")
			return
		}
		saleID, err := t.backend.SubmitPurchase(ctx, t.controller.Session().UserID, item.VehicleID, item.Price)
		if err != nil {
			t.printError(err)
			return
		}
		fmt.Fprintf(t.out, "購入が完了しました。取引ID: %s\n", saleID)
		t.controller.CompleteCheckout()
	case "cancel":
		if err := t.backend.CancelCheckout(ctx); err != nil {
			t.printError(err)
		}
		t.controller.CancelCheckout()
		fmt.Fprintln(t.out, "購入手続きを中止しました。")
	default:
		fmt.Fprintln(t.out, "confirm / cancel が使えます。")
	}
}

// prompt はラベルを表示して1行読み取る。
func (t *Terminal) prompt(label string) string {
	fmt.Fprintf(t.out, "%s: ", label)
	if !t.in.Scan() {
		return ""
	}
	return strings.TrimSpace(t.in.Text())
}

// printError はAPIエラーをユーザー向けに整形して表示する。
func (t *Terminal) printError(err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		fmt.Fprintf(t.out, "エラー: %s\n", apiErr.Message)
		if apiErr.Action != "" {
			fmt.Fprintf(t.out, "対処: %s\n", apiErr.Action)
		}
		return
	}
	fmt.Fprintf(t.out, "エラー: %v\n", err)
}
