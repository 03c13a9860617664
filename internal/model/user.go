// Package model はドメインモデルを定義する。
package model

import "time"

// AccountClass はアカウント種別を表す。
// ルート認可とセラー登録フローの分岐に使用される。
type AccountClass string

const (
	// AccountPerson は個人アカウントを示す。
	AccountPerson AccountClass = "Person"
	// AccountCompany は企業アカウントを示す。
	AccountCompany AccountClass = "Company"
)

// Valid はアカウント種別が定義済みの値かを返す。
func (c AccountClass) Valid() bool {
	return c == AccountPerson || c == AccountCompany
}

// User はマーケットプレイス利用ユーザーを表す。
// AccountClassがAccountCompanyの場合、Companyレコードが1対1で紐づく。
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	AccountClass AccountClass
	PhoneNumber  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Company は企業アカウントの追加プロフィールを表す。
type Company struct {
	ID          string
	UserID      string
	CompanyName string
	CNPJ        string
	WebsiteURL  string
	CreatedAt   time.Time
}

// Profile はプロフィールAPIで返すユーザー情報。
// 企業アカウントの場合のみ企業フィールドが埋まる。
type Profile struct {
	UserID       string
	Name         string
	Email        string
	AccountClass AccountClass
	PhoneNumber  string
	CompanyName  string
	CNPJ         string
	WebsiteURL   string
}

// CompanySummary は企業一覧APIで返す公開情報。
type CompanySummary struct {
	UserID      string
	Name        string
	Email       string
	PhoneNumber string
	CompanyName string
	CNPJ        string
	WebsiteURL  string
	LogoURL     string
}
