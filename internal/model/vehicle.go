// Package model はドメインモデルを定義する。
package model

import "time"

// VehicleStatus は車両の販売状態を表す。
type VehicleStatus string

const (
	// VehicleAvailable は販売中であることを示す。
	VehicleAvailable VehicleStatus = "available"
	// VehicleSold は売却済みであることを示す。
	VehicleSold VehicleStatus = "sold"
)

// Vehicle は出品された車両を表す。
// Descriptionは保存前にサニタイズ済みのHTML。
type Vehicle struct {
	ID          string
	SellerID    string
	SellerClass AccountClass
	Make        string
	Model       string
	Year        int
	Mileage     int
	Price       float64
	FuelType    string
	Color       string
	Status      VehicleStatus
	Description string
	PhotoURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// VehicleFilter は車両一覧の絞り込み条件。
// ゼロ値のフィールドは条件として適用されない。
type VehicleFilter struct {
	Make     string
	MinPrice float64
}

// Sale は成立した売買取引を表す。
type Sale struct {
	ID        string
	BuyerID   string
	VehicleID string
	Amount    float64
	CreatedAt time.Time
}

// SuggestionLog はAI提案の監査ログを表す。
// 生成失敗時もエラーメッセージを回答として記録する。
type SuggestionLog struct {
	ID        string
	UserID    string // 未ログイン時は空
	Prompt    string
	Answer    string
	ModelName string
	CreatedAt time.Time
}
