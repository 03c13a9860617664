// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/carhub/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。companyがnilでない場合は
	// 企業プロフィールを同一トランザクションで作成する。
	Create(ctx context.Context, user *model.User, company *model.Company) error

	// UpdatePasswordHash は指定ユーザーのパスワードハッシュを更新する。
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error

	// FindCompanyByUserID はユーザーの企業プロフィールを取得する。
	// 見つからない場合はnilを返す。
	FindCompanyByUserID(ctx context.Context, userID string) (*model.Company, error)

	// ListCompanies は企業アカウントの公開情報一覧を返す。
	ListCompanies(ctx context.Context) ([]*model.CompanySummary, error)
}

// VehicleRepository は車両データの永続化インターフェース。
type VehicleRepository interface {
	// FindByID は指定IDの車両を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Vehicle, error)

	// Create は車両を作成する。
	Create(ctx context.Context, vehicle *model.Vehicle) error

	// ListAvailable は販売中の車両一覧をフィルタ条件付きで返す。
	ListAvailable(ctx context.Context, filter model.VehicleFilter) ([]*model.Vehicle, error)

	// ListBySellerID は指定セラーの出品一覧を返す。
	ListBySellerID(ctx context.Context, sellerID string) ([]*model.Vehicle, error)
}

// SaleRepository は売買取引の永続化インターフェース。
type SaleRepository interface {
	// CreateWithVehicleLock は車両をFOR UPDATEでロックして販売状態を検証し、
	// 車両のstatusをsoldに更新した上で取引レコードを同一トランザクションで作成する。
	// 車両が存在しない場合はmodel.ErrCodeVehicleNotFound、
	// 既に売却済みの場合はmodel.ErrCodeVehicleSoldのAPIErrorを返す。
	CreateWithVehicleLock(ctx context.Context, sale *model.Sale) error

	// FindByID は指定IDの取引を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Sale, error)
}

// SuggestionLogRepository はAI提案監査ログの永続化インターフェース。
type SuggestionLogRepository interface {
	// Create は監査ログを作成する。
	Create(ctx context.Context, log *model.SuggestionLog) error
}
