// Package vehicle は車両の出品と一覧取得のビジネスロジックを提供する。
package vehicle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/carhub/internal/model"
	"github.com/hitoshi/carhub/internal/repository"
	"github.com/hitoshi/carhub/internal/security"
)

// CreateInput は車両出品のリクエスト内容を表す。
type CreateInput struct {
	SellerID    string
	SellerClass model.AccountClass
	Make        string
	Model       string
	Year        int
	Mileage     int
	Price       float64
	FuelType    string
	Color       string
	Description string
	PhotoURL    string
}

// Service は車両関連のビジネスロジックを提供する。
type Service struct {
	vehicleRepo repository.VehicleRepository
	sanitizer   security.ContentSanitizerService
	ssrfGuard   security.SSRFGuardService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	vehicleRepo repository.VehicleRepository,
	sanitizer security.ContentSanitizerService,
	ssrfGuard security.SSRFGuardService,
) *Service {
	return &Service{
		vehicleRepo: vehicleRepo,
		sanitizer:   sanitizer,
		ssrfGuard:   ssrfGuard,
	}
}

// Create は車両を出品する。
// 説明文は保存前にサニタイズされ、写真URLはSSRF検証を通過したもののみ保存される。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.Vehicle, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	// 写真URLは任意項目。指定された場合のみ検証する。
	if input.PhotoURL != "" {
		if err := s.ssrfGuard.ValidateURL(input.PhotoURL); err != nil {
			slog.WarnContext(ctx, "vehicle photo URL rejected",
				"seller_id", input.SellerID,
				"error", err,
			)
			return nil, model.NewInvalidURLError(err.Error())
		}
	}

	now := time.Now()
	vehicle := &model.Vehicle{
		ID:          uuid.New().String(),
		SellerID:    input.SellerID,
		SellerClass: input.SellerClass,
		Make:        input.Make,
		Model:       input.Model,
		Year:        input.Year,
		Mileage:     input.Mileage,
		Price:       input.Price,
		FuelType:    input.FuelType,
		Color:       input.Color,
		Status:      model.VehicleAvailable,
		Description: s.sanitizer.Sanitize(input.Description),
		PhotoURL:    input.PhotoURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}

	slog.InfoContext(ctx, "vehicle created",
		"vehicle_id", vehicle.ID,
		"seller_id", vehicle.SellerID,
		"make", vehicle.Make,
		"model", vehicle.Model,
	)

	return vehicle, nil
}

// GetByID は指定IDの車両を取得する。
func (s *Service) GetByID(ctx context.Context, id string) (*model.Vehicle, error) {
	vehicle, err := s.vehicleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find vehicle: %w", err)
	}
	if vehicle == nil {
		return nil, model.NewVehicleNotFoundError(id)
	}
	return vehicle, nil
}

// ListAvailable は販売中の車両一覧を返す。
func (s *Service) ListAvailable(ctx context.Context, filter model.VehicleFilter) ([]*model.Vehicle, error) {
	vehicles, err := s.vehicleRepo.ListAvailable(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	return vehicles, nil
}

// ListBySellerID は指定セラーの出品一覧を返す。
func (s *Service) ListBySellerID(ctx context.Context, sellerID string) ([]*model.Vehicle, error) {
	vehicles, err := s.vehicleRepo.ListBySellerID(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles by seller: %w", err)
	}
	return vehicles, nil
}

// validateInput は出品内容の必須項目と値域を検証する。
func validateInput(input CreateInput) error {
	switch {
	case input.SellerID == "":
		return model.NewInvalidVehicleError("セラーIDが指定されていません")
	case input.Make == "":
		return model.NewInvalidVehicleError("メーカー名が指定されていません")
	case input.Model == "":
		return model.NewInvalidVehicleError("モデル名が指定されていません")
	case input.Year < 1900 || input.Year > time.Now().Year()+1:
		return model.NewInvalidVehicleError(fmt.Sprintf("年式が不正です: %d", input.Year))
	case input.Mileage < 0:
		return model.NewInvalidVehicleError(fmt.Sprintf("走行距離が不正です: %d", input.Mileage))
	case input.Price <= 0:
		return model.NewInvalidVehicleError(fmt.Sprintf("価格が不正です: %g", input.Price))
	}
	return nil
}
