// Package checkout は車両購入取引のビジネスロジックを提供する。
package checkout

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/carhub/internal/model"
	"github.com/hitoshi/carhub/internal/repository"
)

// Service は購入取引のビジネスロジックを提供する。
type Service struct {
	saleRepo repository.SaleRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(saleRepo repository.SaleRepository) *Service {
	return &Service{saleRepo: saleRepo}
}

// SubmitPurchase は購入を確定する。
// 車両の二重販売は行ロックにより防止され、売却済み車両への購入は
// model.ErrCodeVehicleSoldのエラーとなる。
func (s *Service) SubmitPurchase(ctx context.Context, buyerID, vehicleID string, amount float64) (*model.Sale, error) {
	sale := &model.Sale{
		ID:        uuid.New().String(),
		BuyerID:   buyerID,
		VehicleID: vehicleID,
		Amount:    amount,
		CreatedAt: time.Now(),
	}

	if err := s.saleRepo.CreateWithVehicleLock(ctx, sale); err != nil {
		slog.WarnContext(ctx, "purchase rejected",
			"buyer_id", buyerID,
			"vehicle_id", vehicleID,
			"error", err,
		)
		return nil, err
	}

	slog.InfoContext(ctx, "purchase completed",
		"sale_id", sale.ID,
		"buyer_id", buyerID,
		"vehicle_id", vehicleID,
	)

	return sale, nil
}
