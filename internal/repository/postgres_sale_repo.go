package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/carhub/internal/model"
)

// PostgresSaleRepo はPostgreSQLを使用した売買取引リポジトリ。
type PostgresSaleRepo struct {
	db *sql.DB
}

// NewPostgresSaleRepo はPostgresSaleRepoを生成する。
func NewPostgresSaleRepo(db *sql.DB) *PostgresSaleRepo {
	return &PostgresSaleRepo{db: db}
}

// CreateWithVehicleLock は車両をFOR UPDATEでロックして販売状態を検証し、
// 車両のstatusをsoldに更新した上で取引レコードを同一トランザクションで作成する。
// 同一車両への同時購入は行ロックにより直列化され、後着がVEHICLE_SOLDを受け取る。
func (r *PostgresSaleRepo) CreateWithVehicleLock(ctx context.Context, sale *model.Sale) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status model.VehicleStatus
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM vehicles WHERE id = $1 FOR UPDATE`,
		sale.VehicleID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return model.NewVehicleNotFoundError(sale.VehicleID)
	}
	if err != nil {
		return fmt.Errorf("failed to lock vehicle: %w", err)
	}
	if status != model.VehicleAvailable {
		return model.NewVehicleSoldError(sale.VehicleID)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE vehicles SET status = $1, updated_at = now() WHERE id = $2`,
		model.VehicleSold, sale.VehicleID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark vehicle sold: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sales (id, buyer_id, vehicle_id, amount, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		sale.ID, sale.BuyerID, sale.VehicleID, sale.Amount, sale.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// FindByID は指定IDの取引を取得する。見つからない場合はnilを返す。
func (r *PostgresSaleRepo) FindByID(ctx context.Context, id string) (*model.Sale, error) {
	sale := &model.Sale{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, buyer_id, vehicle_id, amount, created_at FROM sales WHERE id = $1`,
		id,
	).Scan(&sale.ID, &sale.BuyerID, &sale.VehicleID, &sale.Amount, &sale.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find sale by ID: %w", err)
	}

	return sale, nil
}

// compile-time interface check
var _ SaleRepository = (*PostgresSaleRepo)(nil)
