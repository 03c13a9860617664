package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/carhub/internal/model"
)

// PostgresVehicleRepo はPostgreSQLを使用した車両リポジトリ。
type PostgresVehicleRepo struct {
	db *sql.DB
}

// NewPostgresVehicleRepo はPostgresVehicleRepoを生成する。
func NewPostgresVehicleRepo(db *sql.DB) *PostgresVehicleRepo {
	return &PostgresVehicleRepo{db: db}
}

// vehicleColumns はSELECT句で使用するカラム列。スキャン順と一致させること。
const vehicleColumns = `id, seller_id, seller_class, make, model, year, mileage, price,
	fuel_type, color, status, COALESCE(description, ''), COALESCE(photo_url, ''), created_at, updated_at`

// scanVehicle は1行を*model.Vehicleにスキャンする。
func scanVehicle(scanner interface{ Scan(...any) error }) (*model.Vehicle, error) {
	v := &model.Vehicle{}
	err := scanner.Scan(
		&v.ID, &v.SellerID, &v.SellerClass, &v.Make, &v.Model, &v.Year, &v.Mileage, &v.Price,
		&v.FuelType, &v.Color, &v.Status, &v.Description, &v.PhotoURL, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// FindByID は指定IDの車両を取得する。見つからない場合はnilを返す。
func (r *PostgresVehicleRepo) FindByID(ctx context.Context, id string) (*model.Vehicle, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`,
		id,
	)
	v, err := scanVehicle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find vehicle by ID: %w", err)
	}
	return v, nil
}

// Create は車両を作成する。
func (r *PostgresVehicleRepo) Create(ctx context.Context, vehicle *model.Vehicle) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO vehicles (id, seller_id, seller_class, make, model, year, mileage, price,
		                       fuel_type, color, status, description, photo_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''), NULLIF($13, ''), $14, $15)`,
		vehicle.ID, vehicle.SellerID, vehicle.SellerClass, vehicle.Make, vehicle.Model,
		vehicle.Year, vehicle.Mileage, vehicle.Price, vehicle.FuelType, vehicle.Color,
		vehicle.Status, vehicle.Description, vehicle.PhotoURL, vehicle.CreatedAt, vehicle.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert vehicle: %w", err)
	}
	return nil
}

// ListAvailable は販売中の車両一覧をフィルタ条件付きで作成日時の降順で返す。
// filterのゼロ値フィールドは条件として適用しない。
func (r *PostgresVehicleRepo) ListAvailable(ctx context.Context, filter model.VehicleFilter) ([]*model.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE status = $1`
	args := []any{model.VehicleAvailable}

	if filter.Make != "" {
		args = append(args, filter.Make)
		query += fmt.Sprintf(" AND make = $%d", len(args))
	}
	if filter.MinPrice > 0 {
		args = append(args, filter.MinPrice)
		query += fmt.Sprintf(" AND price >= $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list available vehicles: %w", err)
	}
	defer rows.Close()

	return collectVehicles(rows)
}

// ListBySellerID は指定セラーの出品一覧を作成日時の降順で返す。
func (r *PostgresVehicleRepo) ListBySellerID(ctx context.Context, sellerID string) ([]*model.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE seller_id = $1 ORDER BY created_at DESC`,
		sellerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles by seller: %w", err)
	}
	defer rows.Close()

	return collectVehicles(rows)
}

// collectVehicles は結果セットを*model.Vehicleのスライスに変換する。
func collectVehicles(rows *sql.Rows) ([]*model.Vehicle, error) {
	var vehicles []*model.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vehicles: %w", err)
	}
	return vehicles, nil
}

// compile-time interface check
var _ VehicleRepository = (*PostgresVehicleRepo)(nil)
