package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/carhub/internal/metrics"
	"github.com/hitoshi/carhub/internal/model"
	"github.com/hitoshi/carhub/internal/vehicle"
)

// VehicleServiceInterface は車両ハンドラーが必要とするサービスインターフェース。
type VehicleServiceInterface interface {
	// Create は車両を出品する。
	Create(ctx context.Context, input vehicle.CreateInput) (*model.Vehicle, error)
	// GetByID は指定IDの車両を取得する。
	GetByID(ctx context.Context, id string) (*model.Vehicle, error)
	// ListAvailable は販売中の車両一覧を返す。
	ListAvailable(ctx context.Context, filter model.VehicleFilter) ([]*model.Vehicle, error)
	// ListBySellerID は指定セラーの出品一覧を返す。
	ListBySellerID(ctx context.Context, sellerID string) ([]*model.Vehicle, error)
}

// VehicleHandler は車両管理のHTTPハンドラー。
type VehicleHandler struct {
	service   VehicleServiceInterface
	collector metrics.MetricsCollector
}

// NewVehicleHandler はVehicleHandlerを生成する。
func NewVehicleHandler(service VehicleServiceInterface, collector metrics.MetricsCollector) *VehicleHandler {
	return &VehicleHandler{
		service:   service,
		collector: collector,
	}
}

// createVehicleRequest は車両出品リクエストのボディ。
type createVehicleRequest struct {
	SellerID    string  `json:"seller_id"`
	SellerClass string  `json:"seller_class"`
	Make        string  `json:"make"`
	Model       string  `json:"model"`
	Year        int     `json:"year"`
	Mileage     int     `json:"mileage"`
	Price       float64 `json:"price"`
	FuelType    string  `json:"fuel_type"`
	Color       string  `json:"color"`
	Description string  `json:"description"`
	PhotoURL    string  `json:"photo_url"`
}

// vehicleResponse は車両情報のAPIレスポンス。
type vehicleResponse struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"seller_id"`
	Make        string    `json:"make"`
	Model       string    `json:"model"`
	Year        int       `json:"year"`
	Mileage     int       `json:"mileage"`
	Price       float64   `json:"price"`
	FuelType    string    `json:"fuel_type"`
	Color       string    `json:"color"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// toVehicleResponse はモデルをレスポンス形式に変換する。
func toVehicleResponse(v *model.Vehicle) vehicleResponse {
	return vehicleResponse{
		ID:          v.ID,
		SellerID:    v.SellerID,
		Make:        v.Make,
		Model:       v.Model,
		Year:        v.Year,
		Mileage:     v.Mileage,
		Price:       v.Price,
		FuelType:    v.FuelType,
		Color:       v.Color,
		Status:      string(v.Status),
		Description: v.Description,
		PhotoURL:    v.PhotoURL,
		CreatedAt:   v.CreatedAt,
	}
}

// CreateVehicle は車両出品を処理する。
// POST /api/vehicles
func (h *VehicleHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req createVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	created, err := h.service.Create(r.Context(), vehicle.CreateInput{
		SellerID:    req.SellerID,
		SellerClass: model.AccountClass(req.SellerClass),
		Make:        req.Make,
		Model:       req.Model,
		Year:        req.Year,
		Mileage:     req.Mileage,
		Price:       req.Price,
		FuelType:    req.FuelType,
		Color:       req.Color,
		Description: req.Description,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.collector.RecordVehicleCreated()

	writeJSON(w, http.StatusCreated, toVehicleResponse(created))
}

// GetVehicle は車両詳細を取得する。
// GET /api/vehicles/:id
func (h *VehicleHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID := chi.URLParam(r, "id")

	v, err := h.service.GetByID(r.Context(), vehicleID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toVehicleResponse(v))
}

// ListVehicles は販売中の車両一覧を返す。
// GET /api/vehicles?make=&min_price=&seller_id=
func (h *VehicleHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	// セラー指定時は出品一覧（販売状態を問わない）
	if sellerID := r.URL.Query().Get("seller_id"); sellerID != "" {
		vehicles, err := h.service.ListBySellerID(r.Context(), sellerID)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeVehicleList(w, vehicles)
		return
	}

	filter := model.VehicleFilter{
		Make: r.URL.Query().Get("make"),
	}

	if raw := r.URL.Query().Get("min_price"); raw != "" {
		minPrice, err := strconv.ParseFloat(raw, 64)
		if err != nil || minPrice < 0 {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidVehicleError("min_priceが不正です"))
			return
		}
		filter.MinPrice = minPrice
	}

	vehicles, err := h.service.ListAvailable(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeVehicleList(w, vehicles)
}

// writeVehicleList は車両一覧レスポンスを書き込む。空一覧は空配列として返す。
func writeVehicleList(w http.ResponseWriter, vehicles []*model.Vehicle) {
	responses := make([]vehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		responses = append(responses, toVehicleResponse(v))
	}
	writeJSON(w, http.StatusOK, responses)
}
