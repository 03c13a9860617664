package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/carhub/internal/metrics"
	"github.com/hitoshi/carhub/internal/model"
)

// CheckoutServiceInterface は購入ハンドラーが必要とするサービスインターフェース。
type CheckoutServiceInterface interface {
	// SubmitPurchase は購入を確定する。
	SubmitPurchase(ctx context.Context, buyerID, vehicleID string, amount float64) (*model.Sale, error)
}

// CheckoutHandler は購入取引のHTTPハンドラー。
type CheckoutHandler struct {
	service   CheckoutServiceInterface
	collector metrics.MetricsCollector
}

// NewCheckoutHandler はCheckoutHandlerを生成する。
func NewCheckoutHandler(service CheckoutServiceInterface, collector metrics.MetricsCollector) *CheckoutHandler {
	return &CheckoutHandler{
		service:   service,
		collector: collector,
	}
}

// checkoutRequest は購入確定リクエストのボディ。
type checkoutRequest struct {
	BuyerID   string  `json:"buyer_id"`
	VehicleID string  `json:"vehicle_id"`
	Amount    float64 `json:"amount"`
}

// saleResponse は取引成立時のレスポンス。
type saleResponse struct {
	SaleID string `json:"sale_id"`
}

// SubmitPurchase は購入確定を処理する。
// POST /api/checkout
func (h *CheckoutHandler) SubmitPurchase(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	if req.BuyerID == "" || req.VehicleID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "buyer_idとvehicle_idは必須です。",
			Category: "validation",
			Action:   "必須項目を指定してください。",
		})
		return
	}

	sale, err := h.service.SubmitPurchase(r.Context(), req.BuyerID, req.VehicleID, req.Amount)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.collector.RecordSaleCompleted()

	writeJSON(w, http.StatusCreated, saleResponse{SaleID: sale.ID})
}

// CancelCheckout は購入手続きのキャンセルを記録する。
// POST /api/checkout/cancel
// キャンセルはサーバー側の状態を変更しないため、204 No Contentを返す。
func (h *CheckoutHandler) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	h.collector.RecordCheckoutCancelled()
	w.WriteHeader(http.StatusNoContent)
}
