package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stockroomhq/warehouse-backend/api/responses"
	"github.com/stockroomhq/warehouse-backend/api/validators"
	"github.com/stockroomhq/warehouse-backend/internal/stock"
	"github.com/stockroomhq/warehouse-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/warehouse-backend/pkg/errors"
	"github.com/stockroomhq/warehouse-backend/pkg/logger"
)

type adjustStockPayload struct {
	Type     string `json:"type" validate:"required,oneof=add reduce set"`
	Quantity int    `json:"quantity" validate:"min=0,max=999999"`
	Reason   string `json:"reason" validate:"omitempty,max=500"`
}

type thresholdPayload struct {
	WarningThreshold int `json:"warningThreshold" validate:"min=0,max=999999"`
}

// InventoryList returns one page of stock records. ?onlyLow=true narrows to
// records at or below their warning threshold.
func InventoryList(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		onlyLow := r.URL.Query().Get("onlyLow") == "true"

		page, err := svc.List(ctx, onlyLow, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// InventoryGet returns the stock record for one product.
func InventoryGet(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		productID, err := validators.PathUUID(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		record, err := svc.Get(ctx, productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// InventoryAdjust applies a manual stock correction outside the order
// workflow.
func InventoryAdjust(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		productID, err := validators.PathUUID(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload adjustStockPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		adjType, err := enums.ParseAdjustmentType(payload.Type)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid adjustment type"))
			return
		}

		if logg != nil && payload.Reason != "" {
			ctx = logg.WithField(ctx, "adjust_reason", payload.Reason)
		}

		record, err := svc.Adjust(ctx, stock.AdjustInput{
			ProductID: productID,
			Type:      adjType,
			Quantity:  payload.Quantity,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// InventoryThreshold updates the low-stock warning threshold for a product.
func InventoryThreshold(svc stock.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		productID, err := validators.PathUUID(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload thresholdPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		record, err := svc.SetThreshold(ctx, productID, payload.WarningThreshold)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}
