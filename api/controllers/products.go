package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroomhq/warehouse-backend/api/responses"
	"github.com/stockroomhq/warehouse-backend/api/validators"
	"github.com/stockroomhq/warehouse-backend/internal/products"
	pkgerrors "github.com/stockroomhq/warehouse-backend/pkg/errors"
	"github.com/stockroomhq/warehouse-backend/pkg/logger"
)

type createProductPayload struct {
	SKU              string          `json:"sku" validate:"required,min=1,max=64"`
	Name             string          `json:"name" validate:"required,min=1,max=200"`
	CategoryID       *string         `json:"categoryId" validate:"omitempty,uuid4"`
	Price            decimal.Decimal `json:"price"`
	Unit             string          `json:"unit" validate:"omitempty,max=20"`
	Remark           string          `json:"remark" validate:"omitempty,max=500"`
	InitialQuantity  int             `json:"initialQuantity" validate:"min=0,max=999999"`
	WarningThreshold int             `json:"warningThreshold" validate:"min=0,max=999999"`
}

type updateProductPayload struct {
	Name       string          `json:"name" validate:"required,min=1,max=200"`
	CategoryID *string         `json:"categoryId" validate:"omitempty,uuid4"`
	Price      decimal.Decimal `json:"price"`
	Unit       string          `json:"unit" validate:"omitempty,max=20"`
	Remark     string          `json:"remark" validate:"omitempty,max=500"`
}

type setEnabledPayload struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// ProductCreate registers a catalog product with its opening stock.
func ProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload createProductPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		categoryID, err := parseOptionalUUID(payload.CategoryID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		product, err := svc.Create(ctx, products.CreateInput{
			SKU:              payload.SKU,
			Name:             payload.Name,
			CategoryID:       categoryID,
			Price:            payload.Price,
			Unit:             payload.Unit,
			Remark:           payload.Remark,
			InitialQuantity:  payload.InitialQuantity,
			WarningThreshold: payload.WarningThreshold,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ProductList returns one page of catalog products.
func ProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		categoryID, err := validators.ParseQueryUUID(r, "categoryId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		filter := products.ListFilter{
			CategoryID: categoryID,
			Keyword:    r.URL.Query().Get("keyword"),
		}
		switch r.URL.Query().Get("enabled") {
		case "true":
			enabled := true
			filter.Enabled = &enabled
		case "false":
			enabled := false
			filter.Enabled = &enabled
		}

		page, err := svc.List(ctx, filter, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// ProductGet loads a single catalog product.
func ProductGet(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		product, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ProductUpdate edits the catalog fields of a product.
func ProductUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateProductPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		categoryID, err := parseOptionalUUID(payload.CategoryID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		product, err := svc.Update(ctx, id, products.UpdateInput{
			Name:       payload.Name,
			CategoryID: categoryID,
			Price:      payload.Price,
			Unit:       payload.Unit,
			Remark:     payload.Remark,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ProductSetEnabled enables or disables a product. Disabled products keep
// their history but cannot appear on new orders.
func ProductSetEnabled(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload setEnabledPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		product, err := svc.SetEnabled(ctx, id, *payload.Enabled)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func parseOptionalUUID(raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	value, err := uuid.Parse(*raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "categoryId must be a UUID")
	}
	return &value, nil
}
