package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stockroomhq/warehouse-backend/api/middleware"
	"github.com/stockroomhq/warehouse-backend/api/responses"
	"github.com/stockroomhq/warehouse-backend/api/validators"
	"github.com/stockroomhq/warehouse-backend/internal/orders"
	"github.com/stockroomhq/warehouse-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/warehouse-backend/pkg/errors"
	"github.com/stockroomhq/warehouse-backend/pkg/logger"
)

type createOrderPayload struct {
	ProductID           string `json:"productId" validate:"required,uuid4"`
	Quantity            int    `json:"quantity" validate:"required,min=1,max=999999"`
	CounterpartyName    string `json:"counterpartyName" validate:"required,min=1,max=100"`
	CounterpartyContact string `json:"counterpartyContact" validate:"omitempty,max=100"`
	OrderDate           string `json:"orderDate" validate:"omitempty,datetime=2006-01-02"`
	Remark              string `json:"remark" validate:"omitempty,max=500"`
}

type updateOrderPayload struct {
	ProductID           string `json:"productId" validate:"required,uuid4"`
	Quantity            int    `json:"quantity" validate:"required,min=1,max=999999"`
	CounterpartyName    string `json:"counterpartyName" validate:"required,min=1,max=100"`
	CounterpartyContact string `json:"counterpartyContact" validate:"omitempty,max=100"`
	OrderDate           string `json:"orderDate" validate:"omitempty,datetime=2006-01-02"`
	Remark              string `json:"remark" validate:"omitempty,max=500"`
}

// OrderCreate registers a pending order of the given kind.
func OrderCreate(kind enums.OrderKind, svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload createOrderPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		productID, err := validators.PathUUID(payload.ProductID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "productId must be a UUID"))
			return
		}

		orderDate, err := parseOrderDate(payload.OrderDate)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.Create(ctx, orders.CreateInput{
			Kind:                kind,
			ProductID:           productID,
			Quantity:            payload.Quantity,
			CounterpartyName:    payload.CounterpartyName,
			CounterpartyContact: payload.CounterpartyContact,
			OrderDate:           orderDate,
			Remark:              payload.Remark,
			CreatedBy:           middleware.ActorFrom(ctx),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderList returns one page of orders of the given kind.
func OrderList(kind enums.OrderKind, svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		productID, err := validators.ParseQueryUUID(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		dateFrom, err := validators.ParseQueryDate(r, "dateFrom")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		dateTo, err := validators.ParseQueryDate(r, "dateTo")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		filter := orders.ListFilter{
			Kind:      kind,
			ProductID: productID,
			DateFrom:  dateFrom,
			DateTo:    dateTo,
		}
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filter.Status = status
		}

		page, err := svc.List(ctx, filter, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// OrderGet loads a single order of the given kind.
func OrderGet(kind enums.OrderKind, svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if order.Kind != kind {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderUpdate edits a pending order of the given kind.
func OrderUpdate(kind enums.OrderKind, svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateOrderPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		productID, err := validators.PathUUID(payload.ProductID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "productId must be a UUID"))
			return
		}

		orderDate, err := parseOrderDate(payload.OrderDate)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := ensureKind(ctx, svc, id, kind); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.Update(ctx, id, orders.UpdateInput{
			ProductID:           productID,
			Quantity:            payload.Quantity,
			CounterpartyName:    payload.CounterpartyName,
			CounterpartyContact: payload.CounterpartyContact,
			OrderDate:           orderDate,
			Remark:              payload.Remark,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderApprove approves a pending order, applying its stock movement.
func OrderApprove(kind enums.OrderKind, svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := ensureKind(ctx, svc, id, kind); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.Approve(ctx, id, middleware.ActorFrom(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderVoid cancels a pending order without touching stock.
func OrderVoid(kind enums.OrderKind, svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := validators.PathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := ensureKind(ctx, svc, id, kind); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.Void(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ensureKind hides orders of the other kind behind a 404 so /inbounds and
// /outbounds stay disjoint namespaces.
func ensureKind(ctx context.Context, svc orders.Service, id uuid.UUID, kind enums.OrderKind) error {
	order, err := svc.Get(ctx, id)
	if err != nil {
		return err
	}
	if order.Kind != kind {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}

func parseOrderDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	value, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "orderDate must be formatted YYYY-MM-DD")
	}
	return value, nil
}
