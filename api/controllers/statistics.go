package controllers

import (
	"net/http"

	"github.com/stockroomhq/warehouse-backend/api/responses"
	"github.com/stockroomhq/warehouse-backend/internal/statistics"
	"github.com/stockroomhq/warehouse-backend/pkg/logger"
)

// StatisticsSummary serves the dashboard aggregates.
func StatisticsSummary(svc statistics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		summary, err := svc.Summary(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
