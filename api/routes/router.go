package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/stockroomhq/warehouse-backend/api/controllers"
	"github.com/stockroomhq/warehouse-backend/api/middleware"
	"github.com/stockroomhq/warehouse-backend/internal/categories"
	"github.com/stockroomhq/warehouse-backend/internal/orders"
	"github.com/stockroomhq/warehouse-backend/internal/products"
	"github.com/stockroomhq/warehouse-backend/internal/statistics"
	"github.com/stockroomhq/warehouse-backend/internal/stock"
	"github.com/stockroomhq/warehouse-backend/pkg/enums"
	"github.com/stockroomhq/warehouse-backend/pkg/logger"
	"github.com/stockroomhq/warehouse-backend/pkg/metrics"
)

// Deps carries everything the router mounts.
type Deps struct {
	Logger     *logger.Logger
	Metrics    *metrics.Metrics
	Orders     orders.Service
	Stock      stock.Service
	Products   products.Service
	Categories categories.Service
	Statistics statistics.Service
	Pingers    map[string]controllers.Pinger
}

func NewRouter(deps Deps) http.Handler {
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.Metrics),
		middleware.Actor(logg),
		cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id", "X-Actor"},
			MaxAge:         300,
		}),
	)

	r.Get("/healthz", controllers.HealthLive())
	r.Get("/readyz", controllers.HealthReady(logg, deps.Pingers))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		mountOrderRoutes(r, "/inbounds", enums.OrderKindInbound, deps.Orders, logg)
		mountOrderRoutes(r, "/outbounds", enums.OrderKindOutbound, deps.Orders, logg)

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.InventoryList(deps.Stock, logg))
			r.Get("/{productId}", controllers.InventoryGet(deps.Stock, logg))
			r.Post("/{productId}/adjust", controllers.InventoryAdjust(deps.Stock, logg))
			r.Put("/{productId}/threshold", controllers.InventoryThreshold(deps.Stock, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.ProductCreate(deps.Products, logg))
			r.Get("/", controllers.ProductList(deps.Products, logg))
			r.Get("/{id}", controllers.ProductGet(deps.Products, logg))
			r.Put("/{id}", controllers.ProductUpdate(deps.Products, logg))
			r.Patch("/{id}/enabled", controllers.ProductSetEnabled(deps.Products, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.CategoryCreate(deps.Categories, logg))
			r.Get("/tree", controllers.CategoryTree(deps.Categories, logg))
			r.Get("/{id}", controllers.CategoryGet(deps.Categories, logg))
			r.Put("/{id}", controllers.CategoryUpdate(deps.Categories, logg))
			r.Delete("/{id}", controllers.CategoryDelete(deps.Categories, logg))
		})

		r.Get("/statistics/summary", controllers.StatisticsSummary(deps.Statistics, logg))
	})

	return r
}

func mountOrderRoutes(r chi.Router, pattern string, kind enums.OrderKind, svc orders.Service, logg *logger.Logger) {
	r.Route(pattern, func(r chi.Router) {
		r.Post("/", controllers.OrderCreate(kind, svc, logg))
		r.Get("/", controllers.OrderList(kind, svc, logg))
		r.Get("/{id}", controllers.OrderGet(kind, svc, logg))
		r.Put("/{id}", controllers.OrderUpdate(kind, svc, logg))
		r.Post("/{id}/approve", controllers.OrderApprove(kind, svc, logg))
		r.Post("/{id}/void", controllers.OrderVoid(kind, svc, logg))
	})
}
