package router

import (
	"net/http"

	"github.com/festpos/api/internal/auth"
	"github.com/festpos/api/internal/config"
	"github.com/festpos/api/internal/database"
	"github.com/festpos/api/internal/handler"
	mw "github.com/festpos/api/internal/middleware"
	"github.com/festpos/api/internal/service"
	"github.com/festpos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication and capability middleware as needed.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub, workers handler.PrinterWorkers) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/printers/{pid}", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Orders
		orderService := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
			return database.New(db)
		}, cfg.OrderTxRetries)
		orderHandler := handler.NewOrderHandler(orderService, queries)
		r.Route("/orders", orderHandler.RegisterRoutes)

		// Categories
		categoryHandler := handler.NewCategoryHandler(queries, service.NewCategoryService(queries))
		r.Route("/categories", categoryHandler.RegisterRoutes)

		// Printers
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireCapability(auth.CapManagePrinters))
			printerHandler := handler.NewPrinterHandler(queries, pool, func(db database.DBTX) handler.PrinterStore {
				return database.New(db)
			}, workers)
			r.Route("/printers", printerHandler.RegisterRoutes)
		})
	})

	zap.S().Info("router initialized")
	return r
}
