package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dapur-pos/api/internal/config"
	"github.com/dapur-pos/api/internal/database"
	"github.com/dapur-pos/api/internal/handler"
	"github.com/dapur-pos/api/internal/jobs"
	"github.com/dapur-pos/api/internal/ledger"
	mw "github.com/dapur-pos/api/internal/middleware"
	"github.com/dapur-pos/api/internal/sequence"
	"github.com/dapur-pos/api/internal/service"
	"github.com/dapur-pos/api/internal/tables"
	"github.com/dapur-pos/api/internal/ws"
)

// Deps bundles the long-lived components the router wires together.
type Deps struct {
	Config  *config.Config
	Pool    *pgxpool.Pool
	Queries *database.Queries
	Hub     *ws.Hub
}

// New creates a Chi router with all application routes wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	authHandler := handler.NewAuthHandler(d.Queries, d.Config.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket fulfillment feed (authenticates via query param)
	r.Get("/ws/fulfillment", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(d.Hub, d.Config.JWTSecret, w, r)
	})

	// Domain services
	stockLedger := ledger.New(d.Queries)
	numbers := sequence.New(d.Queries)
	tracker := tables.New(d.Queries)

	ticketService := service.NewTicketService(d.Queries, numbers, tracker, d.Hub)
	orderService := service.NewOrderService(
		d.Pool,
		d.Queries,
		func(db database.DBTX) service.OrderStore { return database.New(db) },
		stockLedger,
		ticketService,
		tracker,
		d.Hub,
		d.Config.TaxRatePercent,
	)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(d.Config.JWTSecret))

		handler.NewTicketHandler(ticketService).RegisterRoutes(r)
		handler.NewOrderHandler(orderService).RegisterRoutes(r)
		handler.NewRoomHandler(d.Queries).RegisterRoutes(r)
		handler.NewProductHandler(d.Queries).RegisterRoutes(r)
		handler.NewCategoryHandler(d.Queries).RegisterRoutes(r)
	})

	return r
}

// NewStockResetJob builds the daily stock reset sweep against the shared
// query layer.
func NewStockResetJob(queries *database.Queries) *jobs.StockResetJob {
	return jobs.NewStockResetJob(queries)
}
