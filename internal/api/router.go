package api

import (
	"encoding/json"
	"net/http"
	"time"

	"storefront/internal/api/handlers"
	"storefront/internal/api/middleware"
	"storefront/pkg/logger"

	"github.com/gorilla/mux"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// ConnectionStats reports live dashboard sessions for the health check.
type ConnectionStats interface {
	StoreCount() int
}

type RouterConfig struct {
	WebSocketPath  string
	AdminAPIKey    string
	AllowedOrigins []string
	Orders         *handlers.OrderHandler
	Subscriptions  *handlers.SubscriptionHandler
	WebSockets     *handlers.WebSocketHandlers
	Connections    ConnectionStats
	Log            logger.Logger
}

// NewAPI builds the REST surface. Admin routes require the configured bearer key and are
// not registered at all when no key is configured.
func NewAPI(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.LoggerWithConfig(echomiddleware.LoggerConfig{
		Format: `{"time":"${time_rfc3339}","id":"${id}","remote_ip":"${remote_ip}","method":"${method}","uri":"${uri}","status":${status},"error":"${error}","latency_human":"${latency_human}","bytes_in":${bytes_in},"bytes_out":${bytes_out}}` + "\n",
	}))
	e.Use(echomiddleware.Recover())

	api := e.Group("/api")
	api.POST("/non-auth-orders/:storeId", cfg.Orders.PlaceOrder)

	if cfg.AdminAPIKey == "" {
		cfg.Log.Warn("Admin API key not configured, admin routes disabled")
		return e
	}
	admin := api.Group("/admin", echomiddleware.KeyAuth(func(key string, c echo.Context) (bool, error) {
		return key == cfg.AdminAPIKey, nil
	}))
	admin.PATCH("/shopowners/:id/subscription", cfg.Subscriptions.UpdateSubscription)

	return e
}

// NewRouter is the root handler: the dashboard socket and health check on mux, the REST
// API mounted under /api/.
func NewRouter(cfg RouterConfig) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.CORS(cfg.AllowedOrigins, cfg.Log))

	router.HandleFunc(cfg.WebSocketPath, cfg.WebSockets.HandleConnection).Methods(http.MethodGet)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":           "ok",
			"timestamp":        time.Now().UTC().Format(time.RFC3339),
			"connected_stores": cfg.Connections.StoreCount(),
		})
	}).Methods(http.MethodGet)

	router.PathPrefix("/api/").Handler(NewAPI(cfg))

	return router
}
