package handlers

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/infrastructure/websocket"
	"storefront/pkg/logger"
)

type WebSocketHandlers struct {
	wsHandler *websocket.WebSocketHandler
}

func NewWebSocketHandlers(registry domain.ConnectionRegistry, stores domain.StoreRepository,
	cfg config.WebSocketConfig, log logger.Logger) *WebSocketHandlers {
	wsHandler := websocket.NewWebSocketHandler(registry, stores, cfg, log)
	return &WebSocketHandlers{
		wsHandler: wsHandler,
	}
}

func (h *WebSocketHandlers) HandleConnection(w http.ResponseWriter, r *http.Request) {
	h.wsHandler.HandleConnection(w, r)
}
