package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	messageTypeIdentify = "identify"
	messageTypePing     = "ping"

	storeLookupTimeout = 5 * time.Second
)

var pongMessage = []byte(`{"type":"pong"}`)

var errInvalidStoreID = errors.New("invalid store id")

type WebSocketHandler struct {
	registry domain.ConnectionRegistry
	stores   domain.StoreRepository
	upgrader websocket.Upgrader
	cfg      config.WebSocketConfig
	log      logger.Logger
}

func NewWebSocketHandler(registry domain.ConnectionRegistry, stores domain.StoreRepository,
	cfg config.WebSocketConfig, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		registry: registry,
		stores:   stores,
		upgrader: websocket.Upgrader{CheckOrigin: originChecker(cfg.AllowedOrigins)},
		cfg:      cfg,
		log:      log,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool {
			return true // Allow all origins in development
		}
	}
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// HandleConnection upgrades the request. The connection stays unidentified, and receives
// nothing, until the client sends {"type":"identify","storeId":N}.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err, "remote_addr", r.RemoteAddr)
		return
	}
	if h.cfg.ReadLimit > 0 {
		conn.SetReadLimit(h.cfg.ReadLimit)
	}

	client := NewClient(conn, h.cfg.SendBuffer, h.cfg.WriteTimeout, h.log)
	h.log.Info("WebSocket connection established", "conn_id", client.ID(), "remote_addr", r.RemoteAddr)

	go client.writePump()
	go h.handleMessages(client)
}

func (h *WebSocketHandler) handleMessages(client *Client) {
	defer func() {
		if storeID, ok := client.StoreID(); ok {
			h.registry.Unregister(storeID, client)
		}
		client.Close()
		h.log.Info("WebSocket connection closed", "conn_id", client.ID())
	}()

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway,
				websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				h.log.Error("Failed to read message", "conn_id", client.ID(), "error", err)
			}
			return
		}

		h.handleMessage(client, data)
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	StoreID json.RawMessage `json:"storeId"`
}

func (h *WebSocketHandler) handleMessage(client *Client, data []byte) {
	if len(bytes.TrimSpace(data)) == 0 {
		h.log.Warn("Empty WebSocket message received", "conn_id", client.ID())
		return
	}

	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.log.Warn("Malformed WebSocket message", "conn_id", client.ID(), "error", err)
		return
	}

	switch msg.Type {
	case messageTypeIdentify:
		h.handleIdentify(client, msg)
	case messageTypePing:
		if err := client.Send(pongMessage); err != nil {
			h.log.Warn("Failed to answer ping", "conn_id", client.ID(), "error", err)
		}
	default:
		h.log.Debug("Ignoring WebSocket message", "conn_id", client.ID(), "type", msg.Type)
	}
}

func (h *WebSocketHandler) handleIdentify(client *Client, msg inboundMessage) {
	storeID, err := parseStoreID(msg.StoreID)
	if err != nil {
		h.log.Warn("Rejected identification", "conn_id", client.ID(),
			"store_id", string(msg.StoreID), "error", err)
		return
	}

	if current, ok := client.StoreID(); ok && current == storeID {
		h.log.Debug("Connection already identified", "conn_id", client.ID(), "store_id", storeID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeLookupTimeout)
	defer cancel()
	if _, err := h.stores.GetStore(ctx, storeID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.log.Warn("Identification for unknown store", "conn_id", client.ID(), "store_id", storeID)
			return
		}
		// Dashboards identify once per session, so only a confirmed unknown store is rejected.
		h.log.Error("Failed to look up store, identifying anyway", "conn_id", client.ID(),
			"store_id", storeID, "error", err)
	}

	h.registry.Register(storeID, client)
	client.setStoreID(storeID)

	h.log.Info("WebSocket client identified", "conn_id", client.ID(), "store_id", storeID)
}

// parseStoreID accepts a JSON integer or a string of decimal digits; the result must be positive.
func parseStoreID(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("%w: missing", errInvalidStoreID)
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, fmt.Errorf("%w: %v", errInvalidStoreID, err)
		}
	}

	storeID, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errInvalidStoreID, text)
	}
	if storeID <= 0 {
		return 0, fmt.Errorf("%w: %d", errInvalidStoreID, storeID)
	}
	return storeID, nil
}
