package websocket

import (
	"encoding/json"
	"sync"

	"storefront/internal/domain"
	"storefront/pkg/logger"
)

type ConnectionManager struct {
	connections map[int64]map[string]domain.StoreConnection // storeID -> connID -> connection
	connStores  map[string]int64                            // connID -> storeID
	mutex       sync.RWMutex
	// broadcastMu keeps events for a store enqueued on every subscriber in publish order.
	broadcastMu sync.Mutex
	log         logger.Logger
}

func NewConnectionManager(log logger.Logger) *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[int64]map[string]domain.StoreConnection),
		connStores:  make(map[string]int64),
		log:         log,
	}
}

// Register subscribes conn to storeID. A connection belongs to at most one store: registering
// it under a new store moves it, registering it again under the same store is a no-op.
func (cm *ConnectionManager) Register(storeID int64, conn domain.StoreConnection) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	connID := conn.ID()
	if previous, exists := cm.connStores[connID]; exists {
		if previous == storeID {
			cm.log.Debug("Connection already registered", "conn_id", connID, "store_id", storeID)
			return
		}
		cm.removeLocked(previous, connID)
		cm.log.Info("Connection moved to another store", "conn_id", connID,
			"from_store_id", previous, "store_id", storeID)
	}

	if cm.connections[storeID] == nil {
		cm.connections[storeID] = make(map[string]domain.StoreConnection)
	}
	cm.connections[storeID][connID] = conn
	cm.connStores[connID] = storeID

	cm.log.Info("Connection registered", "conn_id", connID, "store_id", storeID,
		"store_connections", len(cm.connections[storeID]))
}

// Unregister removes conn from storeID. Unknown connections are ignored.
func (cm *ConnectionManager) Unregister(storeID int64, conn domain.StoreConnection) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	connID := conn.ID()
	if current, exists := cm.connStores[connID]; !exists || current != storeID {
		return
	}
	cm.removeLocked(storeID, connID)

	cm.log.Info("Connection unregistered", "conn_id", connID, "store_id", storeID)
}

func (cm *ConnectionManager) removeLocked(storeID int64, connID string) {
	delete(cm.connStores, connID)
	if storeConns, exists := cm.connections[storeID]; exists {
		delete(storeConns, connID)
		if len(storeConns) == 0 {
			delete(cm.connections, storeID)
		}
	}
}

func (cm *ConnectionManager) ConnectionsForStore(storeID int64) []domain.StoreConnection {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	var connections []domain.StoreConnection
	if storeConns, exists := cm.connections[storeID]; exists {
		connections = make([]domain.StoreConnection, 0, len(storeConns))
		for _, conn := range storeConns {
			connections = append(connections, conn)
		}
	}

	return connections
}

func (cm *ConnectionManager) StoreCount() int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return len(cm.connections)
}

// Broadcast serializes event once and hands it to every open connection of storeID.
// Closed connections are skipped, not removed; removal belongs to the close path.
// Per-connection failures are logged and never stop the remaining deliveries.
func (cm *ConnectionManager) Broadcast(storeID int64, event domain.Event) int {
	messageBytes, err := json.Marshal(event)
	if err != nil {
		cm.log.Error("Failed to encode event", "store_id", storeID, "type", event.Type(), "error", err)
		return 0
	}

	cm.broadcastMu.Lock()
	defer cm.broadcastMu.Unlock()

	connections := cm.ConnectionsForStore(storeID)
	if len(connections) == 0 {
		cm.log.Info("No live connections for store", "store_id", storeID, "type", event.Type())
		return 0
	}

	attempts := 0
	for _, conn := range connections {
		if !conn.IsOpen() {
			continue
		}
		attempts++
		if err := cm.send(conn, messageBytes); err != nil {
			cm.log.Error("Failed to send message", "conn_id", conn.ID(), "store_id", storeID,
				"type", event.Type(), "error", err)
			// Continue to other connections
		}
	}

	cm.log.Info("Broadcast to store", "store_id", storeID, "type", event.Type(),
		"connections", len(connections), "attempts", attempts)
	return attempts
}

func (cm *ConnectionManager) send(conn domain.StoreConnection, message []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			cm.log.Error("Recovered from panic while sending", "conn_id", conn.ID(), "panic", r)
			err = ErrConnectionClosed
		}
	}()
	return conn.Send(message)
}
