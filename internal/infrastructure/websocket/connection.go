package websocket

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"storefront/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendBufferFull   = errors.New("send buffer full")
)

// Client is one dashboard session. Writes go through a buffered queue drained by
// writePump, so Send never blocks the caller on socket I/O.
type Client struct {
	id           string
	conn         *websocket.Conn
	send         chan []byte
	done         chan struct{}
	closeOnce    sync.Once
	writeTimeout time.Duration
	// storeID is 0 until the client identifies.
	storeID atomic.Int64
	log     logger.Logger
}

func NewClient(conn *websocket.Conn, sendBuffer int, writeTimeout time.Duration, log logger.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		id:           id,
		conn:         conn,
		send:         make(chan []byte, sendBuffer),
		done:         make(chan struct{}),
		writeTimeout: writeTimeout,
		log:          log.With("conn_id", id),
	}
}

func (c *Client) ID() string {
	return c.id
}

// StoreID reports the store the client identified for.
func (c *Client) StoreID() (int64, bool) {
	id := c.storeID.Load()
	return id, id != 0
}

func (c *Client) setStoreID(storeID int64) {
	c.storeID.Store(storeID)
}

func (c *Client) IsOpen() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

func (c *Client) Send(message []byte) error {
	if !c.IsOpen() {
		return ErrConnectionClosed
	}

	select {
	case c.send <- message:
		return nil
	case <-c.done:
		return ErrConnectionClosed
	default:
		return ErrSendBufferFull
	}
}

func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

func (c *Client) writePump() {
	for {
		select {
		case message := <-c.send:
			if c.writeTimeout > 0 {
				c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.Error("Failed to write message", "error", err)
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}
