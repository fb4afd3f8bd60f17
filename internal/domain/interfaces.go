package domain

import (
	"context"
	"time"
)

// Repository interfaces
type StoreRepository interface {
	GetStore(ctx context.Context, storeID int64) (*Store, error)
}

type ProductRepository interface {
	GetProduct(ctx context.Context, productID int64) (*Product, error)
}

type OrderRepository interface {
	// CreateOrder persists the order and its items atomically, filling in generated ids.
	CreateOrder(ctx context.Context, order *Order, items []*OrderItem) error
	GetOrderItems(ctx context.Context, orderID int64) ([]*OrderItem, error)
}

type ShopOwnerRepository interface {
	GetShopOwner(ctx context.Context, shopOwnerID int64) (*ShopOwner, error)
	UpdateSubscription(ctx context.Context, shopOwnerID int64, update SubscriptionUpdate) (*ShopOwner, error)
	ListExpiredSubscriptions(ctx context.Context, now time.Time) ([]*ShopOwner, error)
}

// Cache interfaces
type StoreCache interface {
	GetStore(ctx context.Context, storeID int64) (*Store, error)
	SetStore(ctx context.Context, store *Store) error
}

// WebSocket interfaces
type StoreConnection interface {
	ID() string
	Send(message []byte) error
	IsOpen() bool
	Close() error
}

type ConnectionRegistry interface {
	Register(storeID int64, conn StoreConnection)
	Unregister(storeID int64, conn StoreConnection)
	ConnectionsForStore(storeID int64) []StoreConnection
	// Broadcast returns the number of delivery attempts made.
	Broadcast(storeID int64, event Event) int
}

// Notification interfaces
type StoreNotifier interface {
	PublishNewOrder(ctx context.Context, storeID int64, order *Order, items []*OrderItem)
	PublishSubscriptionUpdated(ctx context.Context, storeID int64, productLimit int, status SubscriptionStatus)
}

// Leader election interface
type LeaderElection interface {
	BecomeLeader(ctx context.Context, instanceID string) (bool, error)
	IsLeader(ctx context.Context, instanceID string) (bool, error)
	ReleaseLeadership(ctx context.Context, instanceID string) error
}
