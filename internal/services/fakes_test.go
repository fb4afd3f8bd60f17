package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"storefront/internal/domain"
)

type fakeStoreRepo struct {
	stores map[int64]*domain.Store
	err    error
}

func (f *fakeStoreRepo) GetStore(ctx context.Context, storeID int64) (*domain.Store, error) {
	if f.err != nil {
		return nil, f.err
	}
	store, ok := f.stores[storeID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return store, nil
}

type fakeProductRepo struct {
	products map[int64]*domain.Product
	err      error
}

func (f *fakeProductRepo) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	product, ok := f.products[productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

type fakeOrderRepo struct {
	mu       sync.Mutex
	nextID   int64
	orders   []*domain.Order
	items    map[int64][]*domain.OrderItem
	err      error
	itemsErr error
}

func (f *fakeOrderRepo) CreateOrder(ctx context.Context, order *domain.Order, items []*domain.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nextID++
	order.ID = f.nextID
	for i, item := range items {
		item.ID = int64(i + 1)
		item.OrderID = order.ID
	}
	f.orders = append(f.orders, order)
	if f.items == nil {
		f.items = make(map[int64][]*domain.OrderItem)
	}
	for _, item := range items {
		stored := *item
		f.items[order.ID] = append(f.items[order.ID], &stored)
	}
	return nil
}

func (f *fakeOrderRepo) GetOrderItems(ctx context.Context, orderID int64) ([]*domain.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.itemsErr != nil {
		return nil, f.itemsErr
	}
	return f.items[orderID], nil
}

type fakeShopOwnerRepo struct {
	mu       sync.Mutex
	owners   map[int64]*domain.ShopOwner
	failOn   map[int64]error
	listErr  error
	updates  []domain.SubscriptionUpdate
	listedAt time.Time
}

func (f *fakeShopOwnerRepo) GetShopOwner(ctx context.Context, id int64) (*domain.ShopOwner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	owner, ok := f.owners[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *owner
	return &copied, nil
}

func (f *fakeShopOwnerRepo) UpdateSubscription(ctx context.Context, id int64, update domain.SubscriptionUpdate) (*domain.ShopOwner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failOn[id]; err != nil {
		return nil, err
	}
	owner, ok := f.owners[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	f.updates = append(f.updates, update)
	owner.SubscriptionStatus = update.Status
	if update.ProductLimit != nil {
		owner.ProductLimit = *update.ProductLimit
	}
	if update.ExpiresAt != nil {
		owner.SubscriptionExpiresAt = update.ExpiresAt
	}
	copied := *owner
	return &copied, nil
}

func (f *fakeShopOwnerRepo) ListExpiredSubscriptions(ctx context.Context, now time.Time) ([]*domain.ShopOwner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listedAt = now
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.ShopOwner
	for _, owner := range f.owners {
		active := owner.SubscriptionStatus == domain.SubscriptionActive || owner.SubscriptionStatus == domain.SubscriptionTrial
		if active && owner.SubscriptionExpiresAt != nil && !owner.SubscriptionExpiresAt.After(now) {
			copied := *owner
			out = append(out, &copied)
		}
	}
	return out, nil
}

type publishedOrder struct {
	storeID int64
	order   *domain.Order
	items   []*domain.OrderItem
}

type publishedSubscription struct {
	storeID      int64
	productLimit int
	status       domain.SubscriptionStatus
}

type recordingNotifier struct {
	mu            sync.Mutex
	orders        []publishedOrder
	subscriptions []publishedSubscription
}

func (n *recordingNotifier) PublishNewOrder(ctx context.Context, storeID int64, order *domain.Order, items []*domain.OrderItem) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, publishedOrder{storeID, order, items})
}

func (n *recordingNotifier) PublishSubscriptionUpdated(ctx context.Context, storeID int64, productLimit int, status domain.SubscriptionStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subscriptions = append(n.subscriptions, publishedSubscription{storeID, productLimit, status})
}

func (n *recordingNotifier) Subscriptions() []publishedSubscription {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]publishedSubscription(nil), n.subscriptions...)
}

type fakeLeader struct {
	leader bool
	err    error
}

func (f *fakeLeader) BecomeLeader(ctx context.Context, instanceID string) (bool, error) {
	return f.leader, f.err
}

func (f *fakeLeader) IsLeader(ctx context.Context, instanceID string) (bool, error) {
	return f.leader, f.err
}

func (f *fakeLeader) ReleaseLeadership(ctx context.Context, instanceID string) error {
	return nil
}

var errDatabaseDown = errors.New("database down")

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }
