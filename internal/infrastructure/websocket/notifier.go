package websocket

import (
	"context"
	"time"

	"storefront/internal/domain"
	"storefront/pkg/logger"
)

type WebSocketNotifier struct {
	registry domain.ConnectionRegistry
	now      func() time.Time
	log      logger.Logger
}

func NewWebSocketNotifier(registry domain.ConnectionRegistry, log logger.Logger) *WebSocketNotifier {
	return &WebSocketNotifier{registry: registry, now: time.Now, log: log}
}

func (n *WebSocketNotifier) PublishNewOrder(ctx context.Context, storeID int64, order *domain.Order, items []*domain.OrderItem) {
	if order == nil {
		return
	}

	values := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		if item != nil {
			values = append(values, *item)
		}
	}

	attempts := n.registry.Broadcast(storeID, domain.NewNewOrderEvent(*order, values, n.now()))
	if attempts == 0 {
		n.log.Info("Order created without live notification", "store_id", storeID, "order_id", order.ID)
		return
	}
	n.log.Info("New order notification sent", "store_id", storeID, "order_id", order.ID, "attempts", attempts)
}

func (n *WebSocketNotifier) PublishSubscriptionUpdated(ctx context.Context, storeID int64, productLimit int, status domain.SubscriptionStatus) {
	attempts := n.registry.Broadcast(storeID, domain.SubscriptionUpdatedEvent{Data: domain.SubscriptionNotification{
		ProductLimit:       productLimit,
		SubscriptionStatus: status,
	}})
	n.log.Info("Subscription update notification sent", "store_id", storeID,
		"product_limit", productLimit, "status", status, "attempts", attempts)
}
