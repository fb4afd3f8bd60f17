package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"storefront/internal/domain"
	"storefront/pkg/logger"
)

type PlaceOrderItem struct {
	ProductID   *int64  `json:"productId"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

type PlaceOrderRequest struct {
	CustomerName    string                `json:"customerName"`
	CustomerPhone   string                `json:"customerPhone"`
	CustomerAddress string                `json:"customerAddress"`
	DeliveryMethod  domain.DeliveryMethod `json:"deliveryMethod"`
	PaymentMethod   string                `json:"paymentMethod"`
	Notes           string                `json:"notes"`
	Items           []PlaceOrderItem      `json:"items"`
}

type PlacedOrder struct {
	Order        *domain.Order
	Items        []*domain.OrderItem
	WhatsappLink string
}

type OrderService struct {
	stores   domain.StoreRepository
	products domain.ProductRepository
	orders   domain.OrderRepository
	notifier domain.StoreNotifier
	log      logger.Logger
}

func NewOrderService(
	stores domain.StoreRepository,
	products domain.ProductRepository,
	orders domain.OrderRepository,
	notifier domain.StoreNotifier,
	log logger.Logger,
) *OrderService {
	return &OrderService{
		stores:   stores,
		products: products,
		orders:   orders,
		notifier: notifier,
		log:      log,
	}
}

// PlaceOrder records a visitor order, then notifies the store's live dashboards.
// Notification is best effort and never fails the order.
func (s *OrderService) PlaceOrder(ctx context.Context, storeID int64, req PlaceOrderRequest) (*PlacedOrder, error) {
	if err := validateOrder(req); err != nil {
		return nil, err
	}

	store, err := s.stores.GetStore(ctx, storeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("get store %d: %w", storeID, err)
	}

	items := make([]*domain.OrderItem, 0, len(req.Items))
	var total float64
	for _, reqItem := range req.Items {
		name, err := s.itemName(ctx, reqItem)
		if err != nil {
			return nil, err
		}
		items = append(items, &domain.OrderItem{
			ProductID:   reqItem.ProductID,
			ProductName: name,
			Price:       reqItem.Price,
			Quantity:    reqItem.Quantity,
		})
		total += reqItem.Price * float64(reqItem.Quantity)
	}

	order := &domain.Order{
		StoreID:         storeID,
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerPhone:   optional(req.CustomerPhone),
		CustomerAddress: optional(req.CustomerAddress),
		DeliveryMethod:  req.DeliveryMethod,
		Notes:           optional(req.Notes),
		Total:           math.Round(total*100) / 100,
	}

	if err := s.orders.CreateOrder(ctx, order, items); err != nil {
		s.log.Error("Failed to create order", "store_id", storeID, "error", err)
		return nil, fmt.Errorf("create order: %w", err)
	}
	s.log.Info("Order created", "store_id", storeID, "order_id", order.ID, "items", len(items), "total", order.Total)

	// Dashboards get the items as stored.
	stored, err := s.orders.GetOrderItems(ctx, order.ID)
	if err != nil {
		s.log.Warn("Failed to reload order items", "order_id", order.ID, "error", err)
	} else if len(stored) > 0 {
		items = stored
	}

	s.notifier.PublishNewOrder(ctx, storeID, order, items)

	return &PlacedOrder{
		Order:        order,
		Items:        items,
		WhatsappLink: BuildWhatsappLink(store.WhatsappNumber, buildOrderMessage(order, items, req.PaymentMethod)),
	}, nil
}

func (s *OrderService) itemName(ctx context.Context, item PlaceOrderItem) (string, error) {
	if name := strings.TrimSpace(item.ProductName); name != "" {
		return name, nil
	}
	if item.ProductID == nil {
		return "Produto", nil
	}

	product, err := s.products.GetProduct(ctx, *item.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Sprintf("Produto #%d", *item.ProductID), nil
		}
		return "", fmt.Errorf("get product %d: %w", *item.ProductID, err)
	}
	return product.Name, nil
}

func validateOrder(req PlaceOrderRequest) error {
	if strings.TrimSpace(req.CustomerName) == "" {
		return fmt.Errorf("%w: customer name is required", ErrInvalidOrder)
	}
	if !req.DeliveryMethod.Valid() {
		return fmt.Errorf("%w: unknown delivery method %q", ErrInvalidOrder, req.DeliveryMethod)
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: order has no items", ErrInvalidOrder)
	}
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %d has quantity %d", ErrInvalidOrder, i, item.Quantity)
		}
		if item.Price < 0 || math.IsNaN(item.Price) || math.IsInf(item.Price, 0) {
			return fmt.Errorf("%w: item %d has invalid price", ErrInvalidOrder, i)
		}
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
