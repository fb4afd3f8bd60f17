package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"storefront/internal/domain"
	"storefront/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type orderFixture struct {
	service  *OrderService
	orders   *fakeOrderRepo
	products *fakeProductRepo
	stores   *fakeStoreRepo
	notifier *recordingNotifier
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		orders:   &fakeOrderRepo{},
		products: &fakeProductRepo{products: map[int64]*domain.Product{3: {ID: 3, StoreID: 7, Name: "Brigadeiro", Price: 2.5}}},
		stores:   &fakeStoreRepo{stores: map[int64]*domain.Store{7: {ID: 7, Name: "Doces da Ana", WhatsappNumber: "+55 (11) 99999-0000"}}},
		notifier: &recordingNotifier{},
	}
	f.service = NewOrderService(f.stores, f.products, f.orders, f.notifier, logger.NewWithZap(zaptest.NewLogger(t)))
	return f
}

func validRequest() PlaceOrderRequest {
	return PlaceOrderRequest{
		CustomerName:   "Maria",
		CustomerPhone:  "11 98888-7777",
		DeliveryMethod: domain.DeliveryMethodPickup,
		PaymentMethod:  "Pix",
		Items: []PlaceOrderItem{
			{ProductName: "Bolo de cenoura", Price: 25.9, Quantity: 1},
			{ProductID: int64Ptr(3), Price: 2.5, Quantity: 4},
		},
	}
}

func TestPlaceOrder_PersistsAndNotifiesStore(t *testing.T) {
	f := newOrderFixture(t)

	placed, err := f.service.PlaceOrder(context.Background(), 7, validRequest())
	require.NoError(t, err)

	assert.EqualValues(t, 1, placed.Order.ID)
	assert.EqualValues(t, 7, placed.Order.StoreID)
	assert.Equal(t, 35.9, placed.Order.Total)
	require.Len(t, placed.Items, 2)
	assert.Equal(t, "Brigadeiro", placed.Items[1].ProductName)
	assert.EqualValues(t, 1, placed.Items[1].OrderID)

	require.Len(t, f.notifier.orders, 1)
	published := f.notifier.orders[0]
	assert.EqualValues(t, 7, published.storeID)
	assert.Same(t, placed.Order, published.order)
	assert.Len(t, published.items, 2)

	assert.True(t, strings.HasPrefix(placed.WhatsappLink, "https://wa.me/5511999990000?text="))
}

func TestPlaceOrder_InvalidRequestIsRejectedBeforeAnySideEffect(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PlaceOrderRequest)
	}{
		{"missing name", func(r *PlaceOrderRequest) { r.CustomerName = "  " }},
		{"unknown delivery method", func(r *PlaceOrderRequest) { r.DeliveryMethod = "drone" }},
		{"no items", func(r *PlaceOrderRequest) { r.Items = nil }},
		{"zero quantity", func(r *PlaceOrderRequest) { r.Items[0].Quantity = 0 }},
		{"negative price", func(r *PlaceOrderRequest) { r.Items[0].Price = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture(t)
			req := validRequest()
			tt.mutate(&req)

			_, err := f.service.PlaceOrder(context.Background(), 7, req)

			assert.ErrorIs(t, err, ErrInvalidOrder)
			assert.Empty(t, f.orders.orders)
			assert.Empty(t, f.notifier.orders)
		})
	}
}

func TestPlaceOrder_UnknownStore(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.service.PlaceOrder(context.Background(), 404, validRequest())

	assert.ErrorIs(t, err, ErrStoreNotFound)
	assert.Empty(t, f.notifier.orders)
}

func TestPlaceOrder_PersistenceFailureDoesNotNotify(t *testing.T) {
	f := newOrderFixture(t)
	f.orders.err = errDatabaseDown

	_, err := f.service.PlaceOrder(context.Background(), 7, validRequest())

	assert.ErrorIs(t, err, errDatabaseDown)
	assert.Empty(t, f.notifier.orders)
}

func TestPlaceOrder_ItemNameFallbacks(t *testing.T) {
	f := newOrderFixture(t)
	req := validRequest()
	req.Items = []PlaceOrderItem{
		{ProductID: int64Ptr(99), Price: 1, Quantity: 1},
		{Price: 1, Quantity: 1},
	}

	placed, err := f.service.PlaceOrder(context.Background(), 7, req)
	require.NoError(t, err)

	assert.Equal(t, "Produto #99", placed.Items[0].ProductName)
	assert.Equal(t, "Produto", placed.Items[1].ProductName)
}

func TestPlaceOrder_ProductLookupFailure(t *testing.T) {
	f := newOrderFixture(t)
	f.products.err = errors.New("timeout")
	req := validRequest()
	req.Items = []PlaceOrderItem{{ProductID: int64Ptr(3), Price: 1, Quantity: 1}}

	_, err := f.service.PlaceOrder(context.Background(), 7, req)

	require.Error(t, err)
	assert.Empty(t, f.orders.orders)
}

func TestPlaceOrder_OptionalFieldsAreNil(t *testing.T) {
	f := newOrderFixture(t)
	req := validRequest()
	req.CustomerPhone = ""
	req.Notes = "   "

	placed, err := f.service.PlaceOrder(context.Background(), 7, req)
	require.NoError(t, err)

	assert.Nil(t, placed.Order.CustomerPhone)
	assert.Nil(t, placed.Order.Notes)
	assert.Nil(t, placed.Order.CustomerAddress)
}

func TestPlaceOrder_PublishesStoredItems(t *testing.T) {
	f := newOrderFixture(t)

	placed, err := f.service.PlaceOrder(context.Background(), 7, validRequest())
	require.NoError(t, err)

	require.Len(t, f.notifier.orders, 1)
	published := f.notifier.orders[0].items
	require.Len(t, published, 2)
	assert.Same(t, f.orders.items[placed.Order.ID][0], published[0], "items are reloaded after commit")
	assert.Equal(t, "Brigadeiro", published[1].ProductName)
}

func TestPlaceOrder_ItemReloadFailureFallsBack(t *testing.T) {
	f := newOrderFixture(t)
	f.orders.itemsErr = errDatabaseDown

	placed, err := f.service.PlaceOrder(context.Background(), 7, validRequest())
	require.NoError(t, err)

	require.Len(t, f.notifier.orders, 1)
	assert.Len(t, f.notifier.orders[0].items, 2)
	assert.Len(t, placed.Items, 2)
}
