package domain

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug,omitempty"`
	WhatsappNumber string    `json:"whatsappNumber"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Product struct {
	ID      int64   `json:"id"`
	StoreID int64   `json:"storeId"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Active  bool    `json:"active"`
}

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
	SubscriptionTrial    SubscriptionStatus = "trial"
	SubscriptionExpired  SubscriptionStatus = "expired"
)

func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionActive, SubscriptionInactive, SubscriptionTrial, SubscriptionExpired:
		return true
	default:
		return false
	}
}

// Plan sizes a shop owner may be moved to.
var AllowedProductLimits = []int{30, 50, 100}

const DefaultProductLimit = 30

type ShopOwner struct {
	ID                    int64              `json:"id"`
	UserID                int64              `json:"userId"`
	StoreID               *int64             `json:"storeId"`
	SubscriptionStatus    SubscriptionStatus `json:"subscriptionStatus"`
	SubscriptionExpiresAt *time.Time         `json:"subscriptionExpiresAt"`
	ProductLimit          int                `json:"productLimit"`
}

// SubscriptionUpdate is a partial update; nil fields are left untouched.
type SubscriptionUpdate struct {
	Status       SubscriptionStatus
	ProductLimit *int
	ExpiresAt    *time.Time
}

type DeliveryMethod string

const (
	DeliveryMethodDelivery DeliveryMethod = "delivery"
	DeliveryMethodPickup   DeliveryMethod = "pickup"
)

func (m DeliveryMethod) Valid() bool {
	return m == DeliveryMethodDelivery || m == DeliveryMethodPickup
}

// Order field names follow the dashboard's JSON contract.
type Order struct {
	ID              int64          `json:"id"`
	CustomerID      *int64         `json:"customerId"`
	StoreID         int64          `json:"storeId"`
	CustomerName    string         `json:"customerName"`
	CustomerPhone   *string        `json:"customerPhone"`
	CustomerAddress *string        `json:"customerAddress"`
	DeliveryMethod  DeliveryMethod `json:"deliveryMethod"`
	Notes           *string        `json:"notes"`
	Total           float64        `json:"total"`
	WhatsappSent    bool           `json:"whatsappSent"`
	CreatedAt       time.Time      `json:"createdAt"`
}

type OrderItem struct {
	ID          int64   `json:"id"`
	OrderID     int64   `json:"orderId"`
	ProductID   *int64  `json:"productId"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}
