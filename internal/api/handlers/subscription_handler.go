package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/services"
	"storefront/pkg/logger"

	"github.com/labstack/echo/v4"
)

type SubscriptionUpdater interface {
	UpdateSubscription(ctx context.Context, shopOwnerID int64, update domain.SubscriptionUpdate) (*domain.ShopOwner, error)
}

type SubscriptionHandler struct {
	subscriptions SubscriptionUpdater
	log           logger.Logger
}

type UpdateSubscriptionRequest struct {
	Status       domain.SubscriptionStatus `json:"status"`
	ProductLimit json.RawMessage           `json:"productLimit"`
	ExpiresAt    *time.Time                `json:"expiresAt"`
}

func NewSubscriptionHandler(subscriptions SubscriptionUpdater, log logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptions: subscriptions,
		log:           log,
	}
}

func (h *SubscriptionHandler) UpdateSubscription(c echo.Context) error {
	shopOwnerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid shop owner id"})
	}

	var req UpdateSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	productLimit, err := parseProductLimit(req.ProductLimit)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product limit"})
	}

	owner, err := h.subscriptions.UpdateSubscription(c.Request().Context(), shopOwnerID, domain.SubscriptionUpdate{
		Status:       req.Status,
		ProductLimit: productLimit,
		ExpiresAt:    req.ExpiresAt,
	})
	switch {
	case errors.Is(err, services.ErrInvalidSubscription):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrShopOwnerNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Shop owner not found"})
	case err != nil:
		h.log.Error("Failed to update subscription", "shop_owner_id", shopOwnerID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update subscription"})
	}

	return c.JSON(http.StatusOK, owner)
}

// parseProductLimit accepts a JSON number or a numeric string. Absent, null, 0 and "" mean
// the limit is left unchanged.
func parseProductLimit(raw json.RawMessage) (*int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, nil
		}
	} else {
		text = string(raw)
		if text == "0" {
			return nil, nil
		}
	}

	limit, err := strconv.Atoi(text)
	if err != nil {
		return nil, err
	}
	return &limit, nil
}
