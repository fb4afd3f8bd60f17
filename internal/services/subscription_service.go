package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/pkg/logger"
)

type SubscriptionService struct {
	owners   domain.ShopOwnerRepository
	notifier domain.StoreNotifier
	log      logger.Logger
}

func NewSubscriptionService(owners domain.ShopOwnerRepository, notifier domain.StoreNotifier, log logger.Logger) *SubscriptionService {
	return &SubscriptionService{owners: owners, notifier: notifier, log: log}
}

// UpdateSubscription applies an admin plan change. The owning store's dashboards are told
// about the new product limit once the change is stored.
func (s *SubscriptionService) UpdateSubscription(ctx context.Context, shopOwnerID int64, update domain.SubscriptionUpdate) (*domain.ShopOwner, error) {
	if !update.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidSubscription, update.Status)
	}
	if update.ProductLimit != nil && !allowedProductLimit(*update.ProductLimit) {
		return nil, fmt.Errorf("%w: product limit must be one of %v", ErrInvalidSubscription, domain.AllowedProductLimits)
	}

	owner, err := s.owners.GetShopOwner(ctx, shopOwnerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrShopOwnerNotFound
		}
		return nil, fmt.Errorf("get shop owner %d: %w", shopOwnerID, err)
	}

	updated, err := s.owners.UpdateSubscription(ctx, shopOwnerID, update)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrShopOwnerNotFound
		}
		return nil, fmt.Errorf("update subscription %d: %w", shopOwnerID, err)
	}
	s.log.Info("Subscription updated", "shop_owner_id", shopOwnerID, "status", update.Status)

	if update.ProductLimit != nil && owner.StoreID != nil {
		s.notifier.PublishSubscriptionUpdated(ctx, *owner.StoreID, *update.ProductLimit, update.Status)
	}

	return updated, nil
}

// ExpireSubscriptions moves every active or trial subscription past its expiry date to
// expired and notifies the affected stores. It keeps going past individual failures.
func (s *SubscriptionService) ExpireSubscriptions(ctx context.Context, now time.Time) (int, error) {
	owners, err := s.owners.ListExpiredSubscriptions(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list expired subscriptions: %w", err)
	}

	var errs []error
	expired := 0
	for _, owner := range owners {
		updated, err := s.owners.UpdateSubscription(ctx, owner.ID, domain.SubscriptionUpdate{Status: domain.SubscriptionExpired})
		if err != nil {
			s.log.Error("Failed to expire subscription", "shop_owner_id", owner.ID, "error", err)
			errs = append(errs, fmt.Errorf("expire shop owner %d: %w", owner.ID, err))
			continue
		}
		expired++

		if owner.StoreID != nil {
			s.notifier.PublishSubscriptionUpdated(ctx, *owner.StoreID, updated.ProductLimit, domain.SubscriptionExpired)
		}
	}

	if expired > 0 {
		s.log.Info("Expired subscriptions", "count", expired)
	}
	return expired, errors.Join(errs...)
}

func allowedProductLimit(limit int) bool {
	for _, allowed := range domain.AllowedProductLimits {
		if limit == allowed {
			return true
		}
	}
	return false
}
