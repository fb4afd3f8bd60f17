package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"
)

type MySQLShopOwnerRepository struct {
	db *sql.DB
}

func NewMySQLShopOwnerRepository(db *sql.DB) *MySQLShopOwnerRepository {
	return &MySQLShopOwnerRepository{db: db}
}

const shopOwnerColumns = `id, user_id, store_id, subscription_status, subscription_expires_at, product_limit`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanShopOwner(row rowScanner) (*domain.ShopOwner, error) {
	var owner domain.ShopOwner
	var storeID sql.NullInt64
	var status string
	var expiresAt sql.NullTime
	var productLimit sql.NullInt64

	if err := row.Scan(&owner.ID, &owner.UserID, &storeID, &status, &expiresAt, &productLimit); err != nil {
		return nil, err
	}

	owner.SubscriptionStatus = domain.SubscriptionStatus(status)
	if storeID.Valid {
		owner.StoreID = &storeID.Int64
	}
	if expiresAt.Valid {
		owner.SubscriptionExpiresAt = &expiresAt.Time
	}
	owner.ProductLimit = domain.DefaultProductLimit
	if productLimit.Valid {
		owner.ProductLimit = int(productLimit.Int64)
	}
	return &owner, nil
}

func (r *MySQLShopOwnerRepository) GetShopOwner(ctx context.Context, shopOwnerID int64) (*domain.ShopOwner, error) {
	query := `SELECT ` + shopOwnerColumns + ` FROM shop_owners WHERE id = ?`

	owner, err := scanShopOwner(r.db.QueryRowContext(ctx, query, shopOwnerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return owner, nil
}

func (r *MySQLShopOwnerRepository) UpdateSubscription(ctx context.Context, shopOwnerID int64, update domain.SubscriptionUpdate) (*domain.ShopOwner, error) {
	sets := []string{"subscription_status = ?"}
	args := []interface{}{string(update.Status)}

	if update.ProductLimit != nil {
		sets = append(sets, "product_limit = ?")
		args = append(args, *update.ProductLimit)
	}
	if update.ExpiresAt != nil {
		sets = append(sets, "subscription_expires_at = ?")
		args = append(args, *update.ExpiresAt)
	}
	args = append(args, shopOwnerID)

	query := fmt.Sprintf(`UPDATE shop_owners SET %s WHERE id = ?`, strings.Join(sets, ", "))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return nil, err
	}

	// Rows affected is 0 for unchanged values too, so existence is checked by reading back.
	return r.GetShopOwner(ctx, shopOwnerID)
}

func (r *MySQLShopOwnerRepository) ListExpiredSubscriptions(ctx context.Context, now time.Time) ([]*domain.ShopOwner, error) {
	query := `SELECT ` + shopOwnerColumns + `
        FROM shop_owners
        WHERE subscription_status IN ('active', 'trial')
          AND subscription_expires_at IS NOT NULL
          AND subscription_expires_at <= ?
        ORDER BY id ASC
    `

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owners []*domain.ShopOwner
	for rows.Next() {
		owner, err := scanShopOwner(rows)
		if err != nil {
			return nil, err
		}
		owners = append(owners, owner)
	}

	return owners, rows.Err()
}
