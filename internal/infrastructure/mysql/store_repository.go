package mysql

import (
	"context"
	"database/sql"
	"errors"

	"storefront/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLStoreRepository struct {
	db *sql.DB
}

func NewMySQLStoreRepository(db *sql.DB) *MySQLStoreRepository {
	return &MySQLStoreRepository{db: db}
}

func (r *MySQLStoreRepository) GetStore(ctx context.Context, storeID int64) (*domain.Store, error) {
	query := `
        SELECT id, name, slug, whatsapp_number, active, created_at, updated_at
        FROM stores WHERE id = ?
    `

	var store domain.Store
	var slug sql.NullString

	err := r.db.QueryRowContext(ctx, query, storeID).Scan(
		&store.ID, &store.Name, &slug, &store.WhatsappNumber,
		&store.Active, &store.CreatedAt, &store.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	store.Slug = slug.String
	return &store, nil
}

type MySQLProductRepository struct {
	db *sql.DB
}

func NewMySQLProductRepository(db *sql.DB) *MySQLProductRepository {
	return &MySQLProductRepository{db: db}
}

func (r *MySQLProductRepository) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	query := `SELECT id, store_id, name, price, active FROM products WHERE id = ?`

	var product domain.Product
	err := r.db.QueryRowContext(ctx, query, productID).Scan(
		&product.ID, &product.StoreID, &product.Name, &product.Price, &product.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &product, nil
}
