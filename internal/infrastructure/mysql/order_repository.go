package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storefront/internal/domain"
)

type MySQLOrderRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db, now: time.Now}
}

// CreateOrder inserts the order and its items in one transaction and fills in the
// generated ids and creation time.
func (r *MySQLOrderRepository) CreateOrder(ctx context.Context, order *domain.Order, items []*domain.OrderItem) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	order.CreatedAt = r.now().UTC().Truncate(time.Second)

	orderQuery := `
        INSERT INTO orders (customer_id, store_id, customer_name, customer_phone, customer_address,
                            delivery_method, notes, total, whatsapp_sent, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	result, err := tx.ExecContext(ctx, orderQuery,
		nullInt64(order.CustomerID), order.StoreID, order.CustomerName,
		nullString(order.CustomerPhone), nullString(order.CustomerAddress),
		string(order.DeliveryMethod), nullString(order.Notes), order.Total,
		order.WhatsappSent, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	order.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("order id: %w", err)
	}

	itemQuery := `
        INSERT INTO order_items (order_id, product_id, product_name, price, quantity)
        VALUES (?, ?, ?, ?, ?)
    `
	for _, item := range items {
		item.OrderID = order.ID
		result, err = tx.ExecContext(ctx, itemQuery,
			item.OrderID, nullInt64(item.ProductID), item.ProductName, item.Price, item.Quantity)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
		if item.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("order item id: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

func (r *MySQLOrderRepository) GetOrderItems(ctx context.Context, orderID int64) ([]*domain.OrderItem, error) {
	query := `
        SELECT id, order_id, product_id, product_name, price, quantity
        FROM order_items WHERE order_id = ?
        ORDER BY id ASC
    `

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		var productID sql.NullInt64

		err := rows.Scan(&item.ID, &item.OrderID, &productID,
			&item.ProductName, &item.Price, &item.Quantity)
		if err != nil {
			return nil, err
		}

		if productID.Valid {
			item.ProductID = &productID.Int64
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
