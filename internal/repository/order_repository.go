package repository

import (
	"context"
	"fmt"

	"ecobazaar/internal/database"
	"ecobazaar/internal/models"
)

type OrderRepository struct {
	db database.DB
}

func NewOrderRepository(db database.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create stores the order and its items in one transaction.
func (r *OrderRepository) Create(ctx context.Context, order models.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insertOrder = `
		INSERT INTO orders (id, user_email, total_amount, total_co2_saved, order_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.Exec(ctx, insertOrder,
		order.ID,
		order.UserEmail,
		order.TotalAmount,
		order.TotalCO2Saved,
		order.OrderDate,
		order.Status,
	); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	const insertItem = `
		INSERT INTO order_items (order_id, product_id, product_name, price, co2_emission_kg)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, item := range order.Items {
		if _, err := tx.Exec(ctx, insertItem,
			order.ID,
			item.ProductID,
			item.ProductName,
			item.Price,
			item.CO2Emission,
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// ListByUserEmail returns the user's orders, newest first, with items.
func (r *OrderRepository) ListByUserEmail(ctx context.Context, email string) ([]models.Order, error) {
	const ordersQuery = `
		SELECT id, user_email, total_amount, total_co2_saved, order_date, status
		FROM orders
		WHERE user_email = $1
		ORDER BY order_date DESC
	`

	rows, err := r.db.Query(ctx, ordersQuery, email)
	if err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0)
	index := make(map[string]int)
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.UserEmail, &o.TotalAmount, &o.TotalCO2Saved, &o.OrderDate, &o.Status); err != nil {
			rows.Close()
			return nil, err
		}
		o.Items = make([]models.OrderItem, 0)
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	const itemsQuery = `
		SELECT order_id, product_id, product_name, price, co2_emission_kg
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id
	`
	itemRows, err := r.db.Query(ctx, itemsQuery, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID string
		var item models.OrderItem
		if err := itemRows.Scan(&orderID, &item.ProductID, &item.ProductName, &item.Price, &item.CO2Emission); err != nil {
			return nil, err
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return orders, itemRows.Err()
}
