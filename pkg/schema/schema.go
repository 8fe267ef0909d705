// Package schema defines the five relations of the food-delivery dataset and
// creates or drops them in dependency order.
package schema

import (
	"context"
	"fmt"

	"github.com/marshallshelly/forkline/pkg/runtime"
)

// Table names, in load order: parents before orders, orders before deliveries.
const (
	TableCustomers   = "customers"
	TableRestaurants = "restaurants"
	TableRiders      = "riders"
	TableOrders      = "orders"
	TableDeliveries  = "deliveries"
)

// Tables lists every relation in referential (creation and load) order.
var Tables = []string{
	TableCustomers,
	TableRestaurants,
	TableRiders,
	TableOrders,
	TableDeliveries,
}

// createStatements holds the DDL in creation order. Orders references
// customers and restaurants; deliveries references orders and riders.
var createStatements = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		customer_id SERIAL PRIMARY KEY,
		customer_name VARCHAR(100) NOT NULL,
		reg_date DATE
	)`,
	`CREATE TABLE IF NOT EXISTS restaurants (
		restaurant_id SERIAL PRIMARY KEY,
		restaurant_name VARCHAR(100) NOT NULL,
		city VARCHAR(50),
		opening_hours VARCHAR(50)
	)`,
	`CREATE TABLE IF NOT EXISTS riders (
		rider_id SERIAL PRIMARY KEY,
		rider_name VARCHAR(100) NOT NULL,
		sign_up DATE
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		order_id SERIAL PRIMARY KEY,
		customer_id INTEGER NOT NULL REFERENCES customers(customer_id),
		restaurant_id INTEGER NOT NULL REFERENCES restaurants(restaurant_id),
		order_item VARCHAR(255) NOT NULL,
		order_date DATE NOT NULL,
		order_time TIME NOT NULL,
		order_status VARCHAR(55) DEFAULT 'Pending',
		total_amount NUMERIC(10,2) CHECK (total_amount >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS deliveries (
		delivery_id SERIAL PRIMARY KEY,
		order_id INTEGER NOT NULL REFERENCES orders(order_id),
		delivery_status VARCHAR(35) DEFAULT 'Pending',
		delivery_time TIME,
		rider_id INTEGER REFERENCES riders(rider_id)
	)`,
}

// Create creates all five tables. IF NOT EXISTS makes it idempotent against
// an already-created schema; it does not reconcile divergent definitions.
func Create(ctx context.Context, db *runtime.DB) error {
	if db == nil {
		return runtime.ErrNoConnection
	}
	for _, stmt := range createStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Drop removes all five tables in reverse dependency order so that no drop
// ever violates a foreign key.
func Drop(ctx context.Context, db *runtime.DB) error {
	if db == nil {
		return runtime.ErrNoConnection
	}
	for i := len(Tables) - 1; i >= 0; i-- {
		stmt := fmt.Sprintf("DROP TABLE IF EXISTS %s", Tables[i])
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to drop %s: %w", Tables[i], err)
		}
	}
	return nil
}
