// Package store loads raw records into the schema and applies the one
// cleaning rule the dataset needs before analysis.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/marshallshelly/forkline/pkg/model"
	"github.com/marshallshelly/forkline/pkg/runtime"
	"github.com/marshallshelly/forkline/pkg/schema"
)

// Store writes records into the five tables. Inserts must happen in
// referential order: customers, restaurants and riders before orders, orders
// before deliveries.
type Store struct {
	db *runtime.DB
}

// New creates a Store backed by the given connection.
func New(db *runtime.DB) *Store {
	return &Store{db: db}
}

// InsertCustomers bulk-inserts customer records in one transaction.
func (s *Store) InsertCustomers(ctx context.Context, customers []model.Customer) error {
	batch := &pgx.Batch{}
	for _, c := range customers {
		batch.Queue(
			`INSERT INTO customers (customer_id, customer_name, reg_date) VALUES ($1, $2, $3)`,
			c.CustomerID, c.CustomerName, c.RegDate,
		)
	}
	batch.Queue(realignSQL(schema.TableCustomers, "customer_id"))
	return s.sendBatch(ctx, batch)
}

// InsertRestaurants bulk-inserts restaurant records in one transaction.
func (s *Store) InsertRestaurants(ctx context.Context, restaurants []model.Restaurant) error {
	batch := &pgx.Batch{}
	for _, r := range restaurants {
		batch.Queue(
			`INSERT INTO restaurants (restaurant_id, restaurant_name, city, opening_hours) VALUES ($1, $2, $3, $4)`,
			r.RestaurantID, r.RestaurantName, r.City, r.OpeningHours,
		)
	}
	batch.Queue(realignSQL(schema.TableRestaurants, "restaurant_id"))
	return s.sendBatch(ctx, batch)
}

// InsertRiders bulk-inserts rider records in one transaction.
func (s *Store) InsertRiders(ctx context.Context, riders []model.Rider) error {
	batch := &pgx.Batch{}
	for _, r := range riders {
		batch.Queue(
			`INSERT INTO riders (rider_id, rider_name, sign_up) VALUES ($1, $2, $3)`,
			r.RiderID, r.RiderName, r.SignUp,
		)
	}
	batch.Queue(realignSQL(schema.TableRiders, "rider_id"))
	return s.sendBatch(ctx, batch)
}

// InsertOrders bulk-inserts order records in one transaction. A record
// referencing an unknown customer or restaurant fails the whole batch with a
// ReferentialViolation; a record missing a required field fails it with a
// ConstraintViolation.
func (s *Store) InsertOrders(ctx context.Context, orders []model.Order) error {
	batch := &pgx.Batch{}
	for _, o := range orders {
		status := o.OrderStatus
		if status == "" {
			status = model.StatusPending
		}
		batch.Queue(
			`INSERT INTO orders (order_id, customer_id, restaurant_id, order_item, order_date, order_time, order_status, total_amount)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			o.OrderID, o.CustomerID, o.RestaurantID, o.OrderItem, o.OrderDate, o.OrderTime, status, o.TotalAmount,
		)
	}
	batch.Queue(realignSQL(schema.TableOrders, "order_id"))
	return s.sendBatch(ctx, batch)
}

// InsertDeliveries bulk-inserts delivery records in one transaction.
func (s *Store) InsertDeliveries(ctx context.Context, deliveries []model.Delivery) error {
	batch := &pgx.Batch{}
	for _, d := range deliveries {
		status := d.DeliveryStatus
		if status == "" {
			status = model.StatusPending
		}
		batch.Queue(
			`INSERT INTO deliveries (delivery_id, order_id, delivery_status, delivery_time, rider_id)
			 VALUES ($1, $2, $3, $4, $5)`,
			d.DeliveryID, d.OrderID, status, d.DeliveryTime, d.RiderID,
		)
	}
	batch.Queue(realignSQL(schema.TableDeliveries, "delivery_id"))
	return s.sendBatch(ctx, batch)
}

// NormalizeAmounts rewrites NULL order amounts to zero so that downstream
// aggregation never sees a NULL. It touches no other field and is idempotent;
// rerunning it matches zero rows. Returns the number of rows rewritten.
func (s *Store) NormalizeAmounts(ctx context.Context) (int64, error) {
	return s.db.Exec(ctx, `UPDATE orders SET total_amount = 0 WHERE total_amount IS NULL`)
}

// Counts returns the row count of every table, keyed by table name.
func (s *Store) Counts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(schema.Tables))
	for _, table := range schema.Tables {
		var n int64
		if err := s.db.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// realignSQL moves a table's serial sequence past the highest explicitly
// loaded id, so inserts after a bulk load do not collide.
func realignSQL(table, idColumn string) string {
	return fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence('%s', '%s'), COALESCE(MAX(%s), 0) + 1, false) FROM %s",
		table, idColumn, idColumn, table,
	)
}

func (s *Store) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return runtime.MapPgError(err)
		}
	}
	if err := results.Close(); err != nil {
		return runtime.MapPgError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
