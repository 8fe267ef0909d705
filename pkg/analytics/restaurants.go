package analytics

import (
	"context"

	"github.com/marshallshelly/forkline/pkg/schema"
)

// UndeliveredCount is a restaurant's count of orders that never got a
// delivery record.
type UndeliveredCount struct {
	RestaurantName string
	City           string
	Undelivered    int64
}

// OrdersWithoutDelivery counts, per restaurant, the orders with no matching
// delivery row. Such orders are exactly the ones every delivered-only report
// excludes.
func (l *Library) OrdersWithoutDelivery(ctx context.Context) ([]UndeliveredCount, error) {
	if err := l.ensureData(ctx, schema.TableRestaurants, schema.TableOrders); err != nil {
		return nil, err
	}

	rows, err := l.db.Query(ctx, `
		SELECT r.restaurant_name, r.city, COUNT(o.order_id) AS undelivered
		FROM orders o
		JOIN restaurants r ON r.restaurant_id = o.restaurant_id
		LEFT JOIN deliveries d ON d.order_id = o.order_id
		WHERE d.delivery_id IS NULL
		GROUP BY r.restaurant_name, r.city
		ORDER BY undelivered DESC, r.restaurant_name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []UndeliveredCount{}
	for rows.Next() {
		var r UndeliveredCount
		if err := rows.Scan(&r.RestaurantName, &r.City, &r.Undelivered); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// RestaurantRevenue is a restaurant's revenue and its standing within its
// city.
type RestaurantRevenue struct {
	City           string
	RestaurantName string
	Revenue        float64
	Rank           int64
}

// RestaurantRevenueRank ranks restaurants by revenue over the last year,
// competition-ranked descending within each city (ties share a rank, the next
// distinct revenue skips ahead by the tie-group size).
func (l *Library) RestaurantRevenueRank(ctx context.Context) ([]RestaurantRevenue, error) {
	if err := l.ensureData(ctx, schema.TableRestaurants, schema.TableOrders); err != nil {
		return nil, err
	}

	rows, err := l.db.Query(ctx, `
		SELECT r.city, r.restaurant_name,
		       SUM(o.total_amount) AS revenue,
		       RANK() OVER (PARTITION BY r.city ORDER BY SUM(o.total_amount) DESC) AS rank
		FROM orders o
		JOIN restaurants r ON r.restaurant_id = o.restaurant_id
		WHERE o.order_date >= CURRENT_DATE - INTERVAL '1 year'
		GROUP BY r.city, r.restaurant_name
		ORDER BY r.city, rank`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []RestaurantRevenue{}
	for rows.Next() {
		var r RestaurantRevenue
		if err := rows.Scan(&r.City, &r.RestaurantName, &r.Revenue, &r.Rank); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// CityDish is the most ordered dish in one city.
type CityDish struct {
	City        string
	Dish        string
	TotalOrders int64
}

// PopularDishByCity returns each city's most ordered dish. Ties at the top
// all surface (competition rank 1).
func (l *Library) PopularDishByCity(ctx context.Context) ([]CityDish, error) {
	if err := l.ensureData(ctx, schema.TableRestaurants, schema.TableOrders); err != nil {
		return nil, err
	}

	rows, err := l.db.Query(ctx, `
		SELECT city, dish, total_orders FROM (
			SELECT r.city, o.order_item AS dish,
			       COUNT(*) AS total_orders,
			       RANK() OVER (PARTITION BY r.city ORDER BY COUNT(*) DESC) AS rank
			FROM orders o
			JOIN restaurants r ON r.restaurant_id = o.restaurant_id
			GROUP BY r.city, o.order_item
		) ranked
		WHERE rank = 1
		ORDER BY city, dish`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []CityDish{}
	for rows.Next() {
		var r CityDish
		if err := rows.Scan(&r.City, &r.Dish, &r.TotalOrders); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// CancellationRates compares a restaurant's not-delivered ratio between the
// two analysis years. Ratios are percentages; a year with no orders for the
// restaurant reads as zero.
type CancellationRates struct {
	RestaurantName string
	CurrentRatio   float64
	PriorRatio     float64
}

// CancellationRateComparison computes, per restaurant, the share of orders
// with no delivery row in ChurnTargetYear versus ChurnBaseYear.
func (l *Library) CancellationRateComparison(ctx context.Context) ([]CancellationRates, error) {
	if err := l.ensureData(ctx, schema.TableRestaurants, schema.TableOrders); err != nil {
		return nil, err
	}

	rows, err := l.db.Query(ctx, `
		WITH yearly AS (
			SELECT o.restaurant_id,
			       EXTRACT(YEAR FROM o.order_date)::int AS year,
			       COUNT(*) AS total_orders,
			       COUNT(*) FILTER (WHERE d.delivery_id IS NULL) AS undelivered
			FROM orders o
			LEFT JOIN deliveries d ON d.order_id = o.order_id
			WHERE EXTRACT(YEAR FROM o.order_date) IN ($1, $2)
			GROUP BY o.restaurant_id, EXTRACT(YEAR FROM o.order_date)
		)
		SELECT r.restaurant_name,
		       COALESCE(MAX(CASE WHEN y.year = $2 THEN ROUND(y.undelivered::numeric / y.total_orders * 100, 2) END), 0) AS current_ratio,
		       COALESCE(MAX(CASE WHEN y.year = $1 THEN ROUND(y.undelivered::numeric / y.total_orders * 100, 2) END), 0) AS prior_ratio
		FROM yearly y
		JOIN restaurants r ON r.restaurant_id = y.restaurant_id
		GROUP BY r.restaurant_name
		ORDER BY r.restaurant_name`,
		ChurnBaseYear, ChurnTargetYear,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []CancellationRates{}
	for rows.Next() {
		var r CancellationRates
		if err := rows.Scan(&r.RestaurantName, &r.CurrentRatio, &r.PriorRatio); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// MonthlyGrowth is one restaurant-month with its delivered-order count,
// the previous month's count, and the growth percentage. Growth is nil for a
// month whose predecessor delivered nothing (division by zero is undefined,
// not an error).
type MonthlyGrowth struct {
	RestaurantName string
	Month          string
	Orders         int64
	PrevOrders     int64
	GrowthPct      *float64
}

// RestaurantGrowthRatio compares each restaurant's delivered-order volume
// month over month. Months are calendar year-months ordered chronologically;
// the first month's predecessor defaults to zero.
func (l *Library) RestaurantGrowthRatio(ctx context.Context) ([]MonthlyGrowth, error) {
	if err := l.ensureData(ctx, schema.TableRestaurants, schema.TableOrders, schema.TableDeliveries); err != nil {
		return nil, err
	}

	rows, err := l.db.Query(ctx, `
		WITH monthly AS (
			SELECT o.restaurant_id,
			       TO_CHAR(o.order_date, 'YYYY-MM') AS month,
			       COUNT(*) AS orders
			FROM orders o
			JOIN deliveries d ON d.order_id = o.order_id
			WHERE d.delivery_status = 'Delivered'
			GROUP BY o.restaurant_id, TO_CHAR(o.order_date, 'YYYY-MM')
		), paired AS (
			SELECT restaurant_id, month, orders,
			       LAG(orders, 1, 0::bigint) OVER (PARTITION BY restaurant_id ORDER BY month) AS prev_orders
			FROM monthly
		)
		SELECT r.restaurant_name, p.month, p.orders, p.prev_orders,
		       ROUND((p.orders - p.prev_orders)::numeric / NULLIF(p.prev_orders, 0) * 100, 2) AS growth_pct
		FROM paired p
		JOIN restaurants r ON r.restaurant_id = p.restaurant_id
		ORDER BY r.restaurant_name, p.month`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []MonthlyGrowth{}
	for rows.Next() {
		var r MonthlyGrowth
		if err := rows.Scan(&r.RestaurantName, &r.Month, &r.Orders, &r.PrevOrders, &r.GrowthPct); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// PeakDay is the weekday on which a restaurant takes the most orders.
type PeakDay struct {
	RestaurantName string
	Day            string
	TotalOrders    int64
}

// PeakOrderDayByRestaurant returns, per restaurant, the weekday with the
// highest order count. Tied weekdays all surface (competition rank 1).
func (l *Library) PeakOrderDayByRestaurant(ctx context.Context) ([]PeakDay, error) {
	if err := l.ensureData(ctx, schema.TableRestaurants, schema.TableOrders); err != nil {
		return nil, err
	}

	rows, err := l.db.Query(ctx, `
		SELECT restaurant_name, day, total_orders FROM (
			SELECT r.restaurant_name,
			       TRIM(TO_CHAR(o.order_date, 'Day')) AS day,
			       COUNT(*) AS total_orders,
			       RANK() OVER (PARTITION BY r.restaurant_name ORDER BY COUNT(*) DESC) AS rank
			FROM orders o
			JOIN restaurants r ON r.restaurant_id = o.restaurant_id
			GROUP BY r.restaurant_name, TRIM(TO_CHAR(o.order_date, 'Day'))
		) ranked
		WHERE rank = 1
		ORDER BY restaurant_name, day`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []PeakDay{}
	for rows.Next() {
		var r PeakDay
		if err := rows.Scan(&r.RestaurantName, &r.Day, &r.TotalOrders); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
