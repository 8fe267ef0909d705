package analytics

import (
	"context"

	"github.com/marshallshelly/forkline/pkg/schema"
)

// SlotCount is an order count for one 2-hour slot of the day.
type SlotCount struct {
	Slot        string
	StartHour   int
	TotalOrders int64
}

// PopularTimeSlots counts orders per fixed 2-hour slot aligned to midnight,
// busiest first. Slot labels come from TimeSlot so the boundaries stay
// identical to the tested mapping.
func (l *Library) PopularTimeSlots(ctx context.Context) ([]SlotCount, error) {
	if err := l.ensureData(ctx, schema.TableOrders); err != nil {
		return nil, err
	}

	rows, err := l.db.Query(ctx, `
		SELECT (FLOOR(EXTRACT(HOUR FROM order_time) / 2) * 2)::int AS start_hour,
		       COUNT(*) AS total_orders
		FROM orders
		GROUP BY start_hour
		ORDER BY total_orders DESC, start_hour`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []SlotCount{}
	for rows.Next() {
		var r SlotCount
		if err := rows.Scan(&r.StartHour, &r.TotalOrders); err != nil {
			return nil, err
		}
		r.Slot = TimeSlot(r.StartHour)
		result = append(result, r)
	}
	return result, rows.Err()
}

// MonthlySales is platform revenue for one calendar month alongside the
// previous month's revenue. Growth is nil for a month whose predecessor took
// no revenue.
type MonthlySales struct {
	Month       string
	Revenue     float64
	PrevRevenue float64
	GrowthPct   *float64
}

// MonthlySalesTrend totals platform revenue per year-month chronologically
// and compares each month to the one immediately before it. The first month
// lags against a default of zero.
func (l *Library) MonthlySalesTrend(ctx context.Context) ([]MonthlySales, error) {
	if err := l.ensureData(ctx, schema.TableOrders); err != nil {
		return nil, err
	}

	rows, err := l.db.Query(ctx, `
		WITH monthly AS (
			SELECT TO_CHAR(order_date, 'YYYY-MM') AS month,
			       SUM(total_amount) AS revenue
			FROM orders
			GROUP BY TO_CHAR(order_date, 'YYYY-MM')
		), paired AS (
			SELECT month, revenue,
			       LAG(revenue, 1, 0::numeric) OVER (ORDER BY month) AS prev_revenue
			FROM monthly
		)
		SELECT month, revenue, prev_revenue,
		       ROUND((revenue - prev_revenue) / NULLIF(prev_revenue, 0) * 100, 2) AS growth_pct
		FROM paired
		ORDER BY month`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []MonthlySales{}
	for rows.Next() {
		var r MonthlySales
		if err := rows.Scan(&r.Month, &r.Revenue, &r.PrevRevenue, &r.GrowthPct); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// SeasonalDish is an order count for one dish in one season.
type SeasonalDish struct {
	Dish        string
	Season      string
	TotalOrders int64
}

// SeasonalDishPopularity counts orders per dish per season using the fixed
// Northern-Hemisphere month mapping. The CASE boundaries mirror the Season
// function.
func (l *Library) SeasonalDishPopularity(ctx context.Context) ([]SeasonalDish, error) {
	if err := l.ensureData(ctx, schema.TableOrders); err != nil {
		return nil, err
	}

	rows, err := l.db.Query(ctx, `
		SELECT order_item AS dish,
		       CASE WHEN EXTRACT(MONTH FROM order_date) BETWEEN 3 AND 5 THEN 'Spring'
		            WHEN EXTRACT(MONTH FROM order_date) BETWEEN 6 AND 8 THEN 'Summer'
		            WHEN EXTRACT(MONTH FROM order_date) BETWEEN 9 AND 11 THEN 'Autumn'
		            ELSE 'Winter' END AS season,
		       COUNT(*) AS total_orders
		FROM orders
		GROUP BY order_item, season
		ORDER BY dish, total_orders DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []SeasonalDish{}
	for rows.Next() {
		var r SeasonalDish
		if err := rows.Scan(&r.Dish, &r.Season, &r.TotalOrders); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// CityRevenue is one city's total revenue and rank across all cities.
type CityRevenue struct {
	City         string
	TotalRevenue float64
	Rank         int64
}

// CityRevenueRank ranks cities by total order revenue, dense-ranked
// descending so the assigned ranks are gap-free over distinct revenues.
func (l *Library) CityRevenueRank(ctx context.Context) ([]CityRevenue, error) {
	if err := l.ensureData(ctx, schema.TableRestaurants, schema.TableOrders); err != nil {
		return nil, err
	}

	rows, err := l.db.Query(ctx, `
		SELECT r.city,
		       SUM(o.total_amount) AS total_revenue,
		       DENSE_RANK() OVER (ORDER BY SUM(o.total_amount) DESC) AS rank
		FROM orders o
		JOIN restaurants r ON r.restaurant_id = o.restaurant_id
		GROUP BY r.city
		ORDER BY rank, r.city`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []CityRevenue{}
	for rows.Next() {
		var r CityRevenue
		if err := rows.Scan(&r.City, &r.TotalRevenue, &r.Rank); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
