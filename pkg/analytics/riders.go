package analytics

import (
	"context"

	"github.com/marshallshelly/forkline/pkg/schema"
)

// RiderAvgTime is a rider's average delivery duration in minutes.
type RiderAvgTime struct {
	RiderName  string
	AvgMinutes float64
}

// RiderAverageDeliveryTime averages each rider's delivery duration over
// delivered orders only, fastest first. Undelivered and pending orders are
// excluded entirely, never counted as zero.
func (l *Library) RiderAverageDeliveryTime(ctx context.Context) ([]RiderAvgTime, error) {
	if err := l.ensureData(ctx, schema.TableRiders, schema.TableOrders, schema.TableDeliveries); err != nil {
		return nil, err
	}

	rows, err := l.db.Query(ctx, `
		SELECT rd.rider_name,
		       ROUND(AVG(`+elapsedMinutesSQL+`)::numeric, 2) AS avg_minutes
		FROM orders o
		JOIN deliveries d ON d.order_id = o.order_id
		JOIN riders rd ON rd.rider_id = d.rider_id
		WHERE d.delivery_status = 'Delivered'
		GROUP BY rd.rider_name
		ORDER BY avg_minutes, rd.rider_name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []RiderAvgTime{}
	for rows.Next() {
		var r RiderAvgTime
		if err := rows.Scan(&r.RiderName, &r.AvgMinutes); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// RiderEarnings is a rider's commission for one month.
type RiderEarnings struct {
	RiderName string
	Month     string
	Earnings  float64
}

// RiderMonthlyEarnings pays each rider a flat RiderCommission share of the
// total amount of the orders they delivered, grouped by calendar month.
func (l *Library) RiderMonthlyEarnings(ctx context.Context) ([]RiderEarnings, error) {
	if err := l.ensureData(ctx, schema.TableRiders, schema.TableOrders, schema.TableDeliveries); err != nil {
		return nil, err
	}

	rows, err := l.db.Query(ctx, `
		SELECT rd.rider_name,
		       TO_CHAR(o.order_date, 'YYYY-MM') AS month,
		       ROUND((SUM(o.total_amount) * $1)::numeric, 2) AS earnings
		FROM orders o
		JOIN deliveries d ON d.order_id = o.order_id
		JOIN riders rd ON rd.rider_id = d.rider_id
		WHERE d.delivery_status = 'Delivered'
		GROUP BY rd.rider_name, TO_CHAR(o.order_date, 'YYYY-MM')
		ORDER BY rd.rider_name, month`,
		RiderCommission,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []RiderEarnings{}
	for rows.Next() {
		var r RiderEarnings
		if err := rows.Scan(&r.RiderName, &r.Month, &r.Earnings); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// RiderRating counts one rider's deliveries in one star bucket.
type RiderRating struct {
	RiderName string
	Rating    string
	Total     int64
}

// RiderRatings buckets delivered orders by duration into star ratings: under
// 15 minutes five-star, 15 to 20 inclusive four-star, over 20 three-star.
// The CASE boundaries mirror the Rating function.
func (l *Library) RiderRatings(ctx context.Context) ([]RiderRating, error) {
	if err := l.ensureData(ctx, schema.TableRiders, schema.TableOrders, schema.TableDeliveries); err != nil {
		return nil, err
	}

	rows, err := l.db.Query(ctx, `
		WITH delivered AS (
			SELECT d.rider_id, `+elapsedMinutesSQL+` AS minutes
			FROM orders o
			JOIN deliveries d ON d.order_id = o.order_id
			WHERE d.delivery_status = 'Delivered'
		)
		SELECT rd.rider_name,
		       CASE WHEN dv.minutes < 15 THEN '5 star'
		            WHEN dv.minutes <= 20 THEN '4 star'
		            ELSE '3 star' END AS rating,
		       COUNT(*) AS total
		FROM delivered dv
		JOIN riders rd ON rd.rider_id = dv.rider_id
		GROUP BY rd.rider_name, rating
		ORDER BY rd.rider_name, rating DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []RiderRating{}
	for rows.Next() {
		var r RiderRating
		if err := rows.Scan(&r.RiderName, &r.Rating, &r.Total); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// RiderExtreme marks a rider holding the fastest or slowest average delivery
// time across the fleet, with the spread of their delivered orders.
type RiderExtreme struct {
	RiderName  string
	MinMinutes float64
	AvgMinutes float64
	MaxMinutes float64
	Marker     string
}

// RiderEfficiency surfaces the fleet's extremes: every rider whose average
// delivery time over delivered orders equals the fastest or the slowest
// average, alongside their fastest and slowest single delivery.
func (l *Library) RiderEfficiency(ctx context.Context) ([]RiderExtreme, error) {
	if err := l.ensureData(ctx, schema.TableRiders, schema.TableOrders, schema.TableDeliveries); err != nil {
		return nil, err
	}

	rows, err := l.db.Query(ctx, `
		WITH per_rider AS (
			SELECT d.rider_id,
			       MIN(`+elapsedMinutesSQL+`) AS min_minutes,
			       AVG(`+elapsedMinutesSQL+`) AS avg_minutes,
			       MAX(`+elapsedMinutesSQL+`) AS max_minutes
			FROM orders o
			JOIN deliveries d ON d.order_id = o.order_id
			WHERE d.delivery_status = 'Delivered'
			GROUP BY d.rider_id
		), extremes AS (
			SELECT MIN(avg_minutes) AS fastest, MAX(avg_minutes) AS slowest FROM per_rider
		)
		SELECT rd.rider_name,
		       ROUND(p.min_minutes::numeric, 2) AS min_minutes,
		       ROUND(p.avg_minutes::numeric, 2) AS avg_minutes,
		       ROUND(p.max_minutes::numeric, 2) AS max_minutes,
		       CASE WHEN p.avg_minutes = e.fastest THEN 'fastest' ELSE 'slowest' END AS marker
		FROM per_rider p
		CROSS JOIN extremes e
		JOIN riders rd ON rd.rider_id = p.rider_id
		WHERE p.avg_minutes IN (e.fastest, e.slowest)
		ORDER BY p.avg_minutes, rd.rider_name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []RiderExtreme{}
	for rows.Next() {
		var r RiderExtreme
		if err := rows.Scan(&r.RiderName, &r.MinMinutes, &r.AvgMinutes, &r.MaxMinutes, &r.Marker); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
