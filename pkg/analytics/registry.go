package analytics

import (
	"context"
	"fmt"
	"strconv"
)

// Table is a rendered report: a fixed header and stringified rows, ready for
// terminal or JSON output.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Report describes one registered report: a stable name for the CLI, a
// one-line description for listings, and a runner producing a Table.
type Report struct {
	Name        string
	Description string
	Run         func(ctx context.Context, l *Library) (Table, error)
}

// Reports lists every report in presentation order. Names are stable CLI
// identifiers.
var Reports = []Report{
	{
		Name:        "top-dishes",
		Description: fmt.Sprintf("Top %d dishes ordered by %s in the last year", TopDishCount, NominalCustomer),
		Run: func(ctx context.Context, l *Library) (Table, error) {
			rows, err := l.TopDishesForCustomer(ctx, NominalCustomer, TopDishCount)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"Dish", "Orders", "Rank"}}
			for _, r := range rows {
				t.Rows = append(t.Rows, []string{r.Dish, itoa(r.Orders), itoa(r.Rank)})
			}
			return t, nil
		},
	},
	{
		Name:        "time-slots",
		Description: "Order volume per 2-hour slot of the day",
		Run: func(ctx context.Context, l *Library) (Table, error) {
			rows, err := l.PopularTimeSlots(ctx)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"Slot", "Orders"}}
			for _, r := range rows {
				t.Rows = append(t.Rows, []string{r.Slot, itoa(r.TotalOrders)})
			}
			return t, nil
		},
	},
	{
		Name:        "frequent-customer-aov",
		Description: fmt.Sprintf("Average order value of customers with more than %d orders", HighFrequencyOrderThreshold),
		Run: func(ctx context.Context, l *Library) (Table, error) {
			rows, err := l.HighFrequencyCustomerAOV(ctx)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"Customer", "Orders", "AOV"}}
			for _, r := range rows {
				t.Rows = append(t.Rows, []string{r.CustomerName, itoa(r.TotalOrders), money(r.AOV)})
			}
			return t, nil
		},
	},
	{
		Name:        "high-value-customers",
		Description: fmt.Sprintf("Customers with lifetime spend above %d", HighValueSpendThreshold),
		Run: func(ctx context.Context, l *Library) (Table, error) {
			rows, err := l.HighValueCustomers(ctx)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"ID", "Customer", "Total Spent"}}
			for _, r := range rows {
				t.Rows = append(t.Rows, []string{strconv.Itoa(r.CustomerID), r.CustomerName, money(r.TotalSpent)})
			}
			return t, nil
		},
	},
	{
		Name:        "undelivered-orders",
		Description: "Orders that never got a delivery record, per restaurant",
		Run: func(ctx context.Context, l *Library) (Table, error) {
			rows, err := l.OrdersWithoutDelivery(ctx)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"Restaurant", "City", "Undelivered"}}
			for _, r := range rows {
				t.Rows = append(t.Rows, []string{r.RestaurantName, r.City, itoa(r.Undelivered)})
			}
			return t, nil
		},
	},
	{
		Name:        "restaurant-revenue",
		Description: "Restaurants ranked by last-year revenue within their city",
		Run: func(ctx context.Context, l *Library) (Table, error) {
			rows, err := l.RestaurantRevenueRank(ctx)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"City", "Restaurant", "Revenue", "Rank"}}
			for _, r := range rows {
				t.Rows = append(t.Rows, []string{r.City, r.RestaurantName, money(r.Revenue), itoa(r.Rank)})
			}
			return t, nil
		},
	},
	{
		Name:        "popular-dish-by-city",
		Description: "Most ordered dish in each city",
		Run: func(ctx context.Context, l *Library) (Table, error) {
			rows, err := l.PopularDishByCity(ctx)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"City", "Dish", "Orders"}}
			for _, r := range rows {
				t.Rows = append(t.Rows, []string{r.City, r.Dish, itoa(r.TotalOrders)})
			}
			return t, nil
		},
	},
	{
		Name:        "churned-customers",
		Description: fmt.Sprintf("Customers active in %d with no orders in %d", ChurnBaseYear, ChurnTargetYear),
		Run: func(ctx context.Context, l *Library) (Table, error) {
			rows, err := l.ChurnedCustomers(ctx)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"ID", "Customer"}}
			for _, r := range rows {
				t.Rows = append(t.Rows, []string{strconv.Itoa(r.CustomerID), r.CustomerName})
			}
			return t, nil
		},
	},
	{
		Name:        "cancellation-rates",
		Description: fmt.Sprintf("Undelivered-order ratio per restaurant, %d vs %d", ChurnTargetYear, ChurnBaseYear),
		Run: func(ctx context.Context, l *Library) (Table, error) {
			rows, err := l.CancellationRateComparison(ctx)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"Restaurant", fmt.Sprintf("%d %%", ChurnTargetYear), fmt.Sprintf("%d %%", ChurnBaseYear)}}
			for _, r := range rows {
				t.Rows = append(t.Rows, []string{r.RestaurantName, money(r.CurrentRatio), money(r.PriorRatio)})
			}
			return t, nil
		},
	},
	{
		Name:        "rider-delivery-time",
		Description: "Average delivery minutes per rider over delivered orders",
		Run: func(ctx context.Context, l *Library) (Table, error) {
			rows, err := l.RiderAverageDeliveryTime(ctx)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"Rider", "Avg Minutes"}}
			for _, r := range rows {
				t.Rows = append(t.Rows, []string{r.RiderName, money(r.AvgMinutes)})
			}
			return t, nil
		},
	},
	{
		Name:        "restaurant-growth",
		Description: "Month-over-month delivered-order growth per restaurant",
		Run: func(ctx context.Context, l *Library) (Table, error) {
			rows, err := l.RestaurantGrowthRatio(ctx)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"Restaurant", "Month", "Orders", "Prev", "Growth %"}}
			for _, r := range rows {
				t.Rows = append(t.Rows, []string{r.RestaurantName, r.Month, itoa(r.Orders), itoa(r.PrevOrders), pct(r.GrowthPct)})
			}
			return t, nil
		},
	},
	{
		Name:        "customer-segments",
		Description: "Gold/Silver segment revenue and order totals",
		Run: func(ctx context.Context, l *Library) (Table, error) {
			rows, err := l.SegmentRevenue(ctx)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"Segment", "Revenue", "Orders"}}
			for _, r := range rows {
				t.Rows = append(t.Rows, []string{r.Segment, money(r.TotalRevenue), itoa(r.TotalOrders)})
			}
			return t, nil
		},
	},
	{
		Name:        "rider-earnings",
		Description: fmt.Sprintf("Monthly rider earnings at a flat %.0f%% commission", RiderCommission*100),
		Run: func(ctx context.Context, l *Library) (Table, error) {
			rows, err := l.RiderMonthlyEarnings(ctx)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"Rider", "Month", "Earnings"}}
			for _, r := range rows {
				t.Rows = append(t.Rows, []string{r.RiderName, r.Month, money(r.Earnings)})
			}
			return t, nil
		},
	},
	{
		Name:        "rider-ratings",
		Description: "Delivered orders per rider bucketed into star ratings",
		Run: func(ctx context.Context, l *Library) (Table, error) {
			rows, err := l.RiderRatings(ctx)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"Rider", "Rating", "Deliveries"}}
			for _, r := range rows {
				t.Rows = append(t.Rows, []string{r.RiderName, r.Rating, itoa(r.Total)})
			}
			return t, nil
		},
	},
	{
		Name:        "peak-order-day",
		Description: "Busiest weekday per restaurant",
		Run: func(ctx context.Context, l *Library) (Table, error) {
			rows, err := l.PeakOrderDayByRestaurant(ctx)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"Restaurant", "Day", "Orders"}}
			for _, r := range rows {
				t.Rows = append(t.Rows, []string{r.RestaurantName, r.Day, itoa(r.TotalOrders)})
			}
			return t, nil
		},
	},
	{
		Name:        "customer-lifetime-value",
		Description: "Total lifetime spend per customer",
		Run: func(ctx context.Context, l *Library) (Table, error) {
			rows, err := l.CustomerLifetimeValue(ctx)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"ID", "Customer", "CLV"}}
			for _, r := range rows {
				t.Rows = append(t.Rows, []string{strconv.Itoa(r.CustomerID), r.CustomerName, money(r.CLV)})
			}
			return t, nil
		},
	},
	{
		Name:        "monthly-sales",
		Description: "Platform revenue per month versus the month before",
		Run: func(ctx context.Context, l *Library) (Table, error) {
			rows, err := l.MonthlySalesTrend(ctx)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"Month", "Revenue", "Prev", "Growth %"}}
			for _, r := range rows {
				t.Rows = append(t.Rows, []string{r.Month, money(r.Revenue), money(r.PrevRevenue), pct(r.GrowthPct)})
			}
			return t, nil
		},
	},
	{
		Name:        "rider-efficiency",
		Description: "Riders holding the fastest and slowest average delivery times",
		Run: func(ctx context.Context, l *Library) (Table, error) {
			rows, err := l.RiderEfficiency(ctx)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"Rider", "Min", "Avg", "Max", "Marker"}}
			for _, r := range rows {
				t.Rows = append(t.Rows, []string{r.RiderName, money(r.MinMinutes), money(r.AvgMinutes), money(r.MaxMinutes), r.Marker})
			}
			return t, nil
		},
	},
	{
		Name:        "seasonal-dishes",
		Description: "Order counts per dish per season",
		Run: func(ctx context.Context, l *Library) (Table, error) {
			rows, err := l.SeasonalDishPopularity(ctx)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"Dish", "Season", "Orders"}}
			for _, r := range rows {
				t.Rows = append(t.Rows, []string{r.Dish, r.Season, itoa(r.TotalOrders)})
			}
			return t, nil
		},
	},
	{
		Name:        "city-revenue",
		Description: "Cities ranked by total revenue",
		Run: func(ctx context.Context, l *Library) (Table, error) {
			rows, err := l.CityRevenueRank(ctx)
			if err != nil {
				return Table{}, err
			}
			t := Table{Columns: []string{"City", "Revenue", "Rank"}}
			for _, r := range rows {
				t.Rows = append(t.Rows, []string{r.City, money(r.TotalRevenue), itoa(r.Rank)})
			}
			return t, nil
		},
	},
}

// Lookup finds a report by its registry name.
func Lookup(name string) (Report, bool) {
	for _, r := range Reports {
		if r.Name == name {
			return r, true
		}
	}
	return Report{}, false
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func money(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// pct renders a nullable growth percentage; a nil value means the prior
// period was zero and the ratio is undefined.
func pct(v *float64) string {
	if v == nil {
		return "-"
	}
	return money(*v)
}
