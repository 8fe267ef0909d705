//go:build integration
// +build integration

package forkline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/marshallshelly/forkline/pkg/analytics"
	"github.com/marshallshelly/forkline/pkg/model"
	"github.com/marshallshelly/forkline/pkg/runtime"
	"github.com/marshallshelly/forkline/pkg/schema"
	"github.com/marshallshelly/forkline/pkg/store"
)

// setupTestDB creates a PostgreSQL container and returns connection details
func setupTestDB(t *testing.T) (string, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return connStr, cleanup
}

// loadFixture loads the reference dataset used by the report assertions:
// Arjun Mehta with Pasta x6, Pizza x4, Salad x1 inside the last year, a
// churned customer, a midnight-crossing delivery and an order that never got
// a delivery row.
func loadFixture(t *testing.T, st *store.Store) {
	ctx := context.Background()

	customers := []model.Customer{
		{CustomerID: 1, CustomerName: "Arjun Mehta", RegDate: date(2023, 1, 15)},
		{CustomerID: 2, CustomerName: "Nina Rao", RegDate: date(2023, 3, 2)},
		{CustomerID: 3, CustomerName: "Vikram Shah", RegDate: date(2024, 6, 20)},
	}
	if err := st.InsertCustomers(ctx, customers); err != nil {
		t.Fatalf("Failed to insert customers: %v", err)
	}

	restaurants := []model.Restaurant{
		{RestaurantID: 1, RestaurantName: "Spice Route", City: "Mumbai", OpeningHours: "10:00 - 23:00"},
		{RestaurantID: 2, RestaurantName: "Urban Tadka", City: "Mumbai", OpeningHours: "11:00 - 22:00"},
		{RestaurantID: 3, RestaurantName: "Coastal Curry", City: "Chennai", OpeningHours: "09:00 - 21:00"},
	}
	if err := st.InsertRestaurants(ctx, restaurants); err != nil {
		t.Fatalf("Failed to insert restaurants: %v", err)
	}

	riders := []model.Rider{
		{RiderID: 1, RiderName: "Ravi Verma", SignUp: date(2023, 2, 1)},
		{RiderID: 2, RiderName: "Sana Iqbal", SignUp: date(2023, 9, 12)},
	}
	if err := st.InsertRiders(ctx, riders); err != nil {
		t.Fatalf("Failed to insert riders: %v", err)
	}

	now := time.Now()
	orders := []model.Order{
		// Arjun's recent window: the first three carry the delivery fixture
		// times, the rest spread over past weeks.
		{OrderID: 1, CustomerID: 1, RestaurantID: 1, OrderItem: "Pasta", OrderDate: now.AddDate(0, 0, -7), OrderTime: "23:50:00", OrderStatus: model.StatusCompleted, TotalAmount: model.Amount(320)},
		{OrderID: 2, CustomerID: 1, RestaurantID: 1, OrderItem: "Pasta", OrderDate: now.AddDate(0, 0, -14), OrderTime: "12:00:00", OrderStatus: model.StatusCompleted, TotalAmount: model.Amount(310)},
		{OrderID: 3, CustomerID: 1, RestaurantID: 2, OrderItem: "Pasta", OrderDate: now.AddDate(0, 0, -21), OrderTime: "19:05:00", OrderStatus: model.StatusCompleted, TotalAmount: model.Amount(290)},
		{OrderID: 4, CustomerID: 1, RestaurantID: 1, OrderItem: "Pasta", OrderDate: now.AddDate(0, 0, -28), OrderTime: "13:15:00", OrderStatus: model.StatusCompleted, TotalAmount: model.Amount(300)},
		{OrderID: 5, CustomerID: 1, RestaurantID: 2, OrderItem: "Pasta", OrderDate: now.AddDate(0, 0, -35), OrderTime: "20:40:00", OrderStatus: model.StatusCompleted, TotalAmount: model.Amount(305)},
		{OrderID: 6, CustomerID: 1, RestaurantID: 1, OrderItem: "Pasta", OrderDate: now.AddDate(0, 0, -42), OrderTime: "18:25:00", OrderStatus: model.StatusCompleted, TotalAmount: model.Amount(295)},
		{OrderID: 7, CustomerID: 1, RestaurantID: 1, OrderItem: "Pizza", OrderDate: now.AddDate(0, 0, -9), OrderTime: "21:10:00", OrderStatus: model.StatusCompleted, TotalAmount: model.Amount(450)},
		{OrderID: 8, CustomerID: 1, RestaurantID: 2, OrderItem: "Pizza", OrderDate: now.AddDate(0, 0, -16), OrderTime: "20:05:00", OrderStatus: model.StatusCompleted, TotalAmount: model.Amount(440)},
		{OrderID: 9, CustomerID: 1, RestaurantID: 1, OrderItem: "Pizza", OrderDate: now.AddDate(0, 0, -23), OrderTime: "19:55:00", OrderStatus: model.StatusCompleted, TotalAmount: model.Amount(460)},
		{OrderID: 10, CustomerID: 1, RestaurantID: 2, OrderItem: "Pizza", OrderDate: now.AddDate(0, 0, -30), OrderTime: "13:45:00", OrderStatus: model.StatusCompleted, TotalAmount: model.Amount(455)},
		{OrderID: 11, CustomerID: 1, RestaurantID: 1, OrderItem: "Salad", OrderDate: now.AddDate(0, 0, -11), OrderTime: "12:30:00", OrderStatus: model.StatusCompleted, TotalAmount: model.Amount(180)},

		// Churn pair: Arjun ordered in both 2023 and 2024, Nina only in
		// 2023. Spice Route (restaurant 1) has 2023 orders but none in 2024.
		{OrderID: 12, CustomerID: 1, RestaurantID: 1, OrderItem: "Biryani", OrderDate: date(2023, 5, 10), OrderTime: "19:00:00", OrderStatus: model.StatusCompleted, TotalAmount: model.Amount(260)},
		{OrderID: 13, CustomerID: 1, RestaurantID: 3, OrderItem: "Biryani", OrderDate: date(2024, 3, 15), OrderTime: "19:30:00", OrderStatus: model.StatusCompleted, TotalAmount: model.Amount(270)},
		{OrderID: 14, CustomerID: 2, RestaurantID: 3, OrderItem: "Dosa", OrderDate: date(2023, 7, 20), OrderTime: "09:40:00", OrderStatus: model.StatusCompleted, TotalAmount: model.Amount(150)},

		// Raw record with no amount and no delivery row.
		{OrderID: 15, CustomerID: 3, RestaurantID: 3, OrderItem: "Thali", OrderDate: now.AddDate(0, 0, -3), OrderTime: "14:20:00"},

		// Failed fulfillment: a delivery row exists but never completed.
		{OrderID: 16, CustomerID: 3, RestaurantID: 3, OrderItem: "Thali", OrderDate: now.AddDate(0, 0, -5), OrderTime: "13:00:00", OrderStatus: model.StatusCompleted, TotalAmount: model.Amount(220)},
	}
	if err := st.InsertOrders(ctx, orders); err != nil {
		t.Fatalf("Failed to insert orders: %v", err)
	}

	deliveries := []model.Delivery{
		// 23:50 -> 00:10 crosses midnight: 20 elapsed minutes.
		{DeliveryID: 1, OrderID: 1, DeliveryStatus: model.StatusDelivered, DeliveryTime: model.Time("00:10:00"), RiderID: 1},
		{DeliveryID: 2, OrderID: 2, DeliveryStatus: model.StatusDelivered, DeliveryTime: model.Time("12:10:00"), RiderID: 1},
		{DeliveryID: 3, OrderID: 3, DeliveryStatus: model.StatusDelivered, DeliveryTime: model.Time("19:35:00"), RiderID: 2},
		{DeliveryID: 4, OrderID: 16, DeliveryStatus: model.StatusNotDelivered, RiderID: 2},
	}
	if err := st.InsertDeliveries(ctx, deliveries); err != nil {
		t.Fatalf("Failed to insert deliveries: %v", err)
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestIntegration_LoadAndClean(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	connStr, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	db, err := runtime.ConnectWithURL(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer db.Close()

	if err := schema.Create(ctx, db); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	// Idempotent against an existing schema.
	if err := schema.Create(ctx, db); err != nil {
		t.Fatalf("Create is not idempotent: %v", err)
	}

	st := store.New(db)
	loadFixture(t, st)

	t.Run("ReferentialViolation", func(t *testing.T) {
		err := st.InsertOrders(ctx, []model.Order{{
			OrderID: 90, CustomerID: 999, RestaurantID: 1,
			OrderItem: "Pasta", OrderDate: date(2024, 1, 1), OrderTime: "12:00:00",
			TotalAmount: model.Amount(100),
		}})
		var rv *runtime.ReferentialViolation
		if !errors.As(err, &rv) {
			t.Fatalf("expected ReferentialViolation, got %v", err)
		}
	})

	t.Run("ConstraintViolation", func(t *testing.T) {
		err := st.InsertOrders(ctx, []model.Order{{
			OrderID: 91, CustomerID: 1, RestaurantID: 1,
			OrderItem: "Pasta", OrderDate: date(2024, 1, 1), OrderTime: "12:00:00",
			TotalAmount: model.Amount(-5),
		}})
		var cv *runtime.ConstraintViolation
		if !errors.As(err, &cv) {
			t.Fatalf("expected ConstraintViolation, got %v", err)
		}
	})

	t.Run("RejectedBatchLeavesNoRows", func(t *testing.T) {
		var n int
		if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM orders WHERE order_id >= 90").Scan(&n); err != nil {
			t.Fatal(err)
		}
		if n != 0 {
			t.Errorf("rejected batches left %d rows behind", n)
		}
	})

	t.Run("NormalizeAmounts", func(t *testing.T) {
		touched, err := st.NormalizeAmounts(ctx)
		if err != nil {
			t.Fatalf("NormalizeAmounts: %v", err)
		}
		if touched != 1 {
			t.Errorf("normalized %d rows, want 1", touched)
		}

		var nulls int
		if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM orders WHERE total_amount IS NULL").Scan(&nulls); err != nil {
			t.Fatal(err)
		}
		if nulls != 0 {
			t.Errorf("%d NULL amounts remain after normalization", nulls)
		}

		// Idempotent: a second pass matches nothing.
		touched, err = st.NormalizeAmounts(ctx)
		if err != nil {
			t.Fatalf("NormalizeAmounts rerun: %v", err)
		}
		if touched != 0 {
			t.Errorf("rerun touched %d rows, want 0", touched)
		}
	})

	t.Run("SequencesRealigned", func(t *testing.T) {
		var next int
		if err := db.QueryRow(ctx, "SELECT nextval(pg_get_serial_sequence('orders', 'order_id'))::int").Scan(&next); err != nil {
			t.Fatal(err)
		}
		if next <= 16 {
			t.Errorf("orders sequence at %d, want past the loaded ids", next)
		}
	})
}

func TestIntegration_Reports(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	connStr, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	db := runtime.NewDB(pool)
	defer db.Close()

	if err := schema.Create(ctx, db); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	lib := analytics.New(db)

	t.Run("MissingReferenceData", func(t *testing.T) {
		_, err := lib.TopDishesForCustomer(ctx, analytics.NominalCustomer, analytics.TopDishCount)
		var mrd *runtime.MissingReferenceData
		if !errors.As(err, &mrd) {
			t.Fatalf("expected MissingReferenceData on empty tables, got %v", err)
		}
	})

	st := store.New(db)
	loadFixture(t, st)
	if _, err := st.NormalizeAmounts(ctx); err != nil {
		t.Fatalf("NormalizeAmounts: %v", err)
	}

	t.Run("TopDishes", func(t *testing.T) {
		dishes, err := lib.TopDishesForCustomer(ctx, analytics.NominalCustomer, analytics.TopDishCount)
		if err != nil {
			t.Fatalf("TopDishesForCustomer: %v", err)
		}
		want := []analytics.DishRank{
			{Dish: "Pasta", Orders: 6, Rank: 1},
			{Dish: "Pizza", Orders: 4, Rank: 2},
			{Dish: "Salad", Orders: 1, Rank: 3},
		}
		if len(dishes) != len(want) {
			t.Fatalf("got %d dishes, want %d: %+v", len(dishes), len(want), dishes)
		}
		for i, w := range want {
			if dishes[i] != w {
				t.Errorf("dish %d = %+v, want %+v", i, dishes[i], w)
			}
		}
	})

	t.Run("EmptyFilterIsNotAnError", func(t *testing.T) {
		dishes, err := lib.TopDishesForCustomer(ctx, "No Such Customer", analytics.TopDishCount)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(dishes) != 0 {
			t.Errorf("got %d dishes for unknown customer, want 0", len(dishes))
		}
	})

	t.Run("OrdersWithoutDelivery", func(t *testing.T) {
		undelivered, err := lib.OrdersWithoutDelivery(ctx)
		if err != nil {
			t.Fatalf("OrdersWithoutDelivery: %v", err)
		}
		var total int64
		sawCoastal := false
		for _, u := range undelivered {
			total += u.Undelivered
			if u.RestaurantName == "Coastal Curry" {
				sawCoastal = true
			}
		}
		// 16 orders, 4 delivery rows; order 16 has a (not-delivered)
		// delivery row and so does not count here.
		if total != 12 {
			t.Errorf("undelivered total = %d, want 12", total)
		}
		if !sawCoastal {
			t.Error("the restaurant with the pending order is missing from the result")
		}
	})

	t.Run("RiderAverageDeliveryTime", func(t *testing.T) {
		avgs, err := lib.RiderAverageDeliveryTime(ctx)
		if err != nil {
			t.Fatalf("RiderAverageDeliveryTime: %v", err)
		}
		if len(avgs) != 2 {
			t.Fatalf("got %d riders, want 2: %+v", len(avgs), avgs)
		}
		// Ravi: 20 min (midnight-corrected) and 10 min. Sana: 30 min.
		if avgs[0].RiderName != "Ravi Verma" || avgs[0].AvgMinutes != 15 {
			t.Errorf("fastest = %+v, want Ravi Verma at 15.00", avgs[0])
		}
		if avgs[1].RiderName != "Sana Iqbal" || avgs[1].AvgMinutes != 30 {
			t.Errorf("slowest = %+v, want Sana Iqbal at 30.00", avgs[1])
		}
	})

	t.Run("RiderRatings", func(t *testing.T) {
		ratings, err := lib.RiderRatings(ctx)
		if err != nil {
			t.Fatalf("RiderRatings: %v", err)
		}
		got := map[string]int64{}
		for _, r := range ratings {
			got[r.RiderName+"/"+r.Rating] = r.Total
		}
		// 10 min five-star, 20 min four-star, 30 min three-star.
		want := map[string]int64{
			"Ravi Verma/" + analytics.RatingFiveStar:  1,
			"Ravi Verma/" + analytics.RatingFourStar:  1,
			"Sana Iqbal/" + analytics.RatingThreeStar: 1,
		}
		for k, v := range want {
			if got[k] != v {
				t.Errorf("%s = %d, want %d (all: %v)", k, got[k], v, got)
			}
		}
	})

	t.Run("RiderEfficiency", func(t *testing.T) {
		extremes, err := lib.RiderEfficiency(ctx)
		if err != nil {
			t.Fatalf("RiderEfficiency: %v", err)
		}
		want := []analytics.RiderExtreme{
			{RiderName: "Ravi Verma", MinMinutes: 10, AvgMinutes: 15, MaxMinutes: 20, Marker: "fastest"},
			{RiderName: "Sana Iqbal", MinMinutes: 30, AvgMinutes: 30, MaxMinutes: 30, Marker: "slowest"},
		}
		if len(extremes) != len(want) {
			t.Fatalf("got %d extremes, want %d: %+v", len(extremes), len(want), extremes)
		}
		for i, w := range want {
			if extremes[i] != w {
				t.Errorf("extreme %d = %+v, want %+v", i, extremes[i], w)
			}
		}
	})

	t.Run("CancellationRateMissingYearIsZero", func(t *testing.T) {
		rates, err := lib.CancellationRateComparison(ctx)
		if err != nil {
			t.Fatalf("CancellationRateComparison: %v", err)
		}
		// Spice Route took orders in 2023 only; its undelivered 2023 order
		// reads 100% and the absent 2024 year must read 0, not NULL.
		found := false
		for _, r := range rates {
			if r.RestaurantName == "Spice Route" {
				found = true
				if r.CurrentRatio != 0 {
					t.Errorf("missing-year ratio = %v, want 0", r.CurrentRatio)
				}
				if r.PriorRatio != 100 {
					t.Errorf("prior ratio = %v, want 100", r.PriorRatio)
				}
			}
		}
		if !found {
			t.Fatalf("Spice Route missing from comparison: %+v", rates)
		}
	})

	t.Run("ChurnedCustomers", func(t *testing.T) {
		churned, err := lib.ChurnedCustomers(ctx)
		if err != nil {
			t.Fatalf("ChurnedCustomers: %v", err)
		}
		if len(churned) != 1 || churned[0].CustomerName != "Nina Rao" {
			t.Errorf("churned = %+v, want only Nina Rao", churned)
		}
	})

	t.Run("SegmentRevenueConservation", func(t *testing.T) {
		segments, err := lib.SegmentRevenue(ctx)
		if err != nil {
			t.Fatalf("SegmentRevenue: %v", err)
		}
		var segTotal float64
		var segOrders int64
		for _, s := range segments {
			if s.Segment != "Gold" && s.Segment != "Silver" {
				t.Errorf("unexpected segment %q", s.Segment)
			}
			segTotal += s.TotalRevenue
			segOrders += s.TotalOrders
		}
		var platformTotal float64
		var platformOrders int64
		if err := db.QueryRow(ctx, "SELECT SUM(total_amount), COUNT(*) FROM orders").Scan(&platformTotal, &platformOrders); err != nil {
			t.Fatal(err)
		}
		if segTotal != platformTotal || segOrders != platformOrders {
			t.Errorf("segments total %v/%d, platform %v/%d", segTotal, segOrders, platformTotal, platformOrders)
		}
	})

	t.Run("CityRevenueRankIsGapFree", func(t *testing.T) {
		cities, err := lib.CityRevenueRank(ctx)
		if err != nil {
			t.Fatalf("CityRevenueRank: %v", err)
		}
		ranks := map[int64]bool{}
		var max int64
		for _, c := range cities {
			ranks[c.Rank] = true
			if c.Rank > max {
				max = c.Rank
			}
		}
		for r := int64(1); r <= max; r++ {
			if !ranks[r] {
				t.Errorf("rank %d missing from %v", r, cities)
			}
		}
	})

	t.Run("MonthlySalesTrendLagDefault", func(t *testing.T) {
		months, err := lib.MonthlySalesTrend(ctx)
		if err != nil {
			t.Fatalf("MonthlySalesTrend: %v", err)
		}
		if len(months) == 0 {
			t.Fatal("no months returned")
		}
		first := months[0]
		if first.PrevRevenue != 0 {
			t.Errorf("first month prev = %v, want 0", first.PrevRevenue)
		}
		if first.GrowthPct != nil {
			t.Errorf("first month growth = %v, want undefined", *first.GrowthPct)
		}
		for i := 1; i < len(months); i++ {
			if months[i].PrevRevenue != months[i-1].Revenue {
				t.Errorf("month %s prev = %v, want %v", months[i].Month, months[i].PrevRevenue, months[i-1].Revenue)
			}
		}
	})

	t.Run("ThresholdFiltersComeBackEmpty", func(t *testing.T) {
		// The fixture is far below both literal cutoffs.
		aov, err := lib.HighFrequencyCustomerAOV(ctx)
		if err != nil {
			t.Fatalf("HighFrequencyCustomerAOV: %v", err)
		}
		if len(aov) != 0 {
			t.Errorf("AOV rows = %+v, want none", aov)
		}
		hv, err := lib.HighValueCustomers(ctx)
		if err != nil {
			t.Fatalf("HighValueCustomers: %v", err)
		}
		if len(hv) != 0 {
			t.Errorf("high-value rows = %+v, want none", hv)
		}
	})

	t.Run("AllReportsRun", func(t *testing.T) {
		for _, report := range analytics.Reports {
			if _, err := report.Run(ctx, lib); err != nil {
				t.Errorf("%s: %v", report.Name, err)
			}
		}
	})
}
