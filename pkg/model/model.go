// Package model defines the five entities of the food-delivery dataset.
package model

import "time"

// Order and delivery status values. Both tables default to StatusPending.
const (
	StatusPending      = "Pending"
	StatusCompleted    = "Completed"
	StatusDelivered    = "Delivered"
	StatusNotDelivered = "Not Delivered"
)

// Customer is a platform user who places orders.
type Customer struct {
	CustomerID   int
	CustomerName string
	RegDate      time.Time
}

// Restaurant is a food vendor fulfilling orders.
type Restaurant struct {
	RestaurantID   int
	RestaurantName string
	City           string
	OpeningHours   string
}

// Rider is a delivery agent.
type Rider struct {
	RiderID   int
	RiderName string
	SignUp    time.Time
}

// Order is one purchase transaction. References to the customer and
// restaurant are immutable after creation. Time-of-day fields are wall-clock
// local values formatted "15:04:05"; TotalAmount is nil for raw records that
// have not been through store.NormalizeAmounts yet.
type Order struct {
	OrderID      int
	CustomerID   int
	RestaurantID int
	OrderItem    string
	OrderDate    time.Time
	OrderTime    string
	OrderStatus  string
	TotalAmount  *float64
}

// Delivery is the fulfillment record for an order. An order has zero or one
// delivery; absence means the order was never delivered. DeliveryTime is nil
// while the delivery is still pending.
type Delivery struct {
	DeliveryID     int
	OrderID        int
	DeliveryStatus string
	DeliveryTime   *string
	RiderID        int
}

// Amount is a convenience for building the nullable TotalAmount field.
func Amount(v float64) *float64 { return &v }

// Time is a convenience for building the nullable DeliveryTime field.
func Time(hhmmss string) *string { return &hhmmss }
