package analytics

import (
	"fmt"
	"time"
)

// Rider rating labels derived from delivery duration.
const (
	RatingFiveStar  = "5 star"
	RatingFourStar  = "4 star"
	RatingThreeStar = "3 star"
)

// TimeSlot maps an hour of day to its fixed 2-hour bucket label. Buckets are
// aligned to midnight, inclusive of the start hour and exclusive of the end
// hour, so the day partitions into exactly twelve slots.
func TimeSlot(hour int) string {
	start := (hour / 2) * 2
	return fmt.Sprintf("%02d:00 - %02d:00", start, start+2)
}

// Season maps a calendar month to its fixed Northern-Hemisphere season.
func Season(month time.Month) string {
	switch {
	case month >= time.March && month <= time.May:
		return "Spring"
	case month >= time.June && month <= time.August:
		return "Summer"
	case month >= time.September && month <= time.November:
		return "Autumn"
	default:
		return "Winter"
	}
}

// Rating maps delivered-order duration in minutes to a star rating. Buckets
// are mutually exclusive and exhaustive: under 15 minutes is five-star, 15 to
// 20 inclusive is four-star, beyond 20 is three-star.
func Rating(minutes float64) string {
	switch {
	case minutes < 15:
		return RatingFiveStar
	case minutes <= 20:
		return RatingFourStar
	default:
		return RatingThreeStar
	}
}

// ElapsedMinutes returns the minutes between order placement and delivery,
// both given as time-of-day offsets from midnight. A delivery time numerically
// before the order time means the delivery happened the following day, so a
// day is added before taking the difference.
func ElapsedMinutes(orderTime, deliveryTime time.Duration) float64 {
	if deliveryTime < orderTime {
		deliveryTime += 24 * time.Hour
	}
	return (deliveryTime - orderTime).Minutes()
}
