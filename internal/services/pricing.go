package services

import (
	"time"

	"github.com/shopspring/decimal"
)

// NightCount returns the number of nights implied by a [checkIn, checkOut)
// stay. Non-positive when the range is empty or inverted.
func NightCount(checkIn, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn).Hours() / 24)
}

// ComputePrice prices a stay night by night over [checkIn, checkOut):
// Monday through Thursday nights at the weekday rate, Friday through Sunday
// nights at the weekend rate. This is the single source of truth for booking
// prices; client-supplied amounts are never trusted.
func ComputePrice(checkIn, checkOut time.Time, weekdayRate, weekendRate decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for night := checkIn; night.Before(checkOut); night = night.AddDate(0, 0, 1) {
		switch night.Weekday() {
		case time.Monday, time.Tuesday, time.Wednesday, time.Thursday:
			total = total.Add(weekdayRate)
		default:
			total = total.Add(weekendRate)
		}
	}
	return total
}
