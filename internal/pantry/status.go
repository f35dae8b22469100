package pantry

import (
	"time"

	"github.com/dukerupert/fusionmeals/internal/model"
)

// ComputeStatus derives an item's status from its quantity, expiry date and
// low-stock threshold as of today.
func ComputeStatus(item model.PantryItem, today time.Time) model.PantryStatus {
	today = startOfDay(today)

	if item.Quantity <= 0 {
		return model.PantryStatusOutOfStock
	}
	if item.ExpiryDate != nil && startOfDay(item.ExpiryDate.Time).Before(today) {
		return model.PantryStatusExpired
	}
	if item.ThresholdQuantity != nil && item.Quantity <= *item.ThresholdQuantity {
		return model.PantryStatusLow
	}
	return model.PantryStatusAvailable
}

// Resolve merges a stored status with a freshly derived one. A derived
// non-available status always wins; a derived "available" never clears a
// status the caller set explicitly.
func Resolve(stored, derived model.PantryStatus) model.PantryStatus {
	if derived != model.PantryStatusAvailable {
		return derived
	}
	if stored.Valid() {
		return stored
	}
	return model.PantryStatusAvailable
}

// ExpiresWithin reports whether an unexpired item expires in the next days days.
func ExpiresWithin(item model.PantryItem, today time.Time, days int) bool {
	if item.ExpiryDate == nil || item.Quantity <= 0 {
		return false
	}
	today = startOfDay(today)
	exp := startOfDay(item.ExpiryDate.Time)
	return !exp.Before(today) && !exp.After(today.AddDate(0, 0, days))
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
