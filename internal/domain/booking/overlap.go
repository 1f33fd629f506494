package booking

import (
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

// Overlaps uses half-open intervals: touching edges do not overlap.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && end1.After(start2)
}

// IsBlocking reports whether b still holds its slot at now. Cancelled
// bookings and holds whose expiry has passed never block, whether or not
// the sweeper got to them yet.
func IsBlocking(b *models.Booking, now time.Time) bool {
	if Status(b.Status) == StatusCancelled {
		return false
	}
	if b.ExpiresAt != nil && !now.Before(*b.ExpiresAt) {
		return false
	}
	return true
}

// Conflicts returns the bookings that block [start, end) at now, skipping
// excludeID (0 excludes nothing).
func Conflicts(bookings []models.Booking, start, end, now time.Time, excludeID uint) []models.Booking {
	var out []models.Booking
	for i := range bookings {
		b := &bookings[i]
		if excludeID != 0 && b.ID == excludeID {
			continue
		}
		if !IsBlocking(b, now) {
			continue
		}
		if Overlaps(start, end, b.StartTime, b.EndTime) {
			out = append(out, *b)
		}
	}
	return out
}
