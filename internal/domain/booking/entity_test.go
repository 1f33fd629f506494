package booking

import (
	"testing"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

func TestBookingDateIsShopLocalDay(t *testing.T) {
	tests := []struct {
		tz    string
		local string
		want  string
	}{
		{"Asia/Tokyo", "2026-03-10 08:00", "2026-03-10"},
		{"Pacific/Auckland", "2026-03-10 00:30", "2026-03-10"},
		{"America/Sao_Paulo", "2026-03-10 23:30", "2026-03-10"},
		{"UTC", "2026-03-10 00:00", "2026-03-10"},
	}

	for _, tt := range tests {
		t.Run(tt.tz, func(t *testing.T) {
			loc, err := time.LoadLocation(tt.tz)
			if err != nil {
				t.Skipf("tzdata: %v", err)
			}
			start, err := time.ParseInLocation("2006-01-02 15:04", tt.local, loc)
			if err != nil {
				t.Fatal(err)
			}

			b := NewPending(NewPendingParams{
				Client:  &models.Client{ID: 1},
				Product: &models.BarberProduct{ID: 1, DurationMin: 30, Price: d("25")},
				Start:   start,
				Now:     start.Add(-time.Hour),
			})
			if got := b.Date.UTC().Format("2006-01-02"); got != tt.want {
				t.Fatalf("Date = %s, want %s", got, tt.want)
			}

			moved := start.AddDate(0, 0, 1)
			if err := Reschedule(b, moved, 30, start.Add(-time.Hour), time.Minute); err != nil {
				t.Fatal(err)
			}
			want := moved.Format("2006-01-02")
			if got := b.Date.UTC().Format("2006-01-02"); got != want {
				t.Fatalf("rescheduled Date = %s, want %s", got, want)
			}
		})
	}
}
