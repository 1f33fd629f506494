package booking

import (
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

// IsWithinWorkingHours valida se um horário está dentro do expediente,
// incluindo pausa de almoço. wh == nil means the barber has no schedule
// configured for that weekday and every slot is accepted.
func IsWithinWorkingHours(wh *models.WorkingHours, start, end time.Time) bool {
	if wh == nil {
		return true
	}
	if !wh.Active || wh.StartTime == "" || wh.EndTime == "" {
		return false
	}

	workStart, ok1 := atClock(start, wh.StartTime)
	workEnd, ok2 := atClock(start, wh.EndTime)
	if !ok1 || !ok2 {
		return false
	}

	if start.Before(workStart) || end.After(workEnd) {
		return false
	}

	if wh.LunchStart != "" && wh.LunchEnd != "" {
		lunchStart, ok1 := atClock(start, wh.LunchStart)
		lunchEnd, ok2 := atClock(start, wh.LunchEnd)
		if ok1 && ok2 && Overlaps(start, end, lunchStart, lunchEnd) {
			return false
		}
	}

	return true
}

func atClock(day time.Time, hm string) (time.Time, bool) {
	t, err := time.Parse(timezone.TimeLayout, hm)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(
		day.Year(), day.Month(), day.Day(),
		t.Hour(), t.Minute(), 0, 0,
		day.Location(),
	), true
}
