package timezone

import "time"

const DefaultTimezone = "America/Sao_Paulo"

const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	DateTimeLayout = DateLayout + " " + TimeLayout
)

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// Location resolves tz, falling back to DefaultTimezone and then UTC.
func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		return loc
	}
	return time.UTC
}

func In(t time.Time, tz string) time.Time {
	return t.In(Location(tz))
}

func ParseDate(tz, date string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, date, Location(tz))
}

func ParseDateTime(tz, date, clock string) (time.Time, error) {
	return time.ParseInLocation(DateTimeLayout, date+" "+clock, Location(tz))
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
