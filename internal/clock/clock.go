package clock

import "time"

type Clock interface {
	Now() time.Time
}

type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

// Fixed always reports the same instant. Tests move it with Set/Advance.
type Fixed struct {
	T time.Time
}

func (f *Fixed) Now() time.Time {
	return f.T
}

func (f *Fixed) Set(t time.Time) {
	f.T = t
}

func (f *Fixed) Advance(d time.Duration) {
	f.T = f.T.Add(d)
}
