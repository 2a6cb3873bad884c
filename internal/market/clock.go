package market

import (
	"time"
)

// Regular session bounds, in minutes after midnight of the viewer's civil time
const (
	sessionOpenMinute  = 9*60 + 30
	sessionCloseMinute = 16 * 60
)

// IsOpen reports whether now falls inside the regular weekday session
// (09:30 inclusive to 16:00 exclusive) in now's own location. Holidays and
// exchange time zones are deliberately ignored.
func IsOpen(now time.Time) bool {
	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	minute := now.Hour()*60 + now.Minute()
	return minute >= sessionOpenMinute && minute < sessionCloseMinute
}

// Status is the market status indicator payload
type Status struct {
	Open      bool      `json:"open"`
	Label     string    `json:"label"`
	CheckedAt time.Time `json:"checked_at"`
	Timezone  string    `json:"timezone"`
}

// Clock evaluates the session against a display location
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock creates a clock for loc. A nil loc means time.Local.
func NewClock(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.Local
	}
	return &Clock{loc: loc, now: time.Now}
}

// Location returns the display location
func (c *Clock) Location() *time.Location {
	return c.loc
}

// Now returns the current time in the display location
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Status evaluates the session at the current time
func (c *Clock) Status() Status {
	now := c.Now()
	st := Status{
		Open:      IsOpen(now),
		CheckedAt: now,
		Timezone:  c.loc.String(),
	}
	if st.Open {
		st.Label = "Market is open"
	} else {
		st.Label = "Market is closed"
	}
	return st
}

// LoadLocation resolves a configured timezone name; "" and "Local" map to time.Local
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}
