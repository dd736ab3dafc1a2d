package calendar

import (
	"fmt"
	"time"
)

const DefaultTimeZone = "Europe/Brussels"

// Clock answers "what day is it" in the operating time zone, independent
// of the server's or the caller's zone.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

func NewClock(zone string) (*Clock, error) {
	if zone == "" {
		zone = DefaultTimeZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", zone, err)
	}
	return &Clock{loc: loc, now: time.Now}, nil
}

// FixedClock always reports the given day. Used by tests and replays.
func FixedClock(today Day) *Clock {
	t := time.Date(today.Year(), today.Month(), today.DayOfMonth(), 12, 0, 0, 0, time.UTC)
	return &Clock{loc: time.UTC, now: func() time.Time { return t }}
}

func (c *Clock) Location() *time.Location {
	return c.loc
}

func (c *Clock) Today() Day {
	return DayIn(c.now(), c.loc)
}
