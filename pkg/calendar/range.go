package calendar

import (
	"errors"
	"fmt"
)

var ErrInvertedRange = errors.New("range end is before range start")

// DayRange is an inclusive span of days.
type DayRange struct {
	Start Day `json:"start" bson:"start"`
	End   Day `json:"end" bson:"end"`
}

func NewRange(start, end Day) (DayRange, error) {
	if start.IsZero() || end.IsZero() {
		return DayRange{}, fmt.Errorf("range requires both start and end")
	}
	if end.Before(start) {
		return DayRange{}, ErrInvertedRange
	}
	return DayRange{Start: start, End: end}, nil
}

// SingleDay returns the range [d, d].
func SingleDay(d Day) DayRange {
	return DayRange{Start: d, End: d}
}

// Len is the number of days in the range, both ends counted.
func (r DayRange) Len() int {
	if r.End.Before(r.Start) {
		return 0
	}
	return r.End.Sub(r.Start) + 1
}

func (r DayRange) Contains(d Day) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days expands the range into its individual days, in order.
func (r DayRange) Days() []Day {
	n := r.Len()
	days := make([]Day, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, r.Start.AddDays(i))
	}
	return days
}

func (r DayRange) String() string {
	return r.Start.String() + ".." + r.End.String()
}
