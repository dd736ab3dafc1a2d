package calendar

import "fmt"

// Classification is the bookability of a single calendar day.
type Classification int

const (
	Available Classification = iota
	Past
	Blocked
	Booked
	Requested
)

var classificationNames = map[Classification]string{
	Available: "available",
	Past:      "past",
	Blocked:   "blocked",
	Booked:    "booked",
	Requested: "requested",
}

func (c Classification) String() string {
	if name, ok := classificationNames[c]; ok {
		return name
	}
	return fmt.Sprintf("classification(%d)", int(c))
}

func (c Classification) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Classification) UnmarshalText(data []byte) error {
	for k, v := range classificationNames {
		if v == string(data) {
			*c = k
			return nil
		}
	}
	return fmt.Errorf("unknown classification %q", string(data))
}

// Selectable reports whether a day in this state may start or be part of a selection.
func (c Classification) Selectable() bool {
	return c == Available
}

// Classify returns exactly one classification for day.
// Precedence: Past, Blocked, Booked, Requested, Available.
func Classify(day, today Day, snap *Snapshot) Classification {
	if day.Before(today) {
		return Past
	}
	if snap == nil {
		return Available
	}
	if snap.closed || snap.blocked[day] {
		return Blocked
	}
	if snap.booked[day] || snap.completed[day] {
		return Booked
	}
	if snap.requested[day] {
		return Requested
	}
	return Available
}

// ClassifyFunc binds a snapshot and "today" into a per-day classifier.
func ClassifyFunc(today Day, snap *Snapshot) func(Day) Classification {
	return func(d Day) Classification {
		return Classify(d, today, snap)
	}
}
