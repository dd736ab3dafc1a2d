package calendar

import (
	"sort"
)

// CommitmentKind says how a booking's days count against availability.
type CommitmentKind string

const (
	CommitmentRequested CommitmentKind = "requested"
	CommitmentBooked    CommitmentKind = "booked"
	CommitmentCompleted CommitmentKind = "completed"
)

// Commitment is the day range a booking holds on a sitter's calendar.
type Commitment struct {
	Range DayRange
	Kind  CommitmentKind
}

// Snapshot is the merged view of one sitter's blocks and bookings at read time.
type Snapshot struct {
	blocked   map[Day]bool
	requested map[Day]bool
	booked    map[Day]bool
	completed map[Day]bool
	closed    bool
}

// SnapshotData is the serializable form of a Snapshot.
type SnapshotData struct {
	Blocked   []Day `json:"blocked"`
	Requested []Day `json:"requested"`
	Booked    []Day `json:"booked"`
	Completed []Day `json:"completed"`
}

func NewSnapshot(blocks []Day, commitments []Commitment) *Snapshot {
	s := &Snapshot{
		blocked:   make(map[Day]bool, len(blocks)),
		requested: make(map[Day]bool),
		booked:    make(map[Day]bool),
		completed: make(map[Day]bool),
	}
	for _, d := range blocks {
		s.blocked[d] = true
	}
	for _, c := range commitments {
		target := s.setFor(c.Kind)
		if target == nil {
			continue
		}
		for _, d := range c.Range.Days() {
			target[d] = true
		}
	}
	return s
}

// ClosedSnapshot treats every day as blocked. It is what callers get when
// the underlying data could not be read.
func ClosedSnapshot() *Snapshot {
	s := NewSnapshot(nil, nil)
	s.closed = true
	return s
}

func SnapshotFromData(data SnapshotData) *Snapshot {
	s := NewSnapshot(data.Blocked, nil)
	for _, d := range data.Requested {
		s.requested[d] = true
	}
	for _, d := range data.Booked {
		s.booked[d] = true
	}
	for _, d := range data.Completed {
		s.completed[d] = true
	}
	return s
}

func (s *Snapshot) setFor(kind CommitmentKind) map[Day]bool {
	switch kind {
	case CommitmentRequested:
		return s.requested
	case CommitmentBooked:
		return s.booked
	case CommitmentCompleted:
		return s.completed
	}
	return nil
}

func (s *Snapshot) Data() SnapshotData {
	return SnapshotData{
		Blocked:   sortedDays(s.blocked),
		Requested: sortedDays(s.requested),
		Booked:    sortedDays(s.booked),
		Completed: sortedDays(s.completed),
	}
}

// Unavailable returns blocked, requested and booked days, sorted and
// restricted to window when one is given. Completed bookings are history
// and are not reported. A closed snapshot reports the whole window.
func (s *Snapshot) Unavailable(window *DayRange) []Day {
	if s.closed {
		if window == nil {
			return nil
		}
		return window.Days()
	}
	set := make(map[Day]bool, len(s.blocked)+len(s.requested)+len(s.booked))
	for _, src := range []map[Day]bool{s.blocked, s.requested, s.booked} {
		for d := range src {
			if window == nil || window.Contains(d) {
				set[d] = true
			}
		}
	}
	return sortedDays(set)
}

// MergeUnavailable is the pure union of block days and the days of every
// pending or accepted booking, restricted to window.
func MergeUnavailable(blocks []Day, commitments []Commitment, window *DayRange) []string {
	return FormatDays(NewSnapshot(blocks, commitments).Unavailable(window))
}

func FormatDays(days []Day) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.String()
	}
	return out
}

func sortedDays(set map[Day]bool) []Day {
	days := make([]Day, 0, len(set))
	for d := range set {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
