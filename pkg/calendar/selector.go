package calendar

import "fmt"

type SelectionState string

const (
	SelectionEmpty    SelectionState = "empty"
	SelectionHasStart SelectionState = "has_start"
	SelectionComplete SelectionState = "complete"
)

// Selection is the state of a two-click date range picker.
type Selection struct {
	State SelectionState `json:"state"`
	Start Day            `json:"start"`
	End   Day            `json:"end"`
}

func EmptySelection() Selection {
	return Selection{State: SelectionEmpty}
}

// Validate checks that the fields agree with the state.
func (s Selection) Validate() error {
	switch s.State {
	case SelectionEmpty, "":
		return nil
	case SelectionHasStart:
		if s.Start.IsZero() {
			return fmt.Errorf("has_start selection requires start")
		}
		return nil
	case SelectionComplete:
		if s.Start.IsZero() || s.End.IsZero() {
			return fmt.Errorf("complete selection requires start and end")
		}
		if s.End.Before(s.Start) {
			return ErrInvertedRange
		}
		return nil
	}
	return fmt.Errorf("unknown selection state %q", s.State)
}

// Range returns the selected range once the selection is complete.
func (s Selection) Range() (DayRange, bool) {
	if s.State != SelectionComplete {
		return DayRange{}, false
	}
	return DayRange{Start: s.Start, End: s.End}, true
}

// Select applies one click on day to sel. classify reports the state of any
// day; it is consulted for the clicked day and, on a closing click, for
// every day in between.
func Select(sel Selection, day Day, classify func(Day) Classification) Selection {
	if sel.State != SelectionHasStart {
		return startAt(sel, day, classify(day))
	}

	if day.Before(sel.Start) {
		return startAt(sel, day, classify(day))
	}

	for d := sel.Start; !d.After(day); d = d.AddDays(1) {
		if !classify(d).Selectable() {
			// Silent restart: the clicked day becomes the new start.
			return Selection{State: SelectionHasStart, Start: day}
		}
	}
	return Selection{State: SelectionComplete, Start: sel.Start, End: day}
}

func startAt(sel Selection, day Day, class Classification) Selection {
	if !class.Selectable() {
		return sel
	}
	return Selection{State: SelectionHasStart, Start: day}
}
