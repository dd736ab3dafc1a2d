package calendar

import (
	"reflect"
	"testing"
)

func TestMergeUnavailable(t *testing.T) {
	blocks := []Day{MustParseDay("2025-03-20"), MustParseDay("2025-03-05"), MustParseDay("2025-03-11")}
	commitments := []Commitment{
		{Range: DayRange{Start: MustParseDay("2025-03-10"), End: MustParseDay("2025-03-12")}, Kind: CommitmentRequested},
		{Range: DayRange{Start: MustParseDay("2025-03-30"), End: MustParseDay("2025-04-01")}, Kind: CommitmentBooked},
		{Range: DayRange{Start: MustParseDay("2025-03-01"), End: MustParseDay("2025-03-02")}, Kind: CommitmentCompleted},
	}

	t.Run("no window is the exact union", func(t *testing.T) {
		got := MergeUnavailable(blocks, commitments, nil)
		want := []string{
			"2025-03-05", "2025-03-10", "2025-03-11", "2025-03-12",
			"2025-03-20", "2025-03-30", "2025-03-31", "2025-04-01",
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("window restricts", func(t *testing.T) {
		window := DayRange{Start: MustParseDay("2025-03-11"), End: MustParseDay("2025-03-31")}
		got := MergeUnavailable(blocks, commitments, &window)
		want := []string{"2025-03-11", "2025-03-12", "2025-03-20", "2025-03-30", "2025-03-31"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("nothing is empty not nil", func(t *testing.T) {
		got := MergeUnavailable(nil, nil, nil)
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty slice, got %#v", got)
		}
	})
}

func TestPendingRequestRoundTrip(t *testing.T) {
	booking := Commitment{
		Range: DayRange{Start: MustParseDay("2025-03-10"), End: MustParseDay("2025-03-12")},
		Kind:  CommitmentRequested,
	}
	got := MergeUnavailable(nil, []Commitment{booking}, nil)
	want := []string{"2025-03-10", "2025-03-11", "2025-03-12"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestClosedSnapshotUnavailable(t *testing.T) {
	window := DayRange{Start: MustParseDay("2025-03-01"), End: MustParseDay("2025-03-03")}
	got := FormatDays(ClosedSnapshot().Unavailable(&window))
	want := []string{"2025-03-01", "2025-03-02", "2025-03-03"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected full window, got %v", got)
	}
	if days := ClosedSnapshot().Unavailable(nil); days != nil {
		t.Errorf("expected nil without a window, got %v", days)
	}
}

func TestSnapshotDataRoundTrip(t *testing.T) {
	snap := NewSnapshot(
		[]Day{MustParseDay("2025-05-02")},
		[]Commitment{
			{Range: DayRange{Start: MustParseDay("2025-05-04"), End: MustParseDay("2025-05-05")}, Kind: CommitmentBooked},
			{Range: SingleDay(MustParseDay("2025-05-07")), Kind: CommitmentRequested},
			{Range: SingleDay(MustParseDay("2025-04-01")), Kind: CommitmentCompleted},
		},
	)

	restored := SnapshotFromData(snap.Data())
	if !reflect.DeepEqual(restored.Data(), snap.Data()) {
		t.Errorf("expected %+v, got %+v", snap.Data(), restored.Data())
	}
	today := MustParseDay("2025-03-01")
	for _, d := range (DayRange{Start: MustParseDay("2025-04-01"), End: MustParseDay("2025-05-10")}).Days() {
		if Classify(d, today, snap) != Classify(d, today, restored) {
			t.Errorf("%s classified differently after round trip", d)
		}
	}
}
