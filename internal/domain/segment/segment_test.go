package segment

import (
	"fmt"
	"strings"
	"testing"

	"github.com/clipscout/clipscout/internal/types"
)

func denseEntries(n int, text string) []types.Entry {
	out := make([]types.Entry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, types.Entry{Start: float64(i * 5), Duration: 5, Text: text})
	}
	return out
}

func TestAccumulate_MinimumConstraints(t *testing.T) {
	wordy := "fear and greed drive every trade you will ever take"
	wins := Accumulate(denseEntries(20, wordy))
	if len(wins) == 0 {
		t.Fatalf("expected windows")
	}
	for _, w := range wins {
		if w.Duration < 15 {
			t.Fatalf("window under minimum duration: %+v", w)
		}
		if w.Entries < 3 {
			t.Fatalf("window under minimum entries: %+v", w)
		}
		if len(strings.Fields(w.Text)) < 10 {
			t.Fatalf("window under minimum words: %+v", w)
		}
		if w.End <= w.Start {
			t.Fatalf("end not after start: %+v", w)
		}
	}
}

func TestAccumulate_OverlapSharesTailEntries(t *testing.T) {
	wordy := "discipline beats emotion in every single trading session period"
	wins := Accumulate(denseEntries(12, wordy))
	if len(wins) < 2 {
		t.Fatalf("expected at least 2 windows, got %d", len(wins))
	}
	// Second window must open on the tail of the first (last 2 entries, 5s each).
	wantStart := wins[0].End - 10
	if wins[1].Start != wantStart {
		t.Fatalf("expected overlap start %v, got %v", wantStart, wins[1].Start)
	}
}

func TestAccumulate_LowWordWindowsDiscarded(t *testing.T) {
	entries := denseEntries(3, "mm hmm")
	quiet := Accumulate(entries)
	if len(quiet) != 0 {
		t.Fatalf("expected no windows from low-word run, got %d", len(quiet))
	}

	// Quiet run followed by a dense run: the first emitted window must start
	// after the discarded accumulation.
	wordy := "never risk more than you can afford to lose on one position"
	entries = append(entries, denseEntries(4, wordy)...)
	for i := 3; i < len(entries); i++ {
		entries[i].Start = float64(i * 5)
	}
	wins := Accumulate(entries)
	if len(wins) == 0 {
		t.Fatalf("expected a window from the dense run")
	}
	if wins[0].Start != 15 {
		t.Fatalf("expected first window to start past the discarded run, got %v", wins[0].Start)
	}
}

func TestAccumulate_CapsAtMaxWindows(t *testing.T) {
	wordy := "why most people fail is simple they never manage their risk"
	wins := Accumulate(denseEntries(300, wordy))
	if len(wins) != MaxWindows {
		t.Fatalf("expected %d windows, got %d", MaxWindows, len(wins))
	}
}

func TestAccumulate_PreservesTimeOrder(t *testing.T) {
	wordy := "patience and consistency compound into an edge over many years"
	wins := Accumulate(denseEntries(60, wordy))
	for i := 1; i < len(wins); i++ {
		if wins[i].Start < wins[i-1].Start {
			t.Fatalf("windows out of order at %d: %v then %v", i, wins[i-1].Start, wins[i].Start)
		}
	}
}

func TestSparseSample_FixedWindows(t *testing.T) {
	entries := make([]types.Entry, 0, 60)
	for i := 0; i < 60; i++ {
		entries = append(entries, types.Entry{
			Start:    float64(i * 10),
			Duration: 10,
			Text:     fmt.Sprintf("subtitle line number %d about market structure", i),
		})
	}
	wins := SparseSample(entries, 30)
	if len(wins) == 0 || len(wins) > MaxWindows {
		t.Fatalf("unexpected window count: %d", len(wins))
	}
	for _, w := range wins {
		if w.Duration > 30 {
			t.Fatalf("window exceeds fixed duration: %+v", w)
		}
		if w.Text == "" {
			t.Fatalf("empty window text: %+v", w)
		}
	}
	for i := 1; i < len(wins); i++ {
		if wins[i].Start <= wins[i-1].Start {
			t.Fatalf("sparse windows out of order")
		}
	}
}

func TestSparseSample_SkipsShortSeeds(t *testing.T) {
	entries := []types.Entry{
		{Start: 0, Duration: 5, Text: "short"},
		{Start: 5, Duration: 5, Text: "a seed line long enough to qualify here"},
	}
	wins := SparseSample(entries, 30)
	if len(wins) != 1 {
		t.Fatalf("expected 1 window, got %d", len(wins))
	}
	if wins[0].Start != 5 {
		t.Fatalf("expected window seeded at 5s, got %v", wins[0].Start)
	}
}

func TestSparseSample_WindowAbsorbsFollowingEntries(t *testing.T) {
	entries := []types.Entry{
		{Start: 0, Duration: 10, Text: "the first subtitle block of this video"},
		{Start: 10, Duration: 10, Text: "the second subtitle block of this video"},
		{Start: 20, Duration: 10, Text: "the third subtitle block of this video"},
		{Start: 40, Duration: 10, Text: "a block outside the first window span"},
	}
	wins := SparseSample(entries, 30)
	if len(wins) == 0 {
		t.Fatalf("expected windows")
	}
	if !strings.Contains(wins[0].Text, "second subtitle block") {
		t.Fatalf("window did not absorb following entries: %q", wins[0].Text)
	}
	if strings.Contains(wins[0].Text, "outside the first window") {
		t.Fatalf("window absorbed an entry past its span: %q", wins[0].Text)
	}
}
