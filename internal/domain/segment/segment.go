// Package segment turns a normalized transcript into candidate windows for
// scoring. Two policies exist because the two upstream formats differ in
// granularity: dense caption feeds accumulate into overlapping windows, while
// coarse subtitle files are stride-sampled into fixed-duration windows.
package segment

import (
	"strings"

	"github.com/clipscout/clipscout/internal/types"
)

const (
	// MaxWindows bounds the output of both policies.
	MaxWindows = 15

	minWindowSeconds = 15.0
	minWindowEntries = 3
	minWindowWords   = 10
	overlapEntries   = 2

	sparseTargetSeeds = 15
	minSeedChars      = 20
)

// Accumulate implements the dense-source policy: entries are gathered into a
// running window which completes once it spans at least 15 seconds and holds
// at least 3 entries. Windows under 10 joined words are discarded and the
// accumulator restarts after them. After an emission the window keeps its
// last 2 entries so consecutive windows share context.
func Accumulate(entries []types.Entry) []types.Window {
	var out []types.Window
	var cur []types.Entry
	var curDur float64

	for _, e := range entries {
		cur = append(cur, e)
		curDur += e.Duration

		if curDur < minWindowSeconds || len(cur) < minWindowEntries {
			continue
		}

		text := joinText(cur)
		if len(strings.Fields(text)) < minWindowWords {
			cur = nil
			curDur = 0
			continue
		}

		last := cur[len(cur)-1]
		out = append(out, types.Window{
			Start:    cur[0].Start,
			End:      last.End(),
			Duration: curDur,
			Text:     text,
			Entries:  len(cur),
		})
		if len(out) >= MaxWindows {
			break
		}

		// Sliding overlap: the next window opens on the tail of this one.
		tail := cur[len(cur)-overlapEntries:]
		cur = append([]types.Entry(nil), tail...)
		curDur = 0
		for _, t := range cur {
			curDur += t.Duration
		}
	}
	return out
}

// SparseSample implements the coarse-source policy: roughly len/15 seeds are
// chosen by stride across the transcript, and each seed opens a fixed-duration
// window that absorbs subsequent entries until windowSeconds is exceeded.
// Seeds with under 20 characters of text are skipped.
func SparseSample(entries []types.Entry, windowSeconds float64) []types.Window {
	if len(entries) == 0 || windowSeconds <= 0 {
		return nil
	}
	stride := len(entries) / sparseTargetSeeds
	if stride < 1 {
		stride = 1
	}

	var out []types.Window
	for i := 0; i < len(entries) && len(out) < MaxWindows; i += stride {
		seed := entries[i]
		if len([]rune(seed.Text)) < minSeedChars {
			continue
		}

		limit := seed.Start + windowSeconds
		var span []types.Entry
		for j := i; j < len(entries) && entries[j].Start < limit; j++ {
			span = append(span, entries[j])
		}

		end := limit
		if lastEnd := span[len(span)-1].End(); lastEnd < end {
			end = lastEnd
		}
		out = append(out, types.Window{
			Start:    seed.Start,
			End:      end,
			Duration: end - seed.Start,
			Text:     joinText(span),
			Entries:  len(span),
		})
	}
	return out
}

func joinText(entries []types.Entry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		if t := strings.TrimSpace(e.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
