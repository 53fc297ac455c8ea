// Package clips assembles scored windows into presentable clip records:
// titles, hooks, display timestamps, the derived ffmpeg invocation, ranking
// and summary statistics.
package clips

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"unicode"

	"github.com/clipscout/clipscout/internal/types"
)

// MaxClips caps the final ranked list.
const MaxClips = 15

const hookLimit = 100

var titleTemplates = []string{
	"The {emotion} That Changed Everything",
	"Why Most Traders Fail at This",
	"The {number} Second Rule That Saves Accounts",
	"When {emotion} Becomes Your Biggest Asset",
	"The Psychology Behind This Trading Mistake",
	"How to Turn {emotion} Into Profit",
	"The Hidden Truth About Trading {concept}",
	"Why This Trading Psychology Trick Works",
	"The Mindset Shift That Changes Everything",
	"When Losing Becomes Winning",
}

var (
	titleEmotions = []string{"fear", "greed", "anxiety", "confidence", "doubt", "panic"}
	titleConcepts = []string{"discipline", "strategy", "risk", "psychology", "mindset"}
	titleNumbers  = []string{"3", "5", "10", "30"}
)

// Build creates a clip record from a scored window. IDs are assigned by the
// caller in processing order and never re-numbered after ranking.
func Build(id int, w types.Window, sentiment types.Sentiment, category string, triggers []string, score int, input string) types.Clip {
	title := Title(id, w.Text)
	return types.Clip{
		ID:            id,
		Title:         title,
		StartTime:     FormatTimestamp(w.Start),
		EndTime:       FormatTimestamp(w.End),
		Duration:      fmt.Sprintf("%ds", int(w.End-w.Start)),
		HookText:      Hook(w.Text),
		ViralityScore: score,
		Triggers:      triggers,
		Category:      category,
		Sentiment:     sentiment,
		FFmpegCommand: CutCommand(input, w.Start, w.End, title),
		StartSec:      w.Start,
		EndSec:        w.End,
	}
}

// Title picks a template deterministically from the clip id and window text,
// then fills its slots with words found in the text. Repeated runs over the
// same transcript always produce the same titles.
func Title(id int, text string) string {
	words := strings.Fields(strings.ToLower(text))
	has := make(map[string]bool, len(words))
	for _, w := range words {
		has[strings.Trim(w, ".,!?")] = true
	}

	pick := func(options []string, fallback string) string {
		for _, o := range options {
			if has[o] {
				return o
			}
		}
		return fallback
	}
	emotion := pick(titleEmotions, "fear")
	concept := pick(titleConcepts, "psychology")
	number := pick(titleNumbers, "3")

	h := fnv.New32a()
	h.Write([]byte(text))
	idx := int((h.Sum32() ^ uint32(id)) % uint32(len(titleTemplates)))

	r := strings.NewReplacer(
		"{emotion}", titleCase(emotion),
		"{concept}", titleCase(concept),
		"{number}", number,
	)
	return r.Replace(titleTemplates[idx])
}

// Hook returns the first one or two sentences, truncated to ~100 characters
// with an ellipsis marker.
func Hook(text string) string {
	sentences := strings.SplitN(text, ".", 3)
	n := len(sentences)
	if n > 2 {
		n = 2
	}
	hook := strings.TrimSpace(strings.Join(sentences[:n], "."))
	if len(hook) > hookLimit {
		hook = hook[:hookLimit-3] + "..."
	}
	return hook
}

// CutCommand renders the external-tool invocation that would cut the source
// media at the clip boundaries. The core never executes it.
func CutCommand(input string, start, end float64, title string) string {
	if input == "" {
		input = "input.mp4"
	}
	return fmt.Sprintf("ffmpeg -ss %s -to %s -i %s -c copy %q",
		FormatTimestamp(start), FormatTimestamp(end), input, Slug(title)+".mp4")
}

// Rank stable-sorts by virality score descending (ties keep assignment order)
// and truncates to MaxClips.
func Rank(list []types.Clip) []types.Clip {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].ViralityScore > list[j].ViralityScore
	})
	if len(list) > MaxClips {
		list = list[:MaxClips]
	}
	return list
}

// Summarize computes the roll-up statistics for a finished analysis. The
// modal category tie-breaks on first encounter in clip order.
func Summarize(list []types.Clip) types.Summary {
	if len(list) == 0 {
		return types.Summary{TopCategory: "No clips found"}
	}

	total := 0
	counts := map[string]int{}
	var order []string
	for _, c := range list {
		total += c.ViralityScore
		if _, seen := counts[c.Category]; !seen {
			order = append(order, c.Category)
		}
		counts[c.Category]++
	}

	top := order[0]
	for _, cat := range order {
		if counts[cat] > counts[top] {
			top = cat
		}
	}

	avg := float64(total) / float64(len(list))
	return types.Summary{
		TotalClips:   len(list),
		AverageScore: float64(int(avg*10+0.5)) / 10,
		TopCategory:  top,
	}
}

// FormatTimestamp renders seconds as MM:SS, or HH:MM:SS at one hour and above.
func FormatTimestamp(seconds float64) string {
	s := int(seconds)
	if s < 0 {
		s = 0
	}
	if s >= 3600 {
		return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
	}
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

// ParseTimestamp is the inverse of FormatTimestamp.
func ParseTimestamp(ts string) (int, error) {
	parts := strings.Split(ts, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("bad timestamp %q", ts)
	}
	total := 0
	for _, p := range parts {
		v := 0
		if _, err := fmt.Sscanf(p, "%d", &v); err != nil || v < 0 {
			return 0, fmt.Errorf("bad timestamp %q", ts)
		}
		total = total*60 + v
	}
	return total, nil
}

// Slug converts a title into a safe lowercase file name segment.
func Slug(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('_')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
