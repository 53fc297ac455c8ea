package transcript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/clipscout/clipscout/internal/types"
)

// ParseError means a transcript source was structurally unreadable and no
// entries could be recovered. Individually malformed blocks never produce it;
// they are dropped silently.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string { return "transcript parse: " + e.Reason }

var (
	reMarkup    = regexp.MustCompile(`<[^>]*>|\{[^}]*\}`)
	reSRTTiming = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})[,.](\d{1,3})$`)
)

const minEntryChars = 5

// FromCaptions normalizes a timed-caption sequence: markup stripped, text
// trimmed, empty and near-empty entries dropped. Entries keep source order.
func FromCaptions(entries []types.Entry) []types.Entry {
	out := make([]types.Entry, 0, len(entries))
	for _, e := range entries {
		text := cleanText(e.Text)
		if text == "" || e.Duration <= 0 {
			continue
		}
		out = append(out, types.Entry{Start: e.Start, Duration: e.Duration, Text: text})
	}
	return out
}

// ParseSRT converts raw subtitle-file content into the canonical entry
// sequence. Blocks are separated by blank lines; each holds an index line, a
// "HH:MM:SS,mmm --> HH:MM:SS,mmm" timing line and one or more text lines.
// Durations are synthesized from the declared end time. Blocks with no timing
// separator and entries whose cleaned text is under 5 characters are skipped.
func ParseSRT(content string) ([]types.Entry, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	blocks := strings.Split(content, "\n\n")

	var out []types.Entry
	for _, block := range blocks {
		e, ok := parseBlock(block)
		if !ok {
			continue
		}
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil, &ParseError{Reason: "no valid subtitle blocks found"}
	}
	return out, nil
}

func parseBlock(block string) (types.Entry, bool) {
	lines := strings.Split(strings.TrimSpace(block), "\n")
	timingIdx := -1
	for i, ln := range lines {
		if strings.Contains(ln, "-->") {
			timingIdx = i
			break
		}
	}
	if timingIdx == -1 || timingIdx == len(lines)-1 {
		return types.Entry{}, false
	}

	parts := strings.SplitN(lines[timingIdx], "-->", 2)
	start, err := parseSRTTime(strings.TrimSpace(parts[0]))
	if err != nil {
		return types.Entry{}, false
	}
	end, err := parseSRTTime(strings.TrimSpace(parts[1]))
	if err != nil || end <= start {
		return types.Entry{}, false
	}

	text := cleanText(strings.Join(lines[timingIdx+1:], " "))
	if len([]rune(text)) < minEntryChars {
		return types.Entry{}, false
	}
	return types.Entry{Start: start, Duration: end - start, Text: text}, true
}

func parseSRTTime(s string) (float64, error) {
	m := reSRTTiming.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("bad srt time %q", s)
	}
	h, _ := strconv.Atoi(m[1])
	mi, _ := strconv.Atoi(m[2])
	sec, _ := strconv.Atoi(m[3])
	ms, _ := strconv.Atoi(m[4])
	return float64(h*3600+mi*60+sec) + float64(ms)/1000, nil
}

func cleanText(s string) string {
	s = reMarkup.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}
