package types

// SourceKind tells the pipeline how a transcript was obtained, which in turn
// selects the segmentation policy.
type SourceKind string

const (
	// SourceCaptions is a timed-caption sequence from a captioning API:
	// dense, short entries with real durations.
	SourceCaptions SourceKind = "captions"
	// SourceSubtitles is an uploaded subtitle file: coarser entries, one per
	// subtitle block.
	SourceSubtitles SourceKind = "subtitles"
)

// Entry is one normalized transcript record. Start and Duration are seconds.
type Entry struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
}

// End returns the entry's end offset in seconds.
func (e Entry) End() float64 { return e.Start + e.Duration }

// Window is a contiguous run of entries considered together as one clip
// candidate. Transient; exists only between segmentation and ranking.
type Window struct {
	Start    float64
	End      float64
	Duration float64
	Text     string
	Entries  int
}

// Sentiment is a classifier verdict for a window's text.
type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Clip is the durable output unit. Field names mirror the public API payload.
type Clip struct {
	ID            int       `json:"id"`
	Title         string    `json:"title"`
	StartTime     string    `json:"startTime"`
	EndTime       string    `json:"endTime"`
	Duration      string    `json:"duration"`
	HookText      string    `json:"hookText"`
	ViralityScore int       `json:"viralityScore"`
	Triggers      []string  `json:"triggers"`
	Category      string    `json:"category"`
	Sentiment     Sentiment `json:"sentiment"`
	FFmpegCommand string    `json:"ffmpegCommand"`

	// StartSec/EndSec carry the raw offsets so callers (and the cut executor)
	// do not need to re-parse the display timestamps.
	StartSec float64 `json:"startSec"`
	EndSec   float64 `json:"endSec"`
}

// Summary aggregates a finished analysis.
type Summary struct {
	TotalClips   int     `json:"totalClips"`
	AverageScore float64 `json:"averageScore"`
	TopCategory  string  `json:"topCategory"`
}

// Analysis is the result of one analyze() call.
type Analysis struct {
	Clips   []Clip  `json:"clips"`
	Summary Summary `json:"summary"`
}
