// Package virality holds the heuristic scorers: category classification,
// persuasion-trigger detection and the composite virality score. Everything
// here is a pure function of a window's joined text plus the sentiment
// verdict supplied by the caller.
package virality

import (
	"strings"

	"github.com/clipscout/clipscout/internal/types"
)

// Category values for a classified window.
const (
	CategoryKnowledge = "Trading Knowledge"
	CategoryMindset   = "Trading Mindset/Psychology"
	CategoryRisk      = "Risk Management"
	CategoryGeneral   = "General/Unknown"
)

// categoryVocab is an ordered rule list: ties resolve in declaration order.
// The mindset and psychology vocabularies are tallied separately but both map
// onto the Trading Mindset/Psychology category.
var categoryVocab = []struct {
	category string
	keywords []string
}{
	{CategoryKnowledge, []string{
		"strategy", "technical", "analysis", "chart", "indicator", "pattern",
		"trend", "support", "resistance", "volume", "price", "market",
		"trading", "forex", "stocks", "crypto",
	}},
	{CategoryMindset, []string{
		"discipline", "patience", "consistency", "focus", "confidence",
		"mindset", "mental", "approach", "attitude", "belief",
	}},
	{CategoryMindset, []string{
		"emotion", "fear", "greed", "anxiety", "stress", "psychology",
		"behavior", "bias", "mistake",
	}},
	{CategoryRisk, []string{
		"risk", "loss", "profit", "stop loss", "position size", "drawdown",
		"leverage", "capital", "account",
	}},
}

// triggerVocab is the fixed persuasion-trigger taxonomy. A category
// contributes at most once no matter how many of its keywords match.
var triggerVocab = []struct {
	name     string
	keywords []string
}{
	{"Pattern Interrupt", []string{"surprising", "shocking", "unexpected", "never", "secret", "hidden", "revealed"}},
	{"Curiosity Gap", []string{"why", "how", "what", "discover", "learn", "find out", "revealed", "secret"}},
	{"Emotional Resonance", []string{"love", "hate", "amazing", "terrible", "incredible", "shocking", "devastating"}},
	{"Authority", []string{"expert", "proven", "research", "study", "data", "statistics", "successful"}},
	{"Relatability", []string{"struggle", "problem", "challenge", "difficulty", "everyone", "most people"}},
	{"Social Currency", []string{"share", "tell", "news", "breakthrough", "revolutionary", "game-changer"}},
	{"Transformation Arc", []string{"before", "after", "changed", "transformed", "improved", "fixed", "solved"}},
}

// FallbackTriggers is substituted by the sparse policy when detection yields
// nothing, so coarse sources still produce output.
var FallbackTriggers = []string{"Authority", "Relatability"}

// MinTriggersDense is the hard filter applied by the dense policy: windows
// with fewer detected triggers are excluded from output entirely.
const MinTriggersDense = 2

// categoryOrder fixes the tie-break: first declared wins.
var categoryOrder = []string{CategoryKnowledge, CategoryMindset, CategoryRisk}

// Categorize matches the text against the ordered vocabularies and returns
// the category with the most keyword hits. Zero hits yield General/Unknown.
func Categorize(text string) string {
	lower := strings.ToLower(text)

	tally := make(map[string]int, len(categoryOrder))
	for _, v := range categoryVocab {
		for _, kw := range v.keywords {
			if strings.Contains(lower, kw) {
				tally[v.category]++
			}
		}
	}

	best := CategoryGeneral
	bestHits := 0
	for _, cat := range categoryOrder {
		if tally[cat] > bestHits {
			best = cat
			bestHits = tally[cat]
		}
	}
	return best
}

// DetectTriggers returns the persuasion-trigger categories present in the
// text, in taxonomy declaration order.
func DetectTriggers(text string) []string {
	lower := strings.ToLower(text)

	var out []string
	for _, t := range triggerVocab {
		for _, kw := range t.keywords {
			if strings.Contains(lower, kw) {
				out = append(out, t.name)
				break
			}
		}
	}
	return out
}

// Score computes the composite virality score. Canonical formula: base 50,
// +15 positive / +10 negative sentiment (negative affect still engages),
// +8 per trigger capped at +25, +10 for mindset/psychology content, plus a
// classifier-confidence bonus. Clamped to [0, 100].
func Score(sentiment types.Sentiment, triggers []string, category string) int {
	score := 50

	label := strings.ToUpper(sentiment.Label)
	switch {
	case strings.Contains(label, "POSITIVE"):
		score += 15
	case strings.Contains(label, "NEGATIVE"):
		score += 10
	}

	triggerBonus := len(triggers) * 8
	if triggerBonus > 25 {
		triggerBonus = 25
	}
	score += triggerBonus

	if category == CategoryMindset {
		score += 10
	}

	score += int(sentiment.Score * 10)

	return clamp(score, 0, 100)
}

func clamp(x, a, b int) int {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}
