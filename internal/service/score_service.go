package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/classdesk/classdesk-api/internal/models"
)

// StrugglingThreshold is the fixed cut-off below which a score flags a
// student for review.
const StrugglingThreshold = 60

// Recommendation messages chosen by a single comparison on the average.
const (
	RecommendationReteach = "Review the topic with the whole class before moving on; the average is below the passing threshold."
	RecommendationProceed = "Proceed to the next topic; follow up individually with the flagged students."
)

// trailingScore matches a run of digits at the end of a line, preceded by
// whitespace or a comma and optionally wrapped in stray quote characters.
var trailingScore = regexp.MustCompile(`[\s,]+["']?(\d+)["']?\s*$`)

// ParseScoreLines turns freeform pasted "Name Score" text into structured
// entries. Every non-blank input line yields exactly one record, in input
// order: a line without a trailing number becomes {line, 0} so the user can
// see and correct it rather than losing it silently.
func ParseScoreLines(raw string) []models.ScoreEntry {
	var entries []models.ScoreEntry
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		match := trailingScore.FindStringSubmatchIndex(trimmed)
		if match == nil {
			entries = append(entries, models.ScoreEntry{Name: cleanScoreName(trimmed), Score: 0})
			continue
		}

		score, err := strconv.Atoi(trimmed[match[2]:match[3]])
		if err != nil {
			// Digit run too long for an int: treat like an unparseable line.
			entries = append(entries, models.ScoreEntry{Name: cleanScoreName(trimmed), Score: 0})
			continue
		}
		name := cleanScoreName(trimmed[:match[0]])
		if name == "" {
			name = cleanScoreName(trimmed)
		}
		entries = append(entries, models.ScoreEntry{Name: name, Score: score})
	}
	return entries
}

func cleanScoreName(raw string) string {
	cleaned := strings.Trim(strings.TrimSpace(raw), `"'`)
	return strings.TrimSuffix(strings.TrimSpace(cleaned), ",")
}

// AnalyzeScores derives the aggregate view of a parsed batch: the average
// (zero-safe), the struggling set, and a two-branch recommendation driven by
// the average alone. A non-empty struggling list and a "proceed"
// recommendation can co-exist.
func AnalyzeScores(entries []models.ScoreEntry) models.ScoreAnalysis {
	sum := 0
	for _, entry := range entries {
		sum += entry.Score
	}
	count := len(entries)
	divisor := count
	if divisor == 0 {
		divisor = 1
	}
	average := float64(sum) / float64(divisor)

	struggling := []models.ScoreEntry{}
	for _, entry := range entries {
		if entry.Score < StrugglingThreshold {
			struggling = append(struggling, entry)
		}
	}

	recommendation := RecommendationProceed
	if average < StrugglingThreshold {
		recommendation = RecommendationReteach
	}

	return models.ScoreAnalysis{
		Entries:        entries,
		Average:        average,
		Struggling:     struggling,
		Recommendation: recommendation,
	}
}
