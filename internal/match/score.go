package match

import (
	"math"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/avelara/portify/internal/catalog"
)

// Scoring weights and bounds. Weights sum to 1.0 so combined scores stay in
// [0, 1]. Tuned by hand, not measured constants.
const (
	titleWeight    = 0.5
	artistWeight   = 0.35
	durationWeight = 0.15

	// durationWindow is the difference, in seconds, at which the duration
	// term bottoms out at zero.
	durationWindow = 30.0

	// neutralDuration is used when either side's duration is unknown.
	neutralDuration = 0.5

	// DefaultThreshold is the minimum combined score for a match.
	DefaultThreshold = 0.6

	// HighConfidence marks matches unlikely to need manual review.
	HighConfidence = 0.85
)

// Confidence tiers a match by its score; it never affects match selection.
type Confidence int

const (
	ConfidenceNone Confidence = iota
	ConfidenceLow
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceLow:
		return "low"
	case ConfidenceHigh:
		return "high"
	default:
		return ""
	}
}

// MissReason says why a track produced no match.
type MissReason int

const (
	MissNone MissReason = iota

	// MissNoSearchResults: the destination search returned nothing (or the
	// search call itself failed).
	MissNoSearchResults

	// MissBelowThreshold: candidates existed but none scored high enough.
	MissBelowThreshold
)

func (r MissReason) String() string {
	switch r {
	case MissNoSearchResults:
		return "no search results"
	case MissBelowThreshold:
		return "no candidate above threshold"
	default:
		return ""
	}
}

// Outcome is the result of matching one source track. Candidate is nil for
// unmatched tracks, in which case Reason is set.
type Outcome struct {
	Source     catalog.Track
	Candidate  *catalog.Track
	Score      float64
	Confidence Confidence
	Reason     MissReason
}

// Matched reports whether a candidate was selected.
func (o Outcome) Matched() bool {
	return o.Candidate != nil
}

// Scorer selects the best destination candidate for a source track.
// Safe for concurrent use.
type Scorer struct {
	threshold float64
	metric    *metrics.Levenshtein
}

// NewScorer creates a scorer with the given minimum score threshold;
// values outside (0, 1] fall back to [DefaultThreshold].
func NewScorer(threshold float64) *Scorer {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Scorer{threshold: threshold, metric: metrics.NewLevenshtein()}
}

// SelectBest scores every candidate against the source track and picks the
// highest scorer, breaking ties by earliest position (search relevance
// order). Candidates below the threshold yield an unmatched outcome.
// Never fails for any well-formed input.
func (s *Scorer) SelectBest(source catalog.Track, candidates []catalog.Track) Outcome {
	if len(candidates) == 0 {
		return Outcome{Source: source, Reason: MissNoSearchResults}
	}

	srcKey := Normalize(source)

	bestIdx := 0
	bestScore := -1.0
	for i, candidate := range candidates {
		if score := s.score(srcKey, source, candidate); score > bestScore {
			bestIdx, bestScore = i, score
		}
	}

	if bestScore < s.threshold {
		return Outcome{Source: source, Score: bestScore, Reason: MissBelowThreshold}
	}

	selected := candidates[bestIdx]
	confidence := ConfidenceLow
	if bestScore >= HighConfidence {
		confidence = ConfidenceHigh
	}

	return Outcome{
		Source:     source,
		Candidate:  &selected,
		Score:      bestScore,
		Confidence: confidence,
	}
}

// Score computes the combined similarity between a source track and a single
// candidate, in [0, 1].
func (s *Scorer) Score(source, candidate catalog.Track) float64 {
	return s.score(Normalize(source), source, candidate)
}

func (s *Scorer) score(srcKey Key, source, candidate catalog.Track) float64 {
	candKey := Normalize(candidate)

	title := s.similarity(srcKey.Title, candKey.Title)

	// Artist term takes the best similarity across the candidate's listed
	// artists; an empty artist list on either side contributes nothing.
	artist := 0.0
	if src := srcKey.PrimaryArtist(); src != "" {
		for _, cand := range candKey.Artists {
			if sim := s.similarity(src, cand); sim > artist {
				artist = sim
			}
		}
	}

	duration := neutralDuration
	if source.DurationSec > 0 && candidate.DurationSec > 0 {
		diff := math.Abs(float64(source.DurationSec - candidate.DurationSec))
		duration = 1 - math.Min(1, diff/durationWindow)
	}

	return titleWeight*title + artistWeight*artist + durationWeight*duration
}

// similarity is a normalized edit-distance ratio: symmetric, 1.0 for
// identical strings, 0.0 for fully disjoint ones.
func (s *Scorer) similarity(a, b string) float64 {
	return strutil.Similarity(a, b, s.metric)
}
