// Package fuzzy implements approximate filename matching against a scanned
// file inventory. Scores are on a 0-100 scale and a match is accepted only
// when its score is strictly above the threshold.
package fuzzy

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/starford/ansuz/internal/models"
)

// Threshold is the minimum score (exclusive) for a match to be accepted.
const Threshold = 60.0

// Scorer computes a similarity score between two strings on a 0-100 scale.
// Implementations must be deterministic and score identical strings as 100.
type Scorer interface {
	Score(a, b string) float64
}

// overlapScorer scores with the bigram overlap coefficient, which tolerates
// one name being a fragment of the other (e.g. "report" vs "report_final").
// Comparison is case-insensitive.
type overlapScorer struct {
	metric strutil.StringMetric
}

// NewScorer returns the default Scorer.
func NewScorer() Scorer {
	return &overlapScorer{metric: metrics.NewOverlapCoefficient()}
}

func (s *overlapScorer) Score(a, b string) float64 {
	return strutil.Similarity(strings.ToLower(a), strings.ToLower(b), s.metric) * 100
}

// Match is an accepted inventory match.
type Match struct {
	Path  string
	Score float64
}

// Resolver finds the best inventory entry for a candidate filename.
type Resolver struct {
	scorer Scorer
	logger *slog.Logger
}

// NewResolver creates a Resolver. A nil scorer selects the default metric;
// a nil logger selects slog.Default.
func NewResolver(scorer Scorer, logger *slog.Logger) *Resolver {
	if scorer == nil {
		scorer = NewScorer()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{scorer: scorer, logger: logger}
}

// Resolve compares the candidate filename (extension stripped) against every
// inventory stem and returns the highest-scoring entry, if its score exceeds
// Threshold. Ties resolve to the first entry in inventory order. An empty
// inventory or a best score at or below the threshold yields no match.
func (r *Resolver) Resolve(candidate string, inv []models.FileRecord) (Match, bool) {
	if len(inv) == 0 {
		return Match{}, false
	}

	target := strings.TrimSuffix(candidate, filepath.Ext(candidate))

	best := Match{Score: -1}
	for _, rec := range inv {
		score := r.scorer.Score(target, rec.Stem)
		if score > best.Score {
			best = Match{Path: rec.Path, Score: score}
		}
	}

	if best.Score <= Threshold {
		r.logger.Info("fuzzy: no match above threshold",
			slog.String("candidate", candidate),
			slog.Float64("best_score", best.Score))
		return Match{}, false
	}

	r.logger.Info("fuzzy: matched",
		slog.String("candidate", candidate),
		slog.String("path", best.Path),
		slog.Float64("score", best.Score))
	return best, true
}
