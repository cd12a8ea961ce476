package fusion

import (
	"fmt"
	"math"
	"sort"

	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/ports"
	"smcSignalBot/internal/strategy/detectors"
)

// weightTolerance absorbs float noise when comparing the weight sum with the maximum.
const weightTolerance = 1e-6

// Result is the fused score of one snapshot.
type Result struct {
	Total     float64
	Raw       float64 // sum of capped contributions before the penalty
	MaxScore  float64
	Penalty   float64 // multiplier applied to Raw, 1 when none
	Breakdown domain.ScoreBreakdown
}

// Engine sums capped detector contributions against an explicit weight table.
type Engine struct {
	weights  map[domain.Component]float64
	maxScore float64
}

// NewEngine validates the weight table and creates an engine.
// Every weight must be positive and the weights must sum to maxScore.
func NewEngine(weights map[domain.Component]float64, maxScore float64) (*Engine, error) {
	if err := ValidateWeights(weights, maxScore); err != nil {
		return nil, err
	}
	copied := make(map[domain.Component]float64, len(weights))
	for c, w := range weights {
		copied[c] = w
	}
	return &Engine{weights: copied, maxScore: maxScore}, nil
}

// ValidateWeights checks a weight table against its declared maximum.
func ValidateWeights(weights map[domain.Component]float64, maxScore float64) error {
	if len(weights) == 0 {
		return fmt.Errorf("%w: weight table is empty", ports.ErrConfigurationError)
	}
	if maxScore <= 0 {
		return fmt.Errorf("%w: max score must be positive, got %.2f", ports.ErrConfigurationError, maxScore)
	}
	sum := 0.0
	for c, w := range weights {
		if w <= 0 {
			return fmt.Errorf("%w: weight of %s must be positive, got %.2f", ports.ErrConfigurationError, c, w)
		}
		sum += w
	}
	if math.Abs(sum-maxScore) > weightTolerance {
		return fmt.Errorf("%w: weights sum to %.2f but max score is %.2f", ports.ErrConfigurationError, sum, maxScore)
	}
	return nil
}

// MaxScore returns the profile maximum.
func (e *Engine) MaxScore() float64 {
	return e.maxScore
}

// Weight returns the maximum points of a component and whether it is scored.
func (e *Engine) Weight(c domain.Component) (float64, bool) {
	w, ok := e.weights[c]
	return w, ok
}

// Components lists the scored components in a stable order.
func (e *Engine) Components() []domain.Component {
	out := make([]domain.Component, 0, len(e.weights))
	for c := range e.weights {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Fuse clamps each contribution to [0, weight], sums them and applies the
// penalty multiplier. Contributions for components outside the weight table
// are ignored; weighted components without a contribution score zero. The
// total never exceeds the maximum score.
func (e *Engine) Fuse(scores map[domain.Component]detectors.Score, penalty float64) Result {
	if penalty <= 0 || penalty > 1 {
		penalty = 1
	}

	breakdown := make(domain.ScoreBreakdown, len(e.weights))
	raw := 0.0
	for c, limit := range e.weights {
		s, ok := scores[c]
		if !ok {
			breakdown[c] = domain.Contribution{Max: limit, Reason: "not evaluated"}
			continue
		}
		points := math.Max(0, math.Min(limit, s.Points))
		breakdown[c] = domain.Contribution{Points: points, Max: limit, Reason: s.Reason}
		raw += points
	}

	return Result{
		Total:     math.Min(e.maxScore, raw*penalty),
		Raw:       raw,
		MaxScore:  e.maxScore,
		Penalty:   penalty,
		Breakdown: breakdown,
	}
}
