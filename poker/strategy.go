package poker

import (
	"fmt"
	"math"

	"github.com/nolimitwaiz/QuantNet-Solver/internal/f64"
)

// Strategy maps each information set to a vector of unconstrained logits,
// one per legal action. Action probabilities are derived on demand by a
// stable softmax, so they always sum to 1 and are strictly positive for
// any finite logits.
//
// Lookups for an information set that is not part of the strategy panic:
// they indicate the caller is using a stale or mismatched index.
type Strategy struct {
	logits  map[string][]float64
	actions map[string][]Action
}

// StrategyFromLogits slices the flat logit vector w into per-info-set
// logit vectors according to the index layout.
func StrategyFromLogits(w []float64, index *InfoSetIndex) *Strategy {
	s := &Strategy{
		logits:  make(map[string][]float64, index.NumInfoSets()),
		actions: make(map[string][]Action, index.NumInfoSets()),
	}

	for i := 0; i < index.NumInfoSets(); i++ {
		is := index.InfoSet(i)
		start := index.InfoSetStart(i)
		n := len(is.LegalActions)

		logits := make([]float64, n)
		copy(logits, w[start:start+n])
		s.logits[is.ID] = logits
		s.actions[is.ID] = is.LegalActions
	}

	return s
}

// UniformStrategy returns the all-zero-logit strategy, which plays every
// legal action with equal probability.
func UniformStrategy(index *InfoSetIndex) *Strategy {
	return StrategyFromLogits(make([]float64, index.TotalDim()), index)
}

// Probs returns the action probabilities at the given information set, in
// legal-action order.
func (s *Strategy) Probs(infoSetID string) []float64 {
	logits, ok := s.logits[infoSetID]
	if !ok {
		panic(fmt.Errorf("unknown information set: %v", infoSetID))
	}
	return stableSoftmax(logits)
}

// Prob returns the probability of playing action at the given information
// set.
func (s *Strategy) Prob(infoSetID string, action Action) float64 {
	actions, ok := s.actions[infoSetID]
	if !ok {
		panic(fmt.Errorf("unknown information set: %v", infoSetID))
	}

	for i, a := range actions {
		if a == action {
			return s.Probs(infoSetID)[i]
		}
	}

	panic(fmt.Errorf("action %v not legal at information set: %v", action, infoSetID))
}

// Logits returns the raw logit vector for the given information set.
func (s *Strategy) Logits(infoSetID string) []float64 {
	logits, ok := s.logits[infoSetID]
	if !ok {
		panic(fmt.Errorf("unknown information set: %v", infoSetID))
	}
	return logits
}

// SetLogits replaces the logits of one information set.
func (s *Strategy) SetLogits(infoSetID string, logits []float64) {
	s.logits[infoSetID] = logits
}

// ToFlatLogits flattens the strategy back into a vector laid out by index.
// Info sets missing from the strategy default to zero logits (uniform).
func (s *Strategy) ToFlatLogits(index *InfoSetIndex) []float64 {
	w := make([]float64, index.TotalDim())

	for i := 0; i < index.NumInfoSets(); i++ {
		is := index.InfoSet(i)
		start := index.InfoSetStart(i)
		if logits, ok := s.logits[is.ID]; ok {
			copy(w[start:start+len(is.LegalActions)], logits)
		}
	}

	return w
}

// ActionProbs renders the full strategy as info set -> action name ->
// probability, the form used by the telemetry sink.
func (s *Strategy) ActionProbs() map[string]map[string]float64 {
	result := make(map[string]map[string]float64, len(s.logits))

	for id, logits := range s.logits {
		actions := s.actions[id]
		probs := stableSoftmax(logits)
		m := make(map[string]float64, len(actions))
		for i, a := range actions {
			m[a.String()] = probs[i]
		}
		result[id] = m
	}

	return result
}

// stableSoftmax is exp(x_i - max x) / sum_j exp(x_j - max x).
func stableSoftmax(x []float64) []float64 {
	maxVal := math.Inf(-1)
	for _, v := range x {
		if v > maxVal {
			maxVal = v
		}
	}

	p := make([]float64, len(x))
	for i, v := range x {
		p[i] = math.Exp(v - maxVal)
	}
	f64.ScalUnitary(1.0/f64.Sum(p), p)
	return p
}
