package poker

import (
	"math"

	"github.com/nolimitwaiz/QuantNet-Solver/internal/f64"
)

// QREResidual is the quantal response fixed-point residual
//
//	R(w) = σ(w) − LogitBRβ(σ(w))
//
// flattened over the game's information set index. A root of R is the
// β-QRE of the game; as β grows the QRE approaches a Nash equilibrium.
//
// Evaluate is a pure function of w over the immutable game tree and may be
// called concurrently (the finite-difference Jacobian does). SetBeta must
// only be called between solves.
type QREResidual struct {
	game  Game
	index *InfoSetIndex
	beta  float64
}

// NewQREResidual builds the residual for game at rationality beta.
func NewQREResidual(game Game, beta float64) *QREResidual {
	return &QREResidual{
		game:  game,
		index: NewInfoSetIndex(game.InfoSets()),
		beta:  beta,
	}
}

func (q *QREResidual) Index() *InfoSetIndex { return q.index }
func (q *QREResidual) Beta() float64        { return q.beta }
func (q *QREResidual) SetBeta(beta float64) { q.beta = beta }

// Dim is the length of both the input and output of Evaluate.
func (q *QREResidual) Dim() int { return q.index.TotalDim() }

// LogitBestResponse computes the flat vector of logit best-response
// probabilities exp(β·EU)/Z per information set, via stable softmax.
func (q *QREResidual) LogitBestResponse(sigma *Strategy) []float64 {
	br := make([]float64, q.index.TotalDim())

	for i := 0; i < q.index.NumInfoSets(); i++ {
		is := q.index.InfoSet(i)
		start := q.index.InfoSetStart(i)

		scaled := make([]float64, len(is.LegalActions))
		for a, action := range is.LegalActions {
			scaled[a] = q.beta * ExpectedUtility(q.game.Root(), sigma, is.ID, action, is.Player)
		}

		maxEU := math.Inf(-1)
		for _, v := range scaled {
			if v > maxEU {
				maxEU = v
			}
		}
		for a, v := range scaled {
			br[start+a] = math.Exp(v - maxEU)
		}
		z := f64.Sum(br[start : start+len(is.LegalActions)])
		f64.ScalUnitary(1.0/z, br[start:start+len(is.LegalActions)])
	}

	return br
}

// Evaluate computes R(w) = σ(w) − LogitBRβ(σ(w)).
func (q *QREResidual) Evaluate(w []float64) []float64 {
	sigma := StrategyFromLogits(w, q.index)
	br := q.LogitBestResponse(sigma)

	r := make([]float64, q.index.TotalDim())
	for i := 0; i < q.index.NumInfoSets(); i++ {
		is := q.index.InfoSet(i)
		start := q.index.InfoSetStart(i)
		probs := sigma.Probs(is.ID)
		for a := range is.LegalActions {
			r[start+a] = probs[a] - br[start+a]
		}
	}

	return r
}
