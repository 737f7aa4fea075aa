package solver

import (
	"fmt"
	"math"

	"github.com/golang/glog"

	"github.com/nolimitwaiz/QuantNet-Solver/internal/f64"
	"github.com/nolimitwaiz/QuantNet-Solver/poker"
)

// InfoSetData accumulates regrets and reach-weighted strategies for one
// information set.
type InfoSetData struct {
	CumulativeRegret   []float64
	CumulativeStrategy []float64
}

func newInfoSetData(nActions int) *InfoSetData {
	return &InfoSetData{
		CumulativeRegret:   make([]float64, nActions),
		CumulativeStrategy: make([]float64, nActions),
	}
}

func (d *InfoSetData) numActions() int {
	return len(d.CumulativeRegret)
}

// RegretMatchingStrategy converts accumulated regrets to the current
// strategy: max(R,0) normalized, or uniform when no regret is positive.
func (d *InfoSetData) RegretMatchingStrategy() []float64 {
	n := d.numActions()
	strategy := make([]float64, n)
	copy(strategy, d.CumulativeRegret)
	for i, r := range strategy {
		if r < 0 {
			strategy[i] = 0
		}
	}

	total := f64.Sum(strategy)
	if total > 0 {
		f64.ScalUnitary(1.0/total, strategy)
	} else {
		f64.AddConst(1.0/float64(n), strategy)
	}
	return strategy
}

// AverageStrategy normalizes the accumulated strategy sum. This is the
// Nash equilibrium approximation.
func (d *InfoSetData) AverageStrategy() []float64 {
	n := d.numActions()
	avg := make([]float64, n)

	total := f64.Sum(d.CumulativeStrategy)
	if total > 0 {
		f64.ScalUnitaryTo(avg, 1.0/total, d.CumulativeStrategy)
	} else {
		f64.AddConst(1.0/float64(n), avg)
	}
	return avg
}

// CFRStats is the payload of the CFR progress callback.
type CFRStats struct {
	Iteration      int
	Exploitability float64
	AvgRegret      float64
}

type CFRCallback func(CFRStats)

// CFR is tabular counterfactual regret minimization over a poker game
// tree. The average strategy converges to a Nash equilibrium at O(1/√T).
// The CFR+ variant floors negative accumulated regrets to zero after every
// iteration, which is empirically faster.
type CFR struct {
	game       poker.Game
	index      *poker.InfoSetIndex
	data       map[string]*InfoSetData
	iterations int
	plus       bool
	callback   CFRCallback
	slicePool  *floatSlicePool
}

func NewCFR(game poker.Game) *CFR {
	return newCFR(game, false)
}

func NewCFRPlus(game poker.Game) *CFR {
	return newCFR(game, true)
}

func newCFR(game poker.Game, plus bool) *CFR {
	c := &CFR{
		game:      game,
		index:     poker.NewInfoSetIndex(game.InfoSets()),
		data:      make(map[string]*InfoSetData),
		plus:      plus,
		slicePool: &floatSlicePool{},
	}
	for _, is := range c.index.All() {
		c.data[is.ID] = newInfoSetData(len(is.LegalActions))
	}
	return c
}

// SetCallback registers a progress callback, invoked every 10 iterations
// and on the final one.
func (c *CFR) SetCallback(callback CFRCallback) {
	c.callback = callback
}

func (c *CFR) Iterations() int { return c.iterations }

func (c *CFR) Index() *poker.InfoSetIndex { return c.index }

// Data returns the accumulated regret tables, for analysis.
func (c *CFR) Data() map[string]*InfoSetData { return c.data }

// Solve runs the given number of iterations, traversing for both players
// in each.
func (c *CFR) Solve(iterations int) {
	for iter := 0; iter < iterations; iter++ {
		c.iterations++

		for _, player := range []poker.PlayerId{poker.Player0, poker.Player1} {
			c.runHelper(c.game.Root(), player, 1.0, 1.0, 1.0)
		}

		if c.plus {
			for _, data := range c.data {
				for i, r := range data.CumulativeRegret {
					if r < 0 {
						data.CumulativeRegret[i] = 0
					}
				}
			}
		}

		if c.callback != nil && (iter%10 == 0 || iter == iterations-1) {
			stats := CFRStats{
				Iteration:      c.iterations,
				Exploitability: c.Exploitability(),
				AvgRegret:      c.avgRegret(),
			}
			c.callback(stats)
		}
	}

	glog.V(1).Infof("cfr: %d iterations over %d infosets", c.iterations, len(c.data))
}

func (c *CFR) runHelper(node *poker.GameNode, traverser poker.PlayerId, reachP0, reachP1, reachChance float64) float64 {
	if node == nil {
		return 0
	}

	switch node.Type {
	case poker.TerminalNode:
		payoff := node.Payoff
		if traverser == poker.Player1 {
			payoff = -payoff
		}
		return payoff

	case poker.ChanceNode:
		ev := 0.0
		for i := range node.Children {
			edge := &node.Children[i]
			ev += edge.Probability * c.runHelper(edge.Child, traverser, reachP0, reachP1, reachChance*edge.Probability)
		}
		return ev

	default:
		data := c.getData(node)
		strategy := data.RegretMatchingStrategy()

		actionValues := c.slicePool.alloc(len(node.Children))
		for i := range node.Children {
			newReachP0, newReachP1 := reachP0, reachP1
			if node.Player == poker.Player0 {
				newReachP0 *= strategy[i]
			} else {
				newReachP1 *= strategy[i]
			}
			actionValues[i] = c.runHelper(node.Children[i].Child, traverser, newReachP0, newReachP1, reachChance)
		}

		nodeValue := f64.Dot(strategy, actionValues)

		if node.Player == traverser {
			cfReach := counterfactualReach(traverser, reachP0, reachP1) * reachChance
			for i, v := range actionValues {
				data.CumulativeRegret[i] += cfReach * (v - nodeValue)
			}
		}

		playerReach := reachP0
		if node.Player == poker.Player1 {
			playerReach = reachP1
		}
		f64.AxpyUnitary(playerReach, strategy, data.CumulativeStrategy)

		c.slicePool.free(actionValues)
		return nodeValue
	}
}

func (c *CFR) getData(node *poker.GameNode) *InfoSetData {
	data, ok := c.data[node.InfoSetID]
	if !ok {
		panic(fmt.Errorf("unknown information set: %v", node.InfoSetID))
	}
	if data.numActions() != len(node.Children) {
		panic(fmt.Errorf("infoset has n_actions=%v but node has n_children=%v: %v",
			data.numActions(), len(node.Children), node.InfoSetID))
	}
	return data
}

// counterfactualReach is the probability of reaching a node assuming the
// traverser tried to reach it.
func counterfactualReach(player poker.PlayerId, reachP0, reachP1 float64) float64 {
	if player == poker.Player0 {
		return reachP1
	}
	return reachP0
}

// CurrentStrategy returns the regret-matching strategy as a logit-
// parameterized poker.Strategy.
func (c *CFR) CurrentStrategy() *poker.Strategy {
	return c.toStrategy(func(d *InfoSetData) []float64 { return d.RegretMatchingStrategy() })
}

// AverageStrategy returns the normalized accumulated strategy, the Nash
// approximation.
func (c *CFR) AverageStrategy() *poker.Strategy {
	return c.toStrategy(func(d *InfoSetData) []float64 { return d.AverageStrategy() })
}

func (c *CFR) toStrategy(probs func(*InfoSetData) []float64) *poker.Strategy {
	w := make([]float64, c.index.TotalDim())

	for i := 0; i < c.index.NumInfoSets(); i++ {
		is := c.index.InfoSet(i)
		start := c.index.InfoSetStart(i)
		p := probs(c.data[is.ID])
		for a := range is.LegalActions {
			w[start+a] = math.Log(math.Max(p[a], 1e-10))
		}
	}

	return poker.StrategyFromLogits(w, c.index)
}

// Exploitability of the current average strategy.
func (c *CFR) Exploitability() float64 {
	return poker.Exploitability(c.game.Root(), c.AverageStrategy())
}

func (c *CFR) avgRegret() float64 {
	total := 0.0
	count := 0
	for _, data := range c.data {
		for _, r := range data.CumulativeRegret {
			total += math.Abs(r)
		}
		count += data.numActions()
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}
