package poker

import (
	"math"
	"testing"
)

func TestComputeEV_UniformKuhn(t *testing.T) {
	kuhn := NewKuhnPoker()
	index := NewInfoSetIndex(kuhn.InfoSets())
	sigma := UniformStrategy(index)

	ev := ComputeEV(kuhn.Root(), sigma)
	if math.Abs(ev-0.125) > 1e-12 {
		t.Errorf("uniform EV = %v, want 0.125", ev)
	}
}

func TestComputeEV_ForcedLine(t *testing.T) {
	kuhn := NewKuhnPoker()
	index := NewInfoSetIndex(kuhn.InfoSets())

	// P0 always checks then folds, P1 always bets: P0 loses the ante in
	// every deal.
	w := make([]float64, index.TotalDim())
	for _, rank := range []string{"J", "Q", "K"} {
		w[index.PairToFlat("P0:"+rank+":", Check)] = 50
		w[index.PairToFlat("P1:"+rank+":c", Bet)] = 50
		w[index.PairToFlat("P0:"+rank+":cb", Fold)] = 50
	}
	sigma := StrategyFromLogits(w, index)

	ev := ComputeEV(kuhn.Root(), sigma)
	if math.Abs(ev-(-1.0)) > 1e-9 {
		t.Errorf("forced-line EV = %v, want -1", ev)
	}
}

// Mixing the per-action override EVs by the strategy's own probabilities
// must reproduce the unconditional EV.
func TestComputeEVWithOverride_Consistency(t *testing.T) {
	kuhn := NewKuhnPoker()
	index := NewInfoSetIndex(kuhn.InfoSets())

	w := make([]float64, index.TotalDim())
	for i := range w {
		w[i] = 0.3 * float64(i%5)
	}
	sigma := StrategyFromLogits(w, index)
	ev := ComputeEV(kuhn.Root(), sigma)

	for _, is := range index.All() {
		probs := sigma.Probs(is.ID)
		mixed := 0.0
		for a, action := range is.LegalActions {
			mixed += probs[a] * ComputeEVWithOverride(kuhn.Root(), sigma, is.ID, action)
		}
		if math.Abs(mixed-ev) > 1e-10 {
			t.Errorf("%s: mixed override EV = %v, want %v", is.ID, mixed, ev)
		}
	}
}

func TestExpectedUtility_SignConvention(t *testing.T) {
	kuhn := NewKuhnPoker()
	index := NewInfoSetIndex(kuhn.InfoSets())
	sigma := UniformStrategy(index)

	// For Player 1 the expected utility is the negated Player-0 value.
	id := "P1:K:b"
	raw := ComputeEVWithOverride(kuhn.Root(), sigma, id, Call)
	eu := ExpectedUtility(kuhn.Root(), sigma, id, Call, Player1)
	if math.Abs(eu+raw) > 1e-12 {
		t.Errorf("EU = %v, want %v", eu, -raw)
	}

	// For Player 0 they coincide.
	id = "P0:K:"
	raw = ComputeEVWithOverride(kuhn.Root(), sigma, id, Bet)
	eu = ExpectedUtility(kuhn.Root(), sigma, id, Bet, Player0)
	if eu != raw {
		t.Errorf("EU = %v, want %v", eu, raw)
	}
}

// A best response can never do worse than following sigma.
func TestBestResponseValue_DominatesEV(t *testing.T) {
	kuhn := NewKuhnPoker()
	index := NewInfoSetIndex(kuhn.InfoSets())

	for trial := 0; trial < 3; trial++ {
		w := make([]float64, index.TotalDim())
		for i := range w {
			w[i] = math.Cos(float64(3*trial+i)) * float64(trial)
		}
		sigma := StrategyFromLogits(w, index)
		ev := ComputeEV(kuhn.Root(), sigma)

		if br0 := BestResponseValue(kuhn.Root(), sigma, Player0); br0 < ev-1e-10 {
			t.Errorf("trial %d: BR0 = %v < EV = %v", trial, br0, ev)
		}
		if br1 := BestResponseValue(kuhn.Root(), sigma, Player1); br1 < -ev-1e-10 {
			t.Errorf("trial %d: BR1 = %v < -EV = %v", trial, br1, -ev)
		}
	}
}

func TestExploitability_NonNegative(t *testing.T) {
	kuhn := NewKuhnPoker()
	index := NewInfoSetIndex(kuhn.InfoSets())

	for trial := 0; trial < 5; trial++ {
		w := make([]float64, index.TotalDim())
		for i := range w {
			w[i] = math.Sin(float64(7*trial+i)) * float64(trial)
		}
		sigma := StrategyFromLogits(w, index)
		if exploit := Exploitability(kuhn.Root(), sigma); exploit < 0 {
			t.Errorf("trial %d: exploitability = %v < 0", trial, exploit)
		}
	}
}

func TestExploitability_UniformKuhn(t *testing.T) {
	kuhn := NewKuhnPoker()
	index := NewInfoSetIndex(kuhn.InfoSets())
	sigma := UniformStrategy(index)

	if exploit := Exploitability(kuhn.Root(), sigma); math.Abs(exploit-0.5) > 1e-12 {
		t.Errorf("uniform exploitability = %v, want 0.5", exploit)
	}
}

func TestAllExpectedUtilities_CoversIndex(t *testing.T) {
	kuhn := NewKuhnPoker()
	index := NewInfoSetIndex(kuhn.InfoSets())
	sigma := UniformStrategy(index)

	all := AllExpectedUtilities(kuhn, sigma, index)
	if len(all) != index.NumInfoSets() {
		t.Fatalf("got %d info sets, want %d", len(all), index.NumInfoSets())
	}
	for _, is := range index.All() {
		if len(all[is.ID]) != len(is.LegalActions) {
			t.Errorf("%s: got %d utilities, want %d", is.ID, len(all[is.ID]), len(is.LegalActions))
		}
	}
}
