package poker

import "math"

// ComputeEV returns Player 0's expected payoff when both players follow
// sigma everywhere.
func ComputeEV(root *GameNode, sigma *Strategy) float64 {
	return evRecursive(root, sigma, 1.0, 1.0, 1.0, "", 0, false)
}

// ComputeEVWithOverride is ComputeEV except that at every node of the
// overridden information set the acting player plays overrideAction with
// probability 1. The result stays in Player 0's sign.
func ComputeEVWithOverride(root *GameNode, sigma *Strategy, overrideInfoSet string, overrideAction Action) float64 {
	return evRecursive(root, sigma, 1.0, 1.0, 1.0, overrideInfoSet, overrideAction, true)
}

// ExpectedUtility is the counterfactual expected utility EU(I, a) for the
// acting player: the reach-weighted payoff of committing to action a at
// information set I while everything else follows sigma. The tree value is
// kept in Player 0's sign, so it is negated when the acting player is
// Player 1.
func ExpectedUtility(root *GameNode, sigma *Strategy, infoSetID string, action Action, actingPlayer PlayerId) float64 {
	ev := ComputeEVWithOverride(root, sigma, infoSetID, action)
	if actingPlayer == Player1 {
		ev = -ev
	}
	return ev
}

func evRecursive(node *GameNode, sigma *Strategy, reachP0, reachP1, reachChance float64, overrideID string, overrideAction Action, hasOverride bool) float64 {
	if node == nil {
		return 0
	}

	switch node.Type {
	case TerminalNode:
		return reachP0 * reachP1 * reachChance * node.Payoff

	case ChanceNode:
		ev := 0.0
		for i := range node.Children {
			edge := &node.Children[i]
			ev += evRecursive(edge.Child, sigma, reachP0, reachP1, reachChance*edge.Probability, overrideID, overrideAction, hasOverride)
		}
		return ev

	default:
		var actionProbs []float64
		if hasOverride && node.InfoSetID == overrideID {
			actionProbs = make([]float64, len(node.LegalActions))
			for i, a := range node.LegalActions {
				if a == overrideAction {
					actionProbs[i] = 1.0
					break
				}
			}
		} else {
			actionProbs = sigma.Probs(node.InfoSetID)
		}

		ev := 0.0
		for i := range node.Children {
			p := actionProbs[i]
			newReachP0, newReachP1 := reachP0, reachP1
			if node.Player == Player0 {
				newReachP0 *= p
			} else {
				newReachP1 *= p
			}
			ev += evRecursive(node.Children[i].Child, sigma, newReachP0, newReachP1, reachChance, overrideID, overrideAction, hasOverride)
		}
		return ev
	}
}

// BestResponseValue returns the value brPlayer attains against sigma by
// picking the best action separately at each of its own player nodes,
// signed to brPlayer. The maximization is per node, not per information
// set, so the responder effectively sees the opponent's private cards and
// the result is an upper bound on any information-set-respecting best
// response.
func BestResponseValue(root *GameNode, sigma *Strategy, brPlayer PlayerId) float64 {
	return brRecursive(root, sigma, brPlayer, 1.0, 1.0)
}

func brRecursive(node *GameNode, sigma *Strategy, brPlayer PlayerId, reachOpponent, reachChance float64) float64 {
	if node == nil {
		return 0
	}

	switch node.Type {
	case TerminalNode:
		payoff := node.Payoff
		if brPlayer == Player1 {
			payoff = -payoff
		}
		return reachOpponent * reachChance * payoff

	case ChanceNode:
		ev := 0.0
		for i := range node.Children {
			edge := &node.Children[i]
			ev += brRecursive(edge.Child, sigma, brPlayer, reachOpponent, reachChance*edge.Probability)
		}
		return ev

	default:
		if node.Player == brPlayer {
			best := math.Inf(-1)
			for i := range node.Children {
				ev := brRecursive(node.Children[i].Child, sigma, brPlayer, reachOpponent, reachChance)
				if ev > best {
					best = ev
				}
			}
			return best
		}

		probs := sigma.Probs(node.InfoSetID)
		ev := 0.0
		for i := range node.Children {
			ev += brRecursive(node.Children[i].Child, sigma, brPlayer, reachOpponent*probs[i], reachChance)
		}
		return ev
	}
}

// Exploitability is the average of both players' BestResponseValue. It is
// never negative. Because BestResponseValue maximizes per node, it is
// generally positive even at a Nash equilibrium and bounds the true
// exploitability from above.
func Exploitability(root *GameNode, sigma *Strategy) float64 {
	br0 := BestResponseValue(root, sigma, Player0)
	br1 := BestResponseValue(root, sigma, Player1)
	return (br0 + br1) / 2.0
}

// AllExpectedUtilities computes EU(I, a) for every action of every
// information set in the index, signed to the acting player.
func AllExpectedUtilities(g Game, sigma *Strategy, index *InfoSetIndex) map[string]map[Action]float64 {
	result := make(map[string]map[Action]float64, index.NumInfoSets())

	for i := 0; i < index.NumInfoSets(); i++ {
		is := index.InfoSet(i)
		actionEU := make(map[Action]float64, len(is.LegalActions))
		for _, a := range is.LegalActions {
			actionEU[a] = ExpectedUtility(g.Root(), sigma, is.ID, a, is.Player)
		}
		result[is.ID] = actionEU
	}

	return result
}
