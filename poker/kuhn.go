package poker

// KuhnPoker is the classic 3-card, 1-chip-ante game. Both players ante 1,
// Player 0 acts first, and a single bet of 1 chip is allowed.
type KuhnPoker struct {
	root     *GameNode
	infoSets []InfoSet
}

// NewKuhnPoker builds the complete Kuhn game tree.
func NewKuhnPoker() *KuhnPoker {
	k := &KuhnPoker{}
	k.buildTree()
	k.infoSets = collectInfoSets(k.root)
	return k
}

func (k *KuhnPoker) Root() *GameNode     { return k.root }
func (k *KuhnPoker) InfoSets() []InfoSet { return k.infoSets }
func (k *KuhnPoker) Name() string        { return "Kuhn Poker" }
func (k *KuhnPoker) DeckSize() int       { return 3 }

func kuhnCardName(c Card) string {
	return rankName(int(c))
}

// kuhnInfoSetID is "P{player}:{card}:{history}", e.g. "P0:Q:cb".
func kuhnInfoSetID(player PlayerId, card Card, history string) string {
	return playerPrefix(player) + ":" + kuhnCardName(card) + ":" + history
}

func (k *KuhnPoker) buildTree() {
	k.root = &GameNode{
		Type:       ChanceNode,
		Player:     Chance,
		Pot:        2, // both players ante 1
		P0Card:     -1,
		P1Card:     -1,
		PublicCard: -1,
	}

	// Deal all 6 ordered pairs of distinct cards, 1/6 each.
	const dealProb = 1.0 / 6.0
	for p0Card := Card(0); p0Card < 3; p0Card++ {
		for p1Card := Card(0); p1Card < 3; p1Card++ {
			if p0Card == p1Card {
				continue
			}

			child := &GameNode{
				Type:         PlayerNode,
				Player:       Player0,
				P0Card:       p0Card,
				P1Card:       p1Card,
				PublicCard:   -1,
				Pot:          2,
				LegalActions: []Action{Check, Bet},
				InfoSetID:    kuhnInfoSetID(Player0, p0Card, ""),
			}
			k.buildSubtree(child, Player0, "", p0Card, p1Card, 2)

			k.root.Children = append(k.root.Children, ChildEdge{
				Card:        p0Card*10 + p1Card, // encode both cards
				Probability: dealProb,
				Child:       child,
			})
		}
	}
}

// buildSubtree adds children to an existing player node.
func (k *KuhnPoker) buildSubtree(node *GameNode, toAct PlayerId, history string, p0Card, p1Card Card, pot int) {
	for _, action := range node.LegalActions {
		newHistory := history + string(action.Char())
		child := &GameNode{
			P0Card:     p0Card,
			P1Card:     p1Card,
			PublicCard: -1,
			History:    newHistory,
		}

		if toAct == Player0 {
			switch action {
			case Check:
				// P0 checks, P1 acts.
				child.Type = PlayerNode
				child.Player = Player1
				child.Pot = pot
				child.LegalActions = []Action{Check, Bet}
				child.InfoSetID = kuhnInfoSetID(Player1, p1Card, newHistory)
				k.buildSubtree(child, Player1, newHistory, p0Card, p1Card, pot)
			case Bet:
				// P0 bets 1, P1 must respond.
				child.Type = PlayerNode
				child.Player = Player1
				child.Pot = pot + 1
				child.LegalActions = []Action{Call, Fold}
				child.InfoSetID = kuhnInfoSetID(Player1, p1Card, newHistory)
				k.buildSubtree(child, Player1, newHistory, p0Card, p1Card, pot+1)
			case Call:
				// P0 calls P1's bet after cb.
				child.Pot = pot + 1
				kuhnShowdown(child, p0Card, p1Card, pot+1)
			case Fold:
				kuhnFoldTerminal(child, Player0, pot)
			}
		} else {
			switch action {
			case Check:
				// P1 checks behind: showdown.
				child.Pot = pot
				kuhnShowdown(child, p0Card, p1Card, pot)
			case Bet:
				// P1 bets 1 after P0's check.
				child.Type = PlayerNode
				child.Player = Player0
				child.Pot = pot + 1
				child.LegalActions = []Action{Call, Fold}
				child.InfoSetID = kuhnInfoSetID(Player0, p0Card, newHistory)
				k.buildSubtree(child, Player0, newHistory, p0Card, p1Card, pot+1)
			case Call:
				// P1 calls P0's bet: showdown.
				child.Pot = pot + 1
				kuhnShowdown(child, p0Card, p1Card, pot+1)
			case Fold:
				kuhnFoldTerminal(child, Player1, pot)
			}
		}

		node.Children = append(node.Children, ChildEdge{
			Action: action,
			Child:  child,
		})
	}
}

func kuhnShowdown(node *GameNode, p0Card, p1Card Card, pot int) {
	node.Type = TerminalNode
	node.Player = Chance
	node.Pot = pot

	switch {
	case p0Card > p1Card:
		node.Payoff = float64(pot) / 2.0
	case p0Card < p1Card:
		node.Payoff = -float64(pot) / 2.0
	default:
		node.Payoff = 0
	}
}

// kuhnFoldTerminal awards 1 chip to the non-folder regardless of whether
// the fold came after "b" or "cb". This intentionally does not follow the
// showdown pot/2 convention.
func kuhnFoldTerminal(node *GameNode, folder PlayerId, pot int) {
	node.Type = TerminalNode
	node.Player = Chance
	node.Pot = pot

	if folder == Player0 {
		node.Payoff = -1.0
	} else {
		node.Payoff = 1.0
	}
}
