package poker

import "strconv"

// Leduc constants: 6-card deck (3 ranks, 2 suits), two betting rounds with
// a 2-chip small bet and a 4-chip big bet, at most 2 raises per round.
const (
	leducNumCards  = 6
	leducAnte      = 1
	leducSmallBet  = 2
	leducBigBet    = 4
	leducMaxRaises = 2
)

// LeducPoker is the two-round Leduc Hold'em variant. A public card is dealt
// between rounds; a pair with the public card beats any unpaired hand.
type LeducPoker struct {
	root     *GameNode
	infoSets []InfoSet
}

// NewLeducPoker builds the complete Leduc game tree.
func NewLeducPoker() *LeducPoker {
	l := &LeducPoker{}
	l.buildTree()
	l.infoSets = collectInfoSets(l.root)
	return l
}

func (l *LeducPoker) Root() *GameNode     { return l.root }
func (l *LeducPoker) InfoSets() []InfoSet { return l.infoSets }
func (l *LeducPoker) Name() string        { return "Leduc Poker" }
func (l *LeducPoker) DeckSize() int       { return leducNumCards }

func leducRank(c Card) int { return int(c) / 2 }
func leducSuit(c Card) int { return int(c) % 2 }

// leducCompareHands compares showdown hands: a pair with the public card
// beats no pair, otherwise higher rank wins. Suits never matter.
func leducCompareHands(p0Card, p1Card, publicCard Card) int {
	p0Rank := leducRank(p0Card)
	p1Rank := leducRank(p1Card)
	pubRank := leducRank(publicCard)

	p0Pair := p0Rank == pubRank
	p1Pair := p1Rank == pubRank
	if p0Pair && !p1Pair {
		return 1
	}
	if !p0Pair && p1Pair {
		return -1
	}

	if p0Rank > p1Rank {
		return 1
	}
	if p0Rank < p1Rank {
		return -1
	}
	return 0
}

// leducInfoSetID is "P{player}:{private_rank}:{public_rank_or_dash}:R{round}:{history}".
// Only ranks appear: strategies are suit-isomorphic.
func leducInfoSetID(player PlayerId, privateCard, publicCard Card, history string, round int) string {
	pub := "-"
	if publicCard >= 0 {
		pub = rankName(leducRank(publicCard))
	}
	return playerPrefix(player) + ":" + rankName(leducRank(privateCard)) + ":" + pub +
		":R" + strconv.Itoa(round) + ":" + history
}

func (l *LeducPoker) buildTree() {
	l.root = &GameNode{
		Type:       ChanceNode,
		Player:     Chance,
		Pot:        2 * leducAnte,
		P0Card:     -1,
		P1Card:     -1,
		PublicCard: -1,
	}

	// Deal private cards: 6 * 5 = 30 ordered pairs.
	const dealProb = 1.0 / 30.0
	for p0Card := Card(0); p0Card < leducNumCards; p0Card++ {
		for p1Card := Card(0); p1Card < leducNumCards; p1Card++ {
			if p0Card == p1Card {
				continue
			}

			child := &GameNode{
				Type:         PlayerNode,
				Player:       Player0,
				P0Card:       p0Card,
				P1Card:       p1Card,
				PublicCard:   -1,
				Pot:          2 * leducAnte,
				LegalActions: []Action{Check, Bet},
				InfoSetID:    leducInfoSetID(Player0, p0Card, -1, "", 1),
			}
			l.buildBettingRound(child, "", p0Card, p1Card, -1, 2*leducAnte, 0, leducMaxRaises, 1, leducSmallBet)

			l.root.Children = append(l.root.Children, ChildEdge{
				Card:        p0Card*10 + p1Card, // encode both cards
				Probability: dealProb,
				Child:       child,
			})
		}
	}
}

func (l *LeducPoker) buildBettingRound(node *GameNode, history string, p0Card, p1Card, publicCard Card, pot, toCall, raisesLeft, round, betSize int) {
	for _, action := range node.LegalActions {
		newHistory := history + string(action.Char())
		child := &GameNode{
			P0Card:     p0Card,
			P1Card:     p1Card,
			PublicCard: publicCard,
			History:    newHistory,
		}

		current := node.Player
		opponent := Player1
		if current == Player1 {
			opponent = Player0
		}
		oppCard := p1Card
		if opponent == Player0 {
			oppCard = p0Card
		}

		switch action {
		case Fold:
			leducFoldTerminal(child, current, pot)

		case Check:
			if toCall == 0 && history == "" {
				// First check of the hand: opponent acts.
				child.Type = PlayerNode
				child.Player = opponent
				child.Pot = pot
				child.LegalActions = []Action{Check, Bet}
				child.InfoSetID = leducInfoSetID(opponent, oppCard, publicCard, newHistory, round)
				l.buildBettingRound(child, newHistory, p0Card, p1Card, publicCard, pot, 0, raisesLeft, round, betSize)
			} else if toCall == 0 {
				// Any check with non-empty history ends the round. Note
				// this includes the first check of round 2, whose history
				// already carries the round-1 actions and the '|' marker.
				if round == 1 {
					l.dealPublicCard(child, p0Card, p1Card, pot, newHistory)
				} else {
					leducShowdown(child, p0Card, p1Card, publicCard, pot)
				}
			}

		case Bet:
			newPot := pot + betSize
			child.Type = PlayerNode
			child.Player = opponent
			child.Pot = newPot
			if raisesLeft > 0 {
				child.LegalActions = []Action{Fold, Call, Raise}
			} else {
				child.LegalActions = []Action{Fold, Call}
			}
			child.InfoSetID = leducInfoSetID(opponent, oppCard, publicCard, newHistory, round)
			l.buildBettingRound(child, newHistory, p0Card, p1Card, publicCard, newPot, betSize, raisesLeft, round, betSize)

		case Call:
			newPot := pot + toCall
			child.Pot = newPot
			if round == 1 {
				l.dealPublicCard(child, p0Card, p1Card, newPot, newHistory)
			} else {
				leducShowdown(child, p0Card, p1Card, publicCard, newPot)
			}

		case Raise:
			newPot := pot + toCall + betSize
			child.Type = PlayerNode
			child.Player = opponent
			child.Pot = newPot
			newRaises := raisesLeft - 1
			if newRaises > 0 {
				child.LegalActions = []Action{Fold, Call, Raise}
			} else {
				child.LegalActions = []Action{Fold, Call}
			}
			child.InfoSetID = leducInfoSetID(opponent, oppCard, publicCard, newHistory, round)
			l.buildBettingRound(child, newHistory, p0Card, p1Card, publicCard, newPot, betSize, newRaises, round, betSize)
		}

		node.Children = append(node.Children, ChildEdge{
			Action: action,
			Child:  child,
		})
	}
}

// dealPublicCard turns node into the between-rounds chance node that deals
// one of the 4 remaining cards uniformly, then builds round 2.
func (l *LeducPoker) dealPublicCard(node *GameNode, p0Card, p1Card Card, pot int, history string) {
	node.Type = ChanceNode
	node.Player = Chance
	node.Pot = pot

	remaining := 0
	for c := Card(0); c < leducNumCards; c++ {
		if c != p0Card && c != p1Card {
			remaining++
		}
	}
	dealProb := 1.0 / float64(remaining)

	for pub := Card(0); pub < leducNumCards; pub++ {
		if pub == p0Card || pub == p1Card {
			continue
		}

		child := &GameNode{
			Type:         PlayerNode,
			Player:       Player0, // P0 acts first in round 2
			P0Card:       p0Card,
			P1Card:       p1Card,
			PublicCard:   pub,
			Pot:          pot,
			History:      history + "|", // round boundary
			LegalActions: []Action{Check, Bet},
		}
		child.InfoSetID = leducInfoSetID(Player0, p0Card, pub, child.History, 2)
		l.buildBettingRound(child, child.History, p0Card, p1Card, pub, pot, 0, leducMaxRaises, 2, leducBigBet)

		node.Children = append(node.Children, ChildEdge{
			Card:        pub,
			Probability: dealProb,
			Child:       child,
		})
	}
}

func leducShowdown(node *GameNode, p0Card, p1Card, publicCard Card, pot int) {
	node.Type = TerminalNode
	node.Player = Chance
	node.Pot = pot

	switch cmp := leducCompareHands(p0Card, p1Card, publicCard); {
	case cmp > 0:
		node.Payoff = float64(pot) / 2.0
	case cmp < 0:
		node.Payoff = -float64(pot) / 2.0
	default:
		node.Payoff = 0 // split pot
	}
}

func leducFoldTerminal(node *GameNode, folder PlayerId, pot int) {
	node.Type = TerminalNode
	node.Player = Chance
	node.Pot = pot

	if folder == Player0 {
		node.Payoff = -float64(pot) / 2.0
	} else {
		node.Payoff = float64(pot) / 2.0
	}
}
