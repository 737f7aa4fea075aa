package poker

// ChildEdge connects a node to one child. At player nodes the edge carries
// the action taken; at chance nodes it carries the dealt card and its
// probability. Each edge exclusively owns its child subtree.
type ChildEdge struct {
	Action      Action
	Card        Card
	Probability float64
	Child       *GameNode
}

// GameNode is a node in the extensive-form game tree. The tree is built once
// by a game constructor and is immutable afterwards, so it may be shared
// freely between goroutines.
type GameNode struct {
	Type         NodeType
	Player       PlayerId // player nodes
	InfoSetID    string   // player nodes
	LegalActions []Action // player nodes, same order as action edges
	Children     []ChildEdge
	Payoff       float64 // terminal nodes, signed to Player 0
	Pot          int
	History      string
	P0Card       Card
	P1Card       Card
	PublicCard   Card
}

// GetChild returns the child reached by taking action a, or nil if a is not
// legal here.
func (n *GameNode) GetChild(a Action) *GameNode {
	for i := range n.Children {
		if n.Children[i].Action == a {
			return n.Children[i].Child
		}
	}
	return nil
}

// GetChanceChild returns the child reached when chance deals c, or nil.
func (n *GameNode) GetChanceChild(c Card) *GameNode {
	for i := range n.Children {
		if n.Children[i].Card == c {
			return n.Children[i].Child
		}
	}
	return nil
}

// IsLegal reports whether a is a legal action at this node.
func (n *GameNode) IsLegal(a Action) bool {
	for _, legal := range n.LegalActions {
		if legal == a {
			return true
		}
	}
	return false
}

// Walk visits the tree in pre-order, calling visit with each node and its
// depth from root.
func Walk(node *GameNode, visit func(node *GameNode, depth int)) {
	walk(node, visit, 0)
}

func walk(node *GameNode, visit func(node *GameNode, depth int), depth int) {
	if node == nil {
		return
	}

	visit(node, depth)
	for i := range node.Children {
		walk(node.Children[i].Child, visit, depth+1)
	}
}

// TreeStats summarizes the shape of a game tree.
type TreeStats struct {
	TotalNodes    int
	ChanceNodes   int
	PlayerNodes   int
	TerminalNodes int
	MaxDepth      int
}

func ComputeTreeStats(root *GameNode) TreeStats {
	var stats TreeStats
	Walk(root, func(node *GameNode, depth int) {
		stats.TotalNodes++
		if depth > stats.MaxDepth {
			stats.MaxDepth = depth
		}
		switch node.Type {
		case ChanceNode:
			stats.ChanceNodes++
		case PlayerNode:
			stats.PlayerNodes++
		case TerminalNode:
			stats.TerminalNodes++
		}
	})
	return stats
}

// Game is a fully-built poker game.
type Game interface {
	// Root returns the root of the game tree.
	Root() *GameNode
	// InfoSets returns all information sets sorted by ID, each with its
	// legal actions in tree order.
	InfoSets() []InfoSet
	// Name returns a human-readable game name.
	Name() string
	// DeckSize returns the number of cards in the deck.
	DeckSize() int
}

// collectInfoSets walks the tree and returns every information set sorted
// by ID for deterministic ordering.
func collectInfoSets(root *GameNode) []InfoSet {
	seen := make(map[string]InfoSet)
	Walk(root, func(node *GameNode, _ int) {
		if node.Type != PlayerNode {
			return
		}
		if _, ok := seen[node.InfoSetID]; !ok {
			seen[node.InfoSetID] = InfoSet{
				ID:           node.InfoSetID,
				Player:       node.Player,
				LegalActions: node.LegalActions,
			}
		}
	})

	result := make([]InfoSet, 0, len(seen))
	for _, is := range seen {
		result = append(result, is)
	}
	sortInfoSets(result)
	return result
}
