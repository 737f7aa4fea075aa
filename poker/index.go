package poker

import "sort"

func sortInfoSets(infoSets []InfoSet) {
	sort.Slice(infoSets, func(i, j int) bool {
		return infoSets[i].ID < infoSets[j].ID
	})
}

type pairKey struct {
	id     string
	action Action
}

// InfoSetIndex maps between flat strategy-vector positions and
// (information set, action) pairs. Flat positions are contiguous per
// information set, in the order the info sets were given. The index is
// immutable after construction.
type InfoSetIndex struct {
	infoSets   []InfoSet
	idToIdx    map[string]int
	flatToPair [][2]int
	pairToFlat map[pairKey]int
	starts     []int
	totalDim   int
}

// NewInfoSetIndex builds an index over the given information sets,
// preserving their order.
func NewInfoSetIndex(infoSets []InfoSet) *InfoSetIndex {
	idx := &InfoSetIndex{
		infoSets:   append([]InfoSet(nil), infoSets...),
		idToIdx:    make(map[string]int, len(infoSets)),
		pairToFlat: make(map[pairKey]int),
		starts:     make([]int, len(infoSets)),
	}

	flat := 0
	for i, is := range idx.infoSets {
		idx.idToIdx[is.ID] = i
		idx.starts[i] = flat
		for a, action := range is.LegalActions {
			idx.flatToPair = append(idx.flatToPair, [2]int{i, a})
			idx.pairToFlat[pairKey{is.ID, action}] = flat
			flat++
		}
	}
	idx.totalDim = flat
	return idx
}

// TotalDim is the length of the flat strategy vector: the sum of legal
// action counts over all information sets.
func (idx *InfoSetIndex) TotalDim() int {
	return idx.totalDim
}

func (idx *InfoSetIndex) NumInfoSets() int {
	return len(idx.infoSets)
}

// InfoSet returns the i-th information set.
func (idx *InfoSetIndex) InfoSet(i int) InfoSet {
	return idx.infoSets[i]
}

// InfoSetIdx returns the index of the information set with the given ID,
// or -1 if unknown.
func (idx *InfoSetIndex) InfoSetIdx(id string) int {
	if i, ok := idx.idToIdx[id]; ok {
		return i
	}
	return -1
}

// FlatToPair maps a flat position to (info set index, action index).
func (idx *InfoSetIndex) FlatToPair(flat int) (int, int) {
	p := idx.flatToPair[flat]
	return p[0], p[1]
}

// PairToFlat maps (info set ID, action) to the flat position, or -1 if the
// pair is not in the index.
func (idx *InfoSetIndex) PairToFlat(id string, action Action) int {
	if flat, ok := idx.pairToFlat[pairKey{id, action}]; ok {
		return flat
	}
	return -1
}

// InfoSetStart returns the flat position of the first action of the i-th
// information set.
func (idx *InfoSetIndex) InfoSetStart(i int) int {
	return idx.starts[i]
}

// All returns the indexed information sets in order.
func (idx *InfoSetIndex) All() []InfoSet {
	return idx.infoSets
}
