// Package checkpoint persists solver logits in a LevelDB database keyed by
// information set id, so a later run can warm-start from a previous
// solution instead of the uniform strategy.
package checkpoint

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/nolimitwaiz/QuantNet-Solver/poker"
)

const logitsPrefix = "lg:"

// Store is a LevelDB-backed checkpoint of a flat logit vector.
type Store struct {
	db    *leveldb.DB
	rOpts *opt.ReadOptions
	wOpts *opt.WriteOptions
}

// Open opens (or creates) the checkpoint database at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "opening checkpoint database")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes the per-info-set slices of w under each info set's id.
func (s *Store) Save(index *poker.InfoSetIndex, w []float64) error {
	batch := new(leveldb.Batch)
	for i := 0; i < index.NumInfoSets(); i++ {
		is := index.InfoSet(i)
		start := index.InfoSetStart(i)
		logits := w[start : start+len(is.LegalActions)]
		batch.Put([]byte(logitsPrefix+is.ID), encodeF64s(logits))
	}

	if err := s.db.Write(batch, s.wOpts); err != nil {
		return errors.Wrap(err, "writing checkpoint batch")
	}
	return nil
}

// Load reassembles a flat logit vector for index. It returns ok=false
// without error when any info set is missing, so callers fall back to the
// uniform start; a stored vector of the wrong width is an error (the
// checkpoint belongs to a different game).
func (s *Store) Load(index *poker.InfoSetIndex) ([]float64, bool, error) {
	w := make([]float64, index.TotalDim())

	for i := 0; i < index.NumInfoSets(); i++ {
		is := index.InfoSet(i)
		start := index.InfoSetStart(i)

		buf, err := s.db.Get([]byte(logitsPrefix+is.ID), s.rOpts)
		if err == leveldb.ErrNotFound {
			return nil, false, nil
		} else if err != nil {
			return nil, false, errors.Wrapf(err, "reading checkpoint for %v", is.ID)
		}

		logits := decodeF64s(buf)
		if len(logits) != len(is.LegalActions) {
			return nil, false, errors.Errorf(
				"checkpoint for %v has %d logits, want %d", is.ID, len(logits), len(is.LegalActions))
		}
		copy(w[start:start+len(logits)], logits)
	}

	return w, true, nil
}

func encodeF64s(values []float64) []byte {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return buf
}

func decodeF64s(buf []byte) []float64 {
	values := make([]float64, len(buf)/8)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
	}
	return values
}
