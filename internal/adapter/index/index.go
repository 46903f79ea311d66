package index

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"

	"newsradar/internal/domain"
	"newsradar/internal/port"
)

var (
	bucketPositions = []byte("positions") // position (8-byte BE) -> article id
	bucketTexts     = []byte("texts")     // article id -> indexed text
	bucketMeta      = []byte("meta")
	keyDimension    = []byte("dimension")
)

const (
	snapshotFile = "vectors.bin"
	metaFile     = "index.meta.db"
)

// Store is a persisted, append-only vector index over article ids.
//
// Vectors live in a position-ordered in-memory arena searched by inner
// product; insertion L2-normalizes them so inner product equals cosine
// similarity. Positions are permanent: there is no delete or re-index
// operation, and text indexed under an id is never refreshed.
//
// Durable state is a flat binary snapshot of the arena plus a sidecar
// bolt database holding the id<->position mapping and the raw indexed
// text. Both are required together; a missing or corrupt snapshot
// re-initializes an empty index rather than failing startup.
type Store struct {
	mu      sync.RWMutex
	encoder port.Encoder
	db      *bbolt.DB
	dir     string
	log     *logrus.Entry

	dimension int
	vectors   [][]float32
	ids       []string       // position -> id
	positions map[string]int // id -> position
	texts     map[string]string
}

// New opens (or creates) the index under dir. A prior snapshot is
// restored when present and intact; otherwise the index starts empty.
func New(dir string, encoder port.Encoder) (*Store, error) {
	db, err := bbolt.Open(filepath.Join(dir, metaFile), 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open index metadata db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketPositions, bucketTexts, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{
		encoder:   encoder,
		db:        db,
		dir:       dir,
		log:       logrus.WithField("component", "vector-index"),
		dimension: encoder.Dimension(),
		positions: make(map[string]int),
		texts:     make(map[string]string),
	}

	if err := s.load(); err != nil {
		s.log.WithError(err).Warn("snapshot unusable, starting with empty index")
		if err := s.reset(); err != nil {
			db.Close()
			return nil, err
		}
	}

	return s, nil
}

// Close releases the sidecar metadata database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Len returns the number of indexed vectors.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

// Contains reports whether an article id is indexed.
func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.positions[id]
	return ok
}

// IndexedText returns the text an id was embedded under, for diagnostics.
func (s *Store) IndexedText(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.texts[id]
	return text, ok
}

// AddIfAbsent encodes and appends every article whose id is not yet
// indexed, then persists the grown index in one batch. Already-indexed
// ids are skipped, making the operation idempotent per id. Writes are
// serialized; concurrent searches proceed between batches.
func (s *Store) AddIfAbsent(ctx context.Context, articles []domain.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var missing []domain.Article
	seen := make(map[string]bool)
	for _, a := range articles {
		if _, ok := s.positions[a.ID]; ok || seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		missing = append(missing, a)
	}
	if len(missing) == 0 {
		return nil
	}

	texts := make([]string, len(missing))
	for i, a := range missing {
		texts[i] = a.EmbeddingText()
	}
	vectors := s.encoder.EncodeBatch(ctx, texts)

	start := len(s.vectors)
	for i, a := range missing {
		vec := normalize(vectors[i])
		s.vectors = append(s.vectors, vec)
		s.ids = append(s.ids, a.ID)
		s.positions[a.ID] = start + i
		s.texts[a.ID] = texts[i]
	}

	if err := s.persistLocked(missing, texts, start); err != nil {
		return fmt.Errorf("failed to persist index: %w", err)
	}
	return nil
}

// Search returns up to k nearest neighbors of the query vector by inner
// product, descending, ties broken by insertion position. An empty
// index yields an empty result.
func (s *Store) Search(query []float32, k int) ([]port.IndexHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(query) != s.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", s.dimension, len(query))
	}
	if k <= 0 || len(s.vectors) == 0 {
		return nil, nil
	}

	q := normalize(query)

	hits := make([]port.IndexHit, len(s.vectors))
	for pos, vec := range s.vectors {
		hits[pos] = port.IndexHit{ID: s.ids[pos], Score: dot(q, vec)}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// dot computes the inner product of two equal-length vectors.
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// normalize returns an L2-normalized copy. A zero vector is returned
// unchanged so it scores zero against everything.
func normalize(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if norm == 0 {
		return out
	}
	inv := 1 / math.Sqrt(norm)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}
