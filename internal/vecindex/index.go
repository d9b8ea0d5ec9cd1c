package vecindex

import (
	"errors"
	"sort"
	"sync"

	"github.com/papersum/papersum/internal/doctree"
	"github.com/papersum/papersum/internal/embed"
)

// Index is an in-memory flat vector index over source chunks. Vectors are
// L2-normalized on insert and query, so the dot product used for ranking is
// the cosine similarity (and nearest-by-L2 coincides with it).
//
// One Index is built per document and never shared across documents; a
// rebuild for a new document must not disturb queries against another
// document's index.
type Index struct {
	mu      sync.RWMutex
	dim     int
	vectors [][]float32
	chunks  []doctree.Chunk
}

// Match is one search hit: a chunk with its cosine similarity score and its
// insertion position.
type Match struct {
	Chunk    doctree.Chunk
	Position int
	Score    float64
}

var ErrDimensionMismatch = errors.New("vector dimension mismatch")

func New() *Index {
	return &Index{}
}

// Add appends chunks with their embedding vectors. All vectors must share
// one dimension; insertion order is preserved and used to break score ties.
func (ix *Index) Add(vectors [][]float32, chunks []doctree.Chunk) error {
	if len(vectors) != len(chunks) {
		return errors.New("vectors and chunks length mismatch")
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for _, v := range vectors {
		if ix.dim == 0 {
			ix.dim = len(v)
		}
		if len(v) != ix.dim {
			return ErrDimensionMismatch
		}
	}
	for _, v := range vectors {
		ix.vectors = append(ix.vectors, embed.Normalize(v))
	}
	ix.chunks = append(ix.chunks, chunks...)
	return nil
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.chunks)
}

// Search returns the k chunks most similar to the query vector, ordered by
// descending similarity. Equal scores keep original chunk order (stable).
func (ix *Index) Search(query []float32, k int) []Match {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if k <= 0 || len(ix.vectors) == 0 {
		return nil
	}

	q := embed.Normalize(query)
	matches := make([]Match, len(ix.vectors))
	for i, v := range ix.vectors {
		matches[i] = Match{
			Chunk:    ix.chunks[i],
			Position: i,
			Score:    embed.Dot(q, v),
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k]
}
