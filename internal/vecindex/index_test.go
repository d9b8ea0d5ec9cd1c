package vecindex

import (
	"math"
	"testing"

	"github.com/papersum/papersum/internal/doctree"
)

func chunk(content string) doctree.Chunk {
	return doctree.Chunk{Content: content}
}

func TestSearch_RanksBySimilarity(t *testing.T) {
	ix := New()
	err := ix.Add([][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0.9, 0.1, 0},
	}, []doctree.Chunk{chunk("x axis"), chunk("y axis"), chunk("mostly x")})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	matches := ix.Search([]float32{1, 0, 0}, 2)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Chunk.Content != "x axis" {
		t.Errorf("expected x axis first, got %q", matches[0].Chunk.Content)
	}
	if matches[1].Chunk.Content != "mostly x" {
		t.Errorf("expected mostly x second, got %q", matches[1].Chunk.Content)
	}
	if math.Abs(matches[0].Score-1) > 1e-6 {
		t.Errorf("expected similarity 1.0, got %f", matches[0].Score)
	}
}

func TestSearch_TieKeepsOriginalOrder(t *testing.T) {
	// Two identical high-scoring vectors (tie) plus one weak one: top-2
	// must be the first two in insertion order, never the third.
	ix := New()
	err := ix.Add([][]float32{
		{1, 0},
		{1, 0},
		{0.5, 0.8},
	}, []doctree.Chunk{chunk("first"), chunk("second"), chunk("third")})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	matches := ix.Search([]float32{1, 0}, 2)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Chunk.Content != "first" || matches[1].Chunk.Content != "second" {
		t.Errorf("tie broke insertion order: %q, %q", matches[0].Chunk.Content, matches[1].Chunk.Content)
	}
}

func TestSearch_ZeroVectorScoresZero(t *testing.T) {
	ix := New()
	err := ix.Add([][]float32{
		{0, 0, 0},
		{1, 0, 0},
	}, []doctree.Chunk{chunk("empty"), chunk("real")})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	matches := ix.Search([]float32{1, 0, 0}, 2)
	if matches[0].Chunk.Content != "real" {
		t.Errorf("expected real first, got %q", matches[0].Chunk.Content)
	}
	if matches[1].Score != 0 {
		t.Errorf("zero vector should score 0, got %f", matches[1].Score)
	}
}

func TestSearch_KLargerThanIndex(t *testing.T) {
	ix := New()
	if err := ix.Add([][]float32{{1, 0}}, []doctree.Chunk{chunk("only")}); err != nil {
		t.Fatalf("add: %v", err)
	}
	matches := ix.Search([]float32{1, 0}, 10)
	if len(matches) != 1 {
		t.Errorf("expected 1 match, got %d", len(matches))
	}
}

func TestSearch_EmptyIndex(t *testing.T) {
	ix := New()
	if matches := ix.Search([]float32{1}, 3); matches != nil {
		t.Errorf("expected nil, got %v", matches)
	}
}

func TestAdd_DimensionMismatch(t *testing.T) {
	ix := New()
	if err := ix.Add([][]float32{{1, 0}}, []doctree.Chunk{chunk("a")}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := ix.Add([][]float32{{1, 0, 0}}, []doctree.Chunk{chunk("b")}); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestAdd_LengthMismatch(t *testing.T) {
	ix := New()
	if err := ix.Add([][]float32{{1}}, nil); err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestSearch_PerDocumentIsolation(t *testing.T) {
	// Two indexes built for different documents must not see each other's
	// chunks.
	a := New()
	b := New()
	a.Add([][]float32{{1, 0}}, []doctree.Chunk{chunk("doc a")})
	b.Add([][]float32{{1, 0}}, []doctree.Chunk{chunk("doc b")})

	if got := a.Search([]float32{1, 0}, 5); len(got) != 1 || got[0].Chunk.Content != "doc a" {
		t.Errorf("index a contaminated: %+v", got)
	}
	if got := b.Search([]float32{1, 0}, 5); len(got) != 1 || got[0].Chunk.Content != "doc b" {
		t.Errorf("index b contaminated: %+v", got)
	}
}
