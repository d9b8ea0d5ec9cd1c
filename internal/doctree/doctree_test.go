package doctree

import (
	"strings"
	"testing"
)

func TestFlatten_ParentIncludesDescendantText(t *testing.T) {
	tree := &Tree{
		Title: "Paper",
		Children: []*Node{
			{
				Heading: "Methods",
				Text:    "We trained a model.",
				Children: []*Node{
					{Heading: "Data", Text: "The dataset has 10k rows."},
				},
			},
		},
	}

	sections := Flatten(tree)
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if sections[0].Heading != "Methods" {
		t.Errorf("expected heading Methods, got %q", sections[0].Heading)
	}
	// The parent section carries its own text plus the child's.
	if !strings.Contains(sections[0].Content, "We trained a model.") ||
		!strings.Contains(sections[0].Content, "The dataset has 10k rows.") {
		t.Errorf("parent content missing descendant text: %q", sections[0].Content)
	}
	if sections[1].Heading != "Data" || sections[1].Content != "The dataset has 10k rows." {
		t.Errorf("unexpected child section: %+v", sections[1])
	}
}

func TestFlatten_DropsWhitespaceOnlySections(t *testing.T) {
	tree := &Tree{
		Children: []*Node{
			{Heading: "Empty", Text: "   \n\t  "},
			{Heading: "Real", Text: "content"},
			{Heading: "Container", Children: []*Node{{Text: "  "}}},
		},
	}

	sections := Flatten(tree)
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d: %+v", len(sections), sections)
	}
	if sections[0].Heading != "Real" {
		t.Errorf("expected Real, got %q", sections[0].Heading)
	}
}

func TestFlatten_MissingHeadingGetsPlaceholder(t *testing.T) {
	tree := &Tree{
		Children: []*Node{{Text: "anonymous block"}},
	}

	sections := Flatten(tree)
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if sections[0].Heading != UntitledHeading {
		t.Errorf("expected %q, got %q", UntitledHeading, sections[0].Heading)
	}
}

func TestFlatten_ReadingOrder(t *testing.T) {
	tree := &Tree{
		Children: []*Node{
			{
				Heading: "A",
				Text:    "a",
				Children: []*Node{
					{Heading: "A.1", Text: "a1"},
					{Heading: "A.2", Text: "a2"},
				},
			},
			{Heading: "B", Text: "b"},
		},
	}

	sections := Flatten(tree)
	want := []string{"A", "A.1", "A.2", "B"}
	if len(sections) != len(want) {
		t.Fatalf("expected %d sections, got %d", len(want), len(sections))
	}
	for i, h := range want {
		if sections[i].Heading != h {
			t.Errorf("position %d: expected %q, got %q", i, h, sections[i].Heading)
		}
	}
}

func TestFlatten_NilTree(t *testing.T) {
	if got := Flatten(nil); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestChunkPool_PrefersExplicitChunks(t *testing.T) {
	page := 3
	tree := &Tree{
		Children: []*Node{
			{
				Heading: "Results",
				Text:    "ignored because explicit chunks exist",
				Chunks: []Chunk{
					{Content: "first", Page: &page, Coords: "1,2,3,4"},
					{Content: "second", Page: &page},
				},
			},
		},
	}

	chunks := ChunkPool(tree)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Content != "first" || chunks[0].Coords != "1,2,3,4" {
		t.Errorf("unexpected first chunk: %+v", chunks[0])
	}
	if chunks[0].Page == nil || *chunks[0].Page != 3 {
		t.Errorf("expected page 3, got %v", chunks[0].Page)
	}
}

func TestChunkPool_DerivesParagraphChunks(t *testing.T) {
	tree := &Tree{
		Children: []*Node{
			{Heading: "Intro", Text: "First paragraph.\n\nSecond paragraph.", Page: 2},
		},
	}

	chunks := ChunkPool(tree)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Content != "First paragraph." || chunks[1].Content != "Second paragraph." {
		t.Errorf("unexpected chunks: %+v", chunks)
	}
	for i, c := range chunks {
		if c.Page == nil || *c.Page != 2 {
			t.Errorf("chunk %d: expected page 2, got %v", i, c.Page)
		}
		if c.Coords != "" {
			t.Errorf("chunk %d: derived chunks carry no coords, got %q", i, c.Coords)
		}
	}
}

func TestFullText(t *testing.T) {
	tree := &Tree{
		Children: []*Node{
			{Heading: "A", Text: "alpha", Children: []*Node{{Text: "beta"}}},
			{Heading: "B", Text: "gamma"},
		},
	}
	got := FullText(tree)
	want := "alpha\n\nbeta\n\ngamma"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
