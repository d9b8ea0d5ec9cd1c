package chunker

import (
	"strings"
	"testing"
)

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	chunks := Split("A short paragraph about widgets.", DefaultConfig())
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "A short paragraph about widgets." {
		t.Errorf("unexpected chunk %q", chunks[0])
	}
}

func TestSplit_Empty(t *testing.T) {
	if chunks := Split("", DefaultConfig()); chunks != nil {
		t.Errorf("expected nil, got %v", chunks)
	}
	if chunks := Split("   \n\n  ", DefaultConfig()); chunks != nil {
		t.Errorf("expected nil for whitespace, got %v", chunks)
	}
}

func TestSplit_BelowMinChunkDropped(t *testing.T) {
	cfg := Config{ChunkSize: 100, ChunkOverlap: 0, MinChunk: 20}
	if chunks := Split("tiny", cfg); chunks != nil {
		t.Errorf("expected nil for tiny fragment, got %v", chunks)
	}
}

func TestSplit_PrefersParagraphBreak(t *testing.T) {
	first := strings.Repeat("alpha ", 20)  // 120 chars
	second := strings.Repeat("beta ", 20)  // 100 chars
	text := strings.TrimSpace(first) + "\n\n" + strings.TrimSpace(second)

	cfg := Config{ChunkSize: 150, ChunkOverlap: 0, MinChunk: 10}
	chunks := Split(text, cfg)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	if strings.Contains(chunks[0], "beta") {
		t.Errorf("first chunk crossed paragraph break: %q", chunks[0])
	}
	if !strings.HasPrefix(chunks[1], "beta") {
		t.Errorf("second chunk should start at paragraph: %q", chunks[1])
	}
}

func TestSplit_SentenceBreakInsideParagraph(t *testing.T) {
	text := "First sentence about methods goes here with some extra words to pad it out. " +
		"Second sentence continues the discussion with more detail than the first one did."
	cfg := Config{ChunkSize: 100, ChunkOverlap: 0, MinChunk: 10}
	chunks := Split(text, cfg)
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0], ".") {
		t.Errorf("first chunk should end at a sentence boundary: %q", chunks[0])
	}
}

func TestSplit_OverlapRepeatsTail(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet. ", 30)
	cfg := Config{ChunkSize: 200, ChunkOverlap: 50, MinChunk: 10}
	chunks := Split(text, cfg)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// The head of every later chunk must reappear near the tail of its
	// predecessor.
	for i := 1; i < len(chunks); i++ {
		head := chunks[i]
		if len(head) > 20 {
			head = head[:20]
		}
		if !strings.Contains(chunks[i-1], strings.TrimSpace(head[:10])) {
			t.Errorf("chunk %d head %q not found in predecessor", i, head)
		}
	}
}

func TestSplit_CoversAllText(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 50)
	cfg := Config{ChunkSize: 300, ChunkOverlap: 60, MinChunk: 10}
	chunks := Split(text, cfg)

	joined := strings.Join(chunks, " ")
	if !strings.Contains(joined, "lazy dog") {
		t.Error("chunks lost content")
	}
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(strings.TrimSpace(text), strings.TrimSpace(last)) {
		t.Errorf("last chunk should reach the end of the text: %q", last)
	}
}

func TestSplit_NoInfiniteLoopWhenOverlapTooLarge(t *testing.T) {
	// Overlap >= chunk size would never advance; it must be neutralized.
	text := strings.Repeat("word ", 200)
	cfg := Config{ChunkSize: 50, ChunkOverlap: 50, MinChunk: 5}
	chunks := Split(text, cfg)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	if len(chunks) > 100 {
		t.Errorf("suspiciously many chunks (%d), overlap not neutralized", len(chunks))
	}
}

func TestNormalize_CollapsesBlankRuns(t *testing.T) {
	got := normalize("a\n\n\n\nb\r\nc")
	if got != "a\n\nb\nc" {
		t.Errorf("unexpected normalization: %q", got)
	}
}
