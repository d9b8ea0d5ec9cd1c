package highlight

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papersum/papersum/internal/doctree"
	"github.com/papersum/papersum/internal/embed"
	"github.com/papersum/papersum/internal/vecindex"
)

// Mapping ties one summary sentence to a source chunk that supports it.
type Mapping struct {
	SummarySentence string  `json:"summary_sentence"`
	MatchedChunk    string  `json:"matched_chunk"`
	Page            *int    `json:"page"`
	Coords          string  `json:"coords,omitempty"`
	Similarity      float64 `json:"similarity"`
}

// Highlighter maps summary sentences back to the source chunks they came
// from, using embedding similarity.
type Highlighter struct {
	embedder embed.Embedder
	topK     int
	log      *slog.Logger
}

func New(embedder embed.Embedder, topK int, log *slog.Logger) *Highlighter {
	if topK <= 0 {
		topK = 1
	}
	return &Highlighter{embedder: embedder, topK: topK, log: log}
}

// Link splits the summary into sentences, embeds sentences and chunks, and
// returns the top-k source chunks per sentence. Mappings are grouped by
// sentence in summary order; within a sentence they are ordered by
// descending similarity with ties keeping chunk order.
//
// Chunks come from one document only; a fresh index is built per call so
// documents never bleed into each other. Any embedding failure aborts the
// whole call: partial highlight sets are worse than none.
func (h *Highlighter) Link(ctx context.Context, summary string, chunks []doctree.Chunk) ([]Mapping, error) {
	sentences := SplitSentences(summary)
	if len(sentences) == 0 || len(chunks) == 0 {
		return nil, nil
	}

	chunkTexts := make([]string, len(chunks))
	for i, c := range chunks {
		chunkTexts[i] = c.Content
	}

	chunkVecs, err := h.embedder.EmbedBatch(ctx, chunkTexts)
	if err != nil {
		return nil, fmt.Errorf("embed source chunks: %w", err)
	}

	ix := vecindex.New()
	if err := ix.Add(chunkVecs, chunks); err != nil {
		return nil, fmt.Errorf("index source chunks: %w", err)
	}

	sentenceVecs, err := h.embedder.EmbedBatch(ctx, sentences)
	if err != nil {
		return nil, fmt.Errorf("embed summary sentences: %w", err)
	}

	mappings := make([]Mapping, 0, len(sentences)*h.topK)
	for i, sentence := range sentences {
		for _, m := range ix.Search(sentenceVecs[i], h.topK) {
			mappings = append(mappings, Mapping{
				SummarySentence: sentence,
				MatchedChunk:    m.Chunk.Content,
				Page:            m.Chunk.Page,
				Coords:          m.Chunk.Coords,
				Similarity:      m.Score,
			})
		}
	}

	if h.log != nil {
		h.log.Debug("highlights linked",
			"sentences", len(sentences),
			"chunks", len(chunks),
			"mappings", len(mappings))
	}
	return mappings, nil
}
