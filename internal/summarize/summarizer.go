package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/papersum/papersum/internal/doctree"
	"github.com/papersum/papersum/internal/llm"
)

// SectionSummary pairs a section heading with its generated summary.
type SectionSummary struct {
	Section string `json:"section"`
	Summary string `json:"summary"`
}

var ErrNoSections = errors.New("no sections to summarize")

// Summarizer runs per-section summarization as a concurrent fan-out and
// merges the results into one document-level summary.
type Summarizer struct {
	gen           llm.Generator
	maxConcurrent int
	log           *slog.Logger
}

func New(gen llm.Generator, maxConcurrent int, log *slog.Logger) *Summarizer {
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	return &Summarizer{
		gen:           gen,
		maxConcurrent: maxConcurrent,
		log:           log,
	}
}

// SummarizeSections issues one generation request per section with bounded
// concurrency. The returned slice preserves input order regardless of
// completion order and is a bijection with the input: one summary per
// section, same index.
//
// Any task failure fails the whole batch (first error by input order wins
// so the outcome is deterministic); remaining in-flight tasks are canceled.
func (s *Summarizer) SummarizeSections(ctx context.Context, sections []doctree.Section) ([]SectionSummary, error) {
	if len(sections) == 0 {
		return nil, ErrNoSections
	}

	fanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		idx int
		err error
	}

	out := make([]SectionSummary, len(sections))
	results := make(chan result, len(sections))
	sem := make(chan struct{}, s.maxConcurrent)

	for i, sec := range sections {
		go func(i int, sec doctree.Section) {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-fanCtx.Done():
				results <- result{idx: i, err: fanCtx.Err()}
				return
			}

			summary, err := s.gen.Generate(fanCtx, llm.SummarizerSystemPrompt, llm.SectionPrompt(sec.Heading, sec.Content))
			if err == nil {
				out[i] = SectionSummary{Section: sec.Heading, Summary: summary}
			}
			results <- result{idx: i, err: err}
		}(i, sec)
	}

	firstErrIdx := -1
	var firstErr error
	for range sections {
		r := <-results
		if r.err == nil {
			continue
		}
		// Cancellation fallout from an earlier failure never outranks the
		// failure itself.
		secondary := errors.Is(r.err, context.Canceled)
		if firstErr != nil && secondary && !errors.Is(firstErr, context.Canceled) {
			continue
		}
		if firstErrIdx == -1 || r.idx < firstErrIdx || (errors.Is(firstErr, context.Canceled) && !secondary) {
			firstErrIdx = r.idx
			firstErr = r.err
		}
		cancel()
	}

	if firstErr != nil {
		return nil, fmt.Errorf("summarize section %d (%s): %w", firstErrIdx, sections[firstErrIdx].Heading, firstErr)
	}
	return out, nil
}

// Aggregate merges per-section summaries into one cohesive document-level
// summary with a single generation call. The model may rename, reorder, and
// merge headings, so callers must not expect heading continuity with the
// input sections.
func (s *Summarizer) Aggregate(ctx context.Context, summaries []SectionSummary) (string, error) {
	if len(summaries) == 0 {
		return "", ErrNoSections
	}

	var sb strings.Builder
	for i, sum := range summaries {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString("## ")
		sb.WriteString(sum.Section)
		sb.WriteString("\n")
		sb.WriteString(sum.Summary)
	}

	final, err := s.gen.Generate(ctx, llm.SummarizerSystemPrompt, llm.AggregatePrompt(sb.String()))
	if err != nil {
		return "", fmt.Errorf("aggregate summaries: %w", err)
	}
	return final, nil
}
