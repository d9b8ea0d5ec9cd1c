package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/papersum/papersum/internal/doctree"
	"github.com/papersum/papersum/internal/highlight"
	"github.com/papersum/papersum/internal/parser"
	"github.com/papersum/papersum/internal/summarize"
)

// Structurer extracts a section tree from a raw document, typically via a
// GROBID service.
type Structurer interface {
	StructureDocument(ctx context.Context, filename string, data []byte) (*doctree.Tree, error)
}

// SectionSummarizer is the summarization stage of the pipeline.
type SectionSummarizer interface {
	SummarizeSections(ctx context.Context, sections []doctree.Section) ([]summarize.SectionSummary, error)
	Aggregate(ctx context.Context, summaries []summarize.SectionSummary) (string, error)
}

// Linker maps summary sentences back to source chunks.
type Linker interface {
	Link(ctx context.Context, summary string, chunks []doctree.Chunk) ([]highlight.Mapping, error)
}

// Worker processes a single summarization job end to end.
type Worker struct {
	structurer Structurer
	summarizer SectionSummarizer
	linker     Linker
	log        *slog.Logger

	highlightsOn bool
}

func NewWorker(structurer Structurer, summarizer SectionSummarizer, linker Linker, highlightsOn bool, log *slog.Logger) *Worker {
	return &Worker{
		structurer:   structurer,
		summarizer:   summarizer,
		linker:       linker,
		highlightsOn: highlightsOn,
		log:          log,
	}
}

// Process runs the full pipeline for a job: structure extraction, per-section
// summarization, aggregation, and highlight linking. A failed job always
// carries an error message; a completed job always carries a result.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Structure extraction.
	job.SetStatus(StatusExtracting, "extracting")
	tree, err := w.extract(ctx, job, log)
	if err != nil {
		log.Error("extraction failed", "error", err)
		job.Fail("extracting", err.Error())
		return
	}
	job.ReleaseFileData()

	sections := doctree.Flatten(tree)
	job.SetSectionCount(len(sections))
	log.Info("structured document", "sections", len(sections))

	if len(sections) == 0 {
		job.Fail("extracting", "no extractable sections")
		return
	}

	// Phase 2: Per-section summarization.
	job.SetStatus(StatusSummarizing, "summarizing")
	sectionSummaries, err := w.summarizer.SummarizeSections(ctx, sections)
	if err != nil {
		log.Error("summarization failed", "error", err)
		job.Fail("summarizing", err.Error())
		return
	}

	// Phase 3: Aggregate into one summary.
	job.SetStatus(StatusAggregating, "aggregating")
	finalSummary, err := w.summarizer.Aggregate(ctx, sectionSummaries)
	if err != nil {
		log.Error("aggregation failed", "error", err)
		job.Fail("aggregating", err.Error())
		return
	}

	res := &Result{
		Summary:  finalSummary,
		Sections: sectionSummaries,
	}

	// Phase 4: Highlight linking.
	if w.highlightsOn && w.linker != nil {
		job.SetStatus(StatusHighlighting, "highlighting")
		chunks := doctree.ChunkPool(tree)
		mappings, err := w.linker.Link(ctx, finalSummary, chunks)
		if err != nil {
			log.Error("highlight linking failed", "error", err)
			job.Fail("highlighting", err.Error())
			return
		}
		res.Highlights = mappings
	}

	job.Complete(res)
	log.Info("job completed", "sections", len(sections), "highlights", len(res.Highlights))
}

// extract structures the document via GROBID, falling back to the local
// format parsers when the service is unavailable or returns an error. The
// fallback loses coordinates but keeps the pipeline alive.
func (w *Worker) extract(ctx context.Context, job *Job, log *slog.Logger) (*doctree.Tree, error) {
	data := job.FileData()

	if w.structurer != nil {
		tree, err := w.structurer.StructureDocument(ctx, job.Filename, data)
		if err == nil {
			return tree, nil
		}
		log.Warn("structure service failed, falling back to local parser", "error", err)
	}

	p, err := parser.ForFile(job.Filename)
	if err != nil {
		return nil, fmt.Errorf("no parser for %s: %w", job.Filename, err)
	}
	tree, err := p.Parse(bytes.NewReader(data), job.Filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", job.Filename, err)
	}
	return tree, nil
}
