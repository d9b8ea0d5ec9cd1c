package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/papersum/papersum/internal/doctree"
	"github.com/papersum/papersum/internal/highlight"
	"github.com/papersum/papersum/internal/summarize"
)

type stubStructurer struct {
	tree *doctree.Tree
	err  error
}

func (s *stubStructurer) StructureDocument(_ context.Context, _ string, _ []byte) (*doctree.Tree, error) {
	return s.tree, s.err
}

type stubSummarizer struct {
	sectionErr   error
	aggregateErr error
}

func (s *stubSummarizer) SummarizeSections(_ context.Context, sections []doctree.Section) ([]summarize.SectionSummary, error) {
	if s.sectionErr != nil {
		return nil, s.sectionErr
	}
	out := make([]summarize.SectionSummary, len(sections))
	for i, sec := range sections {
		out[i] = summarize.SectionSummary{Section: sec.Heading, Summary: "summary of " + sec.Heading}
	}
	return out, nil
}

func (s *stubSummarizer) Aggregate(_ context.Context, summaries []summarize.SectionSummary) (string, error) {
	if s.aggregateErr != nil {
		return "", s.aggregateErr
	}
	parts := make([]string, len(summaries))
	for i, sum := range summaries {
		parts[i] = sum.Summary
	}
	return strings.Join(parts, " "), nil
}

type stubLinker struct {
	err error
}

func (s *stubLinker) Link(_ context.Context, summary string, chunks []doctree.Chunk) ([]highlight.Mapping, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []highlight.Mapping
	for _, c := range chunks {
		out = append(out, highlight.Mapping{SummarySentence: summary, MatchedChunk: c.Content, Similarity: 0.9})
	}
	return out, nil
}

func sampleTree() *doctree.Tree {
	return &doctree.Tree{
		Title: "Deep Widgets",
		Children: []*doctree.Node{
			{Heading: "Introduction", Text: "Widgets matter."},
			{Heading: "Methods", Text: "We trained a widget model."},
		},
	}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorker_ProcessCompletes(t *testing.T) {
	w := NewWorker(&stubStructurer{tree: sampleTree()}, &stubSummarizer{}, &stubLinker{}, true, discard())
	job := NewJob("paper.pdf", []byte("%PDF"))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (%s)", snap.Status, snap.Error)
	}
	if snap.SectionCount != 2 {
		t.Errorf("expected 2 sections, got %d", snap.SectionCount)
	}
	if snap.Result == nil {
		t.Fatal("completed job must carry a result")
	}
	if len(snap.Result.Sections) != 2 {
		t.Errorf("expected 2 section summaries, got %d", len(snap.Result.Sections))
	}
	if snap.Result.Summary == "" {
		t.Error("empty final summary")
	}
	if len(snap.Result.Highlights) == 0 {
		t.Error("expected highlights")
	}
	if job.FileData() != nil {
		t.Error("file data should be released after extraction")
	}
}

func TestWorker_HighlightsDisabled(t *testing.T) {
	w := NewWorker(&stubStructurer{tree: sampleTree()}, &stubSummarizer{}, &stubLinker{}, false, discard())
	job := NewJob("paper.pdf", nil)

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q", snap.Status)
	}
	if snap.Result.Highlights != nil {
		t.Error("highlights produced while disabled")
	}
}

func TestWorker_StructurerFailureFallsBackToParser(t *testing.T) {
	// GROBID fails, but the file is plain text so the local parser handles it.
	w := NewWorker(&stubStructurer{err: errors.New("service down")}, &stubSummarizer{}, nil, false, discard())
	job := NewJob("notes.txt", []byte("A paragraph about widgets.\n\nAnother paragraph with details."))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed via fallback, got %q (%s)", snap.Status, snap.Error)
	}
	if snap.SectionCount == 0 {
		t.Error("fallback produced no sections")
	}
}

func TestWorker_NoSectionsFails(t *testing.T) {
	w := NewWorker(&stubStructurer{tree: &doctree.Tree{}}, &stubSummarizer{}, nil, false, discard())
	job := NewJob("empty.pdf", nil)

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Fatalf("expected failed, got %q", snap.Status)
	}
	if !strings.Contains(snap.Error, "no extractable sections") {
		t.Errorf("unexpected error %q", snap.Error)
	}
}

func TestWorker_SummarizeFailureFailsJob(t *testing.T) {
	w := NewWorker(&stubStructurer{tree: sampleTree()}, &stubSummarizer{sectionErr: errors.New("model down")}, nil, false, discard())
	job := NewJob("paper.pdf", nil)

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "summarizing" {
		t.Errorf("expected failure in summarizing, got %q/%q", snap.Status, snap.Phase)
	}
	if snap.Result != nil {
		t.Error("failed job must not carry a result")
	}
}

func TestWorker_HighlightFailureFailsJob(t *testing.T) {
	w := NewWorker(&stubStructurer{tree: sampleTree()}, &stubSummarizer{}, &stubLinker{err: errors.New("embeddings down")}, true, discard())
	job := NewJob("paper.pdf", nil)

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "highlighting" {
		t.Errorf("expected failure in highlighting, got %q/%q", snap.Status, snap.Phase)
	}
}

func TestOrchestrator_SubmitAndProcess(t *testing.T) {
	o := NewOrchestrator(OrchestratorConfig{WorkerCount: 2, MaxQueueSize: 4, JobTTL: time.Hour},
		&stubStructurer{tree: sampleTree()}, &stubSummarizer{}, nil, false, discard())
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("paper.pdf", nil)
	if err := o.Submit(job); err != nil {
		t.Fatalf("submit: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s := o.GetJob(job.ID).Snapshot(); s.Status == StatusCompleted || s.Status == StatusFailed {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	snap := o.GetJob(job.ID).Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (%s)", snap.Status, snap.Error)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	// No workers started: the queue fills and the next submit is rejected.
	o := NewOrchestrator(OrchestratorConfig{WorkerCount: 1, MaxQueueSize: 2, JobTTL: time.Hour},
		&stubStructurer{tree: sampleTree()}, &stubSummarizer{}, nil, false, discard())

	for i := 0; i < 2; i++ {
		if err := o.Submit(NewJob(fmt.Sprintf("p%d.pdf", i), nil)); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	overflow := NewJob("p3.pdf", nil)
	if err := o.Submit(overflow); err == nil {
		t.Fatal("expected queue full error")
	}
	if overflow.Snapshot().Status != StatusFailed {
		t.Error("overflow job should be marked failed")
	}
}
