package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"unicode/utf8"

	"github.com/papersum/papersum/internal/doctree"
	"github.com/papersum/papersum/internal/llm"
	"github.com/papersum/papersum/internal/parser"
)

// truncateAtRune cuts s to at most max bytes without splitting a UTF-8
// sequence.
func truncateAtRune(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// handleSummarize runs a synchronous single-shot summary of an uploaded
// document: parse locally, send the full text to the model, return the
// summary. No section fan-out and no highlights; the async pipeline covers
// those.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	detail := r.FormValue("detail")
	if detail != "short" && detail != "detailed" {
		detail = "detailed"
	}

	p, err := parser.ForFile(filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	tree, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, "parse failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	text := doctree.FullText(tree)
	if text == "" {
		jsonError(w, "document has no extractable text", http.StatusUnprocessableEntity)
		return
	}
	truncated := false
	if len(text) > s.cfg.SummaryMaxChars {
		text = truncateAtRune(text, s.cfg.SummaryMaxChars)
		truncated = true
	}

	prompt := llm.DetailedSummaryPrompt(text)
	if detail == "short" {
		prompt = llm.ShortSummaryPrompt(text)
	}

	summary, err := s.llm.Generate(r.Context(), llm.SummarizerSystemPrompt, prompt)
	if err != nil {
		s.log.Error("single-shot summary failed", "filename", filename, "error", err)
		jsonError(w, "summarization failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"filename":  filename,
		"detail":    detail,
		"summary":   summary,
		"truncated": truncated,
	})
}
