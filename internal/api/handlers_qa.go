package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/papersum/papersum/internal/doctree"
	"github.com/papersum/papersum/internal/parser"
	"github.com/papersum/papersum/internal/qa"
)

// handleQAUpload parses an uploaded paper, chunks and embeds it, and returns
// the paper ID to ask questions against.
func (s *Server) handleQAUpload(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
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

	paperID, chunks, err := s.qa.IndexPaper(r.Context(), filename, doctree.FullText(tree))
	if err != nil {
		if errors.Is(err, qa.ErrNoText) {
			jsonError(w, "document has no extractable text", http.StatusUnprocessableEntity)
			return
		}
		s.log.Error("paper indexing failed", "filename", filename, "error", err)
		jsonError(w, "indexing failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"paper_id": paperID,
		"filename": filename,
		"chunks":   chunks,
	})
}

type askRequest struct {
	SessionID string `json:"session_id"`
	PaperID   string `json:"paper_id"`
	Question  string `json:"question"`
}

// handleQAAsk answers a question about an indexed paper, carrying the
// session's prior exchanges as conversational context.
func (s *Server) handleQAAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		jsonError(w, "session_id is required", http.StatusBadRequest)
		return
	}

	answer, err := s.qa.Ask(r.Context(), req.SessionID, req.PaperID, req.Question)
	if err != nil {
		switch {
		case errors.Is(err, qa.ErrEmptyQuestion):
			jsonError(w, "question is required", http.StatusBadRequest)
		case errors.Is(err, qa.ErrPaperNotFound):
			jsonError(w, "paper not found", http.StatusNotFound)
		default:
			s.log.Error("qa failed", "paper_id", req.PaperID, "error", err)
			jsonError(w, "answer failed: "+err.Error(), http.StatusBadGateway)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"session_id": req.SessionID,
		"paper_id":   req.PaperID,
		"answer":     answer,
	})
}
