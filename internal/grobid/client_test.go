package grobid

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStructureDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		if r.FormValue("teiCoordinates") == "" {
			t.Error("expected teiCoordinates field")
		}
		f, _, err := r.FormFile("input")
		if err != nil {
			t.Errorf("missing input file: %v", err)
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		f.Close()
		w.Header().Set("Content-Type", "application/xml")
		io.WriteString(w, `<TEI><text><body><div><head>Intro</head><p>Hello.</p></div></body></text></TEI>`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, discardLogger())
	tree, err := c.StructureDocument(context.Background(), "paper.pdf", []byte("%PDF-fake"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 1 || tree.Children[0].Heading != "Intro" {
		t.Fatalf("unexpected tree: %+v", tree.Children)
	}
}

func TestStructureDocument_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no content", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, discardLogger())
	if _, err := c.StructureDocument(context.Background(), "paper.pdf", []byte("x")); err == nil {
		t.Error("expected error for 503 response")
	}
}

func TestStructureDocument_Unreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1/api/processFulltextDocument", time.Second, discardLogger())
	if _, err := c.StructureDocument(context.Background(), "paper.pdf", []byte("x")); err == nil {
		t.Error("expected error for unreachable service")
	}
}
