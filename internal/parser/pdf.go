package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/papersum/papersum/internal/doctree"
)

// PDFParser extracts plain page text from PDF files. PDFs carry no reliable
// heading markup, so each page becomes one section; GROBID is the path that
// recovers real section structure.
type PDFParser struct{}

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so spool to a temp file.
	tmp, err := os.CreateTemp("", "papersum-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	f, reader, err := pdflib.Open(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	tree := &doctree.Tree{
		Title: strings.TrimSuffix(filename, ".pdf"),
	}

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		tree.Children = append(tree.Children, &doctree.Node{
			Heading: fmt.Sprintf("Page %d", i),
			Text:    text,
			Page:    i,
		})
	}

	if len(tree.Children) == 0 {
		return nil, fmt.Errorf("no extractable text in %s", filename)
	}
	return tree, nil
}
