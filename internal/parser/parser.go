package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/papersum/papersum/internal/doctree"
)

// Parser converts raw document bytes into a document tree. These local
// parsers back up the structuring service: they recover enough heading
// structure for the pipeline to run when GROBID is not available, and they
// feed the plain-text paths (single-shot summary, QA chunking).
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Tree, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return &PDFParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", filepath.Ext(filename))
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}
