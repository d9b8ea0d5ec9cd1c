package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/papersum/papersum/internal/doctree"
)

// TextParser handles plain text files. Paragraphs (blank-line separated)
// become sections without headings.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	tree := &doctree.Tree{
		Title: strings.TrimSuffix(filename, ".txt"),
	}
	for _, para := range paragraphs {
		tree.Children = append(tree.Children, &doctree.Node{Text: para})
	}
	return tree, nil
}
