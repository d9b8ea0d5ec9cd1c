package grobid

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/papersum/papersum/internal/doctree"
)

// ParseTEI converts GROBID TEI XML into a document tree. Each <div> inside
// <body> becomes a node; <head> text becomes the heading (and is also part
// of the node text, matching the service's reading order), and each <p>
// becomes one chunk carrying page/coordinate provenance when the coords
// attribute is present.
//
// A document without a <body>, or with an empty one, yields a tree with no
// children rather than an error; callers must handle zero sections.
func ParseTEI(data []byte) (*doctree.Tree, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	type frame struct {
		node      *doctree.Node
		textParts []string
	}

	tree := &doctree.Tree{}
	var stack []frame
	inBody := false
	bodyDepth := 0
	depth := 0

	inHead := false
	var headParts []string

	inChunk := false
	var chunkParts []string
	var chunkCoords string

	inTitle := false
	var titleParts []string

	appendText := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if inHead {
			headParts = append(headParts, s)
		}
		if inChunk {
			chunkParts = append(chunkParts, s)
		}
		if len(stack) > 0 {
			top := &stack[len(stack)-1]
			top.textParts = append(top.textParts, s)
		}
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode tei: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "body":
				inBody = true
				bodyDepth = depth
			case "div":
				if !inBody {
					continue
				}
				node := &doctree.Node{}
				if len(stack) > 0 {
					parent := stack[len(stack)-1].node
					parent.Children = append(parent.Children, node)
				} else {
					tree.Children = append(tree.Children, node)
				}
				stack = append(stack, frame{node: node})
			case "head":
				if inBody && len(stack) > 0 {
					inHead = true
					headParts = nil
				}
			case "p":
				if inBody && len(stack) > 0 {
					inChunk = true
					chunkParts = nil
					chunkCoords = attr(t, "coords")
				}
			case "title":
				if !inBody && tree.Title == "" {
					inTitle = true
					titleParts = nil
				}
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "body":
				if depth == bodyDepth {
					inBody = false
				}
			case "div":
				if inBody && len(stack) > 0 {
					top := stack[len(stack)-1]
					top.node.Text = strings.Join(top.textParts, " ")
					stack = stack[:len(stack)-1]
				}
			case "head":
				if inHead {
					inHead = false
					if len(stack) > 0 {
						stack[len(stack)-1].node.Heading = strings.Join(headParts, " ")
					}
				}
			case "title":
				if inTitle {
					inTitle = false
					tree.Title = strings.TrimSpace(strings.Join(titleParts, " "))
				}
			case "p":
				if inChunk {
					inChunk = false
					content := strings.TrimSpace(strings.Join(chunkParts, " "))
					if content != "" && len(stack) > 0 {
						chunk := doctree.Chunk{Content: content}
						if page, coords, ok := parseCoords(chunkCoords); ok {
							chunk.Page = &page
							chunk.Coords = coords
						}
						top := &stack[len(stack)-1]
						top.node.Chunks = append(top.node.Chunks, chunk)
					}
				}
			}
			depth--

		case xml.CharData:
			if inTitle {
				if s := strings.TrimSpace(string(t)); s != "" {
					titleParts = append(titleParts, s)
				}
			}
			if inBody && len(stack) > 0 {
				appendText(string(t))
			}
		}
	}

	return tree, nil
}

// parseCoords converts a TEI coords attribute ("page,x,y,w,h" groups
// separated by ';') into a 1-based page number and an "x0,y0,x1,y1"
// bounding box string. The first group wins when an element spans several
// regions.
func parseCoords(raw string) (int, string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, "", false
	}
	first := raw
	if i := strings.IndexByte(raw, ';'); i >= 0 {
		first = raw[:i]
	}
	parts := strings.Split(first, ",")
	if len(parts) != 5 {
		return 0, "", false
	}
	page, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || page <= 0 {
		return 0, "", false
	}
	vals := make([]float64, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i+1]), 64)
		if err != nil {
			return 0, "", false
		}
		vals[i] = v
	}
	x0, y0, w, h := vals[0], vals[1], vals[2], vals[3]
	coords := fmt.Sprintf("%.2f,%.2f,%.2f,%.2f", x0, y0, x0+w, y0+h)
	return page, coords, true
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
