package parser

import (
	"strings"

	"github.com/papersum/papersum/internal/doctree"
)

// outline builds a nested section tree from a linear stream of headings and
// text blocks, nesting by heading level. All heading-structured formats
// (markdown, html, docx) feed through it.
type outline struct {
	root    *doctree.Node
	stack   []outlineEntry
	pending strings.Builder
}

type outlineEntry struct {
	node  *doctree.Node
	level int
}

func newOutline(title string) *outline {
	root := &doctree.Node{Heading: title}
	return &outline{
		root:  root,
		stack: []outlineEntry{{node: root, level: 0}},
	}
}

// Heading closes the pending text block and opens a new section at the given
// level (1-6), popping back to the nearest ancestor with a lower level.
func (o *outline) Heading(level int, title string) {
	o.flush()
	node := &doctree.Node{Heading: title}
	for len(o.stack) > 1 && o.stack[len(o.stack)-1].level >= level {
		o.stack = o.stack[:len(o.stack)-1]
	}
	parent := o.stack[len(o.stack)-1].node
	parent.Children = append(parent.Children, node)
	o.stack = append(o.stack, outlineEntry{node: node, level: level})
}

// Text appends a block of text to the current section.
func (o *outline) Text(t string) {
	t = strings.TrimSpace(t)
	if t == "" {
		return
	}
	if o.pending.Len() > 0 {
		o.pending.WriteString("\n\n")
	}
	o.pending.WriteString(t)
}

func (o *outline) flush() {
	t := strings.TrimSpace(o.pending.String())
	o.pending.Reset()
	if t == "" {
		return
	}
	top := o.stack[len(o.stack)-1].node
	if top.Text != "" {
		top.Text += "\n\n" + t
	} else {
		top.Text = t
	}
}

// Finish returns the top-level sections. Text that arrived before any
// heading becomes a single untitled leading section.
func (o *outline) Finish() []*doctree.Node {
	o.flush()
	children := o.root.Children
	if o.root.Text != "" {
		leading := &doctree.Node{Text: o.root.Text}
		children = append([]*doctree.Node{leading}, children...)
	}
	return children
}
