package doctree

import "strings"

// Tree is the root of a structured document.
type Tree struct {
	Title    string  // Document title (from metadata or filename)
	Children []*Node // Top-level sections
}

// Node is a recursive section in the document tree.
type Node struct {
	Heading  string  // Section heading (empty when the source had none)
	Text     string  // Text content of this node (may be empty for container nodes)
	Page     int     // Source page (0 if N/A)
	Chunks   []Chunk // Retrievable units carrying provenance, if the source provides them
	Children []*Node // Subsections
}

// UntitledHeading labels sections whose source markup carries no heading.
const UntitledHeading = "Untitled"

// Section is a heading-labeled block of flattened document text.
type Section struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
}

// Chunk is a retrievable unit of source text. Page and Coords are provenance
// for visual highlighting and may be absent.
type Chunk struct {
	Content string `json:"content"`
	Page    *int   `json:"page"`
	Coords  string `json:"coords,omitempty"`
}

// Flatten walks the tree depth-first and emits one Section per node.
// A node's content is all text directly and transitively contained in it,
// so when both a parent and its children carry text, that text appears in
// more than one Section. The source structuring service behaves the same
// way and downstream stages tolerate it, so the duplication is preserved
// rather than deduplicated here. Whitespace-only sections are dropped.
func Flatten(tree *Tree) []Section {
	if tree == nil {
		return nil
	}
	var out []Section
	for _, child := range tree.Children {
		flattenNode(child, &out)
	}
	return out
}

func flattenNode(n *Node, out *[]Section) {
	content := strings.TrimSpace(n.subtreeText())
	if content != "" {
		heading := strings.TrimSpace(n.Heading)
		if heading == "" {
			heading = UntitledHeading
		}
		*out = append(*out, Section{Heading: heading, Content: content})
	}
	for _, child := range n.Children {
		flattenNode(child, out)
	}
}

// subtreeText concatenates the node's own text with all descendant text in
// reading order.
func (n *Node) subtreeText() string {
	var sb strings.Builder
	var walk func(*Node)
	walk = func(node *Node) {
		if t := strings.TrimSpace(node.Text); t != "" {
			if sb.Len() > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(t)
		}
		for _, c := range node.Children {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// ChunkPool collects every chunk in the tree into one flat slice in reading
// order. Nodes without explicit chunks contribute one derived chunk per
// paragraph of their own text, carrying the node's page when known.
func ChunkPool(tree *Tree) []Chunk {
	if tree == nil {
		return nil
	}
	var out []Chunk
	var walk func(*Node)
	walk = func(n *Node) {
		if len(n.Chunks) > 0 {
			out = append(out, n.Chunks...)
		} else if t := strings.TrimSpace(n.Text); t != "" {
			for _, para := range strings.Split(t, "\n\n") {
				para = strings.TrimSpace(para)
				if para == "" {
					continue
				}
				c := Chunk{Content: para}
				if n.Page > 0 {
					page := n.Page
					c.Page = &page
				}
				out = append(out, c)
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, child := range tree.Children {
		walk(child)
	}
	return out
}

// FullText extracts all text from the tree into a single string, blocks
// separated by blank lines.
func FullText(tree *Tree) string {
	if tree == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*Node)
	walk = func(n *Node) {
		if t := strings.TrimSpace(n.Text); t != "" {
			if sb.Len() > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(t)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, child := range tree.Children {
		walk(child)
	}
	return sb.String()
}
