package chunker

import (
	"strings"
	"unicode"
)

// Config controls how document text is split for embedding and retrieval.
type Config struct {
	// ChunkSize is the target chunk length in characters.
	ChunkSize int
	// ChunkOverlap is how many trailing characters of one chunk are
	// repeated at the start of the next, to keep context across the seam.
	ChunkOverlap int
	// MinChunk drops fragments shorter than this many characters.
	MinChunk int
}

// DefaultConfig matches the retrieval settings the QA flow was tuned with.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    1000,
		ChunkOverlap: 100,
		MinChunk:     20,
	}
}

// Split breaks text into overlapping chunks. Paragraph boundaries are
// preferred, then sentence boundaries, then a hard cut, so chunks end at the
// most natural break available.
func Split(text string, cfg Config) []string {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = 0
	}

	text = normalize(text)
	if text == "" {
		return nil
	}
	if len(text) <= cfg.ChunkSize {
		if len(text) < cfg.MinChunk {
			return nil
		}
		return []string{text}
	}

	var chunks []string
	offset := 0
	for offset < len(text) {
		end := offset + cfg.ChunkSize
		if end >= len(text) {
			end = len(text)
		} else {
			end = breakPoint(text, offset, end)
		}

		chunk := strings.TrimSpace(text[offset:end])
		if len(chunk) >= cfg.MinChunk {
			chunks = append(chunks, chunk)
		}
		if end >= len(text) {
			break
		}

		next := end - cfg.ChunkOverlap
		if next <= offset {
			next = end
		}
		offset = next
	}
	return chunks
}

// breakPoint picks the best split position in (start, limit]: the last
// paragraph break, else the last sentence end, else the last space, else the
// hard limit. Splits in the first half of the window are rejected so chunks
// stay near their target size.
func breakPoint(text string, start, limit int) int {
	window := text[start:limit]
	half := len(window) / 2

	if i := strings.LastIndex(window, "\n\n"); i > half {
		return start + i
	}
	if i := lastSentenceEnd(window); i > half {
		return start + i
	}
	if i := strings.LastIndexFunc(window, unicode.IsSpace); i > half {
		return start + i
	}
	return limit
}

// lastSentenceEnd returns the index just past the last ". ", "! " or "? "
// in s, or -1.
func lastSentenceEnd(s string) int {
	best := -1
	for i := 0; i < len(s)-1; i++ {
		switch s[i] {
		case '.', '!', '?':
			if s[i+1] == ' ' || s[i+1] == '\n' {
				best = i + 1
			}
		}
	}
	return best
}

// normalize collapses runs of blank lines and trims the text so chunk
// boundaries are not dominated by formatting noise.
func normalize(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var out []string
	blank := false
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, trimmed)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
