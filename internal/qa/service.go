package qa

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/papersum/papersum/internal/chunker"
	"github.com/papersum/papersum/internal/doctree"
	"github.com/papersum/papersum/internal/embed"
	"github.com/papersum/papersum/internal/llm"
	"github.com/papersum/papersum/internal/vecindex"
)

var (
	ErrEmptyQuestion = errors.New("question is empty")
	ErrPaperNotFound = errors.New("paper not found")
	ErrNoText        = errors.New("document has no extractable text")
)

// Service indexes uploaded papers and answers questions against them with
// retrieved context plus per-session chat history.
type Service struct {
	gen      llm.Generator
	embedder embed.Embedder
	papers   *PaperStore
	sessions *SessionStore
	chunkCfg chunker.Config
	topK     int
	log      *slog.Logger
}

type ServiceConfig struct {
	Generator   llm.Generator
	Embedder    embed.Embedder
	ChunkConfig chunker.Config
	TopK        int
	PaperTTL    time.Duration
	SessionTTL  time.Duration
	MaxTurns    int
	Logger      *slog.Logger
}

func NewService(cfg ServiceConfig) *Service {
	topK := cfg.TopK
	if topK <= 0 {
		topK = 5
	}
	return &Service{
		gen:      cfg.Generator,
		embedder: cfg.Embedder,
		papers:   NewPaperStore(cfg.PaperTTL),
		sessions: NewSessionStore(cfg.MaxTurns, cfg.SessionTTL),
		chunkCfg: cfg.ChunkConfig,
		topK:     topK,
		log:      cfg.Logger,
	}
}

// Papers exposes the paper store for cleanup scheduling.
func (s *Service) Papers() *PaperStore { return s.papers }

// Sessions exposes the session store for cleanup scheduling.
func (s *Service) Sessions() *SessionStore { return s.sessions }

// IndexPaper chunks and embeds the document text and stores a fresh vector
// index under the returned paper ID. Re-uploading identical content reuses
// the same ID.
func (s *Service) IndexPaper(ctx context.Context, filename, text string) (string, int, error) {
	pieces := chunker.Split(text, s.chunkCfg)
	if len(pieces) == 0 {
		return "", 0, ErrNoText
	}

	vectors, err := s.embedder.EmbedBatch(ctx, pieces)
	if err != nil {
		return "", 0, fmt.Errorf("embed paper chunks: %w", err)
	}

	chunks := make([]doctree.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = doctree.Chunk{Content: p}
	}

	ix := vecindex.New()
	if err := ix.Add(vectors, chunks); err != nil {
		return "", 0, fmt.Errorf("index paper chunks: %w", err)
	}

	id := contentID(text)
	s.papers.Put(&Paper{
		ID:        id,
		Filename:  filename,
		Index:     ix,
		Chunks:    len(pieces),
		CreatedAt: time.Now(),
	})

	if s.log != nil {
		s.log.Info("paper indexed", "paper_id", id, "filename", filename, "chunks", len(pieces))
	}
	return id, len(pieces), nil
}

// Ask answers a question about an indexed paper. Retrieved chunks are
// stitched into the prompt together with the session's prior exchanges, and
// the new exchange is appended to the session afterwards.
func (s *Service) Ask(ctx context.Context, sessionID, paperID, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuestion
	}
	paper, ok := s.papers.Get(paperID)
	if !ok {
		return "", ErrPaperNotFound
	}

	qvecs, err := s.embedder.EmbedBatch(ctx, []string{question})
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}

	matches := paper.Index.Search(qvecs[0], s.topK)
	var sb strings.Builder
	for i, m := range matches {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(m.Chunk.Content)
	}

	messages := make([]llm.Message, 0, 2+len(s.sessions.History(sessionID))+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: llm.QASystemPrompt})
	messages = append(messages, s.sessions.History(sessionID)...)
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: llm.QAUserPrompt(sb.String(), question),
	})

	answer, err := s.gen.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("answer question: %w", err)
	}

	s.sessions.Append(sessionID, question, answer)
	return answer, nil
}

// contentID derives a stable paper ID from the document text.
func contentID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:8])
}
