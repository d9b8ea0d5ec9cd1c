package qa

import (
	"sync"
	"time"

	"github.com/papersum/papersum/internal/llm"
	"github.com/papersum/papersum/internal/vecindex"
)

// Paper is an indexed document held in memory for question answering.
type Paper struct {
	ID        string
	Filename  string
	Index     *vecindex.Index
	Chunks    int
	CreatedAt time.Time
}

// PaperStore keeps indexed papers in memory with TTL-based expiry.
type PaperStore struct {
	mu     sync.RWMutex
	papers map[string]*Paper
	ttl    time.Duration
}

func NewPaperStore(ttl time.Duration) *PaperStore {
	return &PaperStore{
		papers: make(map[string]*Paper),
		ttl:    ttl,
	}
}

func (s *PaperStore) Put(p *Paper) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.papers[p.ID] = p
}

func (s *PaperStore) Get(id string) (*Paper, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.papers[id]
	return p, ok
}

func (s *PaperStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.papers, id)
}

func (s *PaperStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.papers)
}

// Cleanup removes papers older than the TTL and returns how many were
// dropped. A TTL of zero disables expiry.
func (s *PaperStore) Cleanup() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.ttl)
	removed := 0
	for id, p := range s.papers {
		if p.CreatedAt.Before(cutoff) {
			delete(s.papers, id)
			removed++
		}
	}
	return removed
}

// StartCleanup runs Cleanup on an interval until stop is closed.
func (s *PaperStore) StartCleanup(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Cleanup()
			case <-stop:
				return
			}
		}
	}()
}

// session holds one conversation's rolling message history.
type session struct {
	messages  []llm.Message
	updatedAt time.Time
}

// SessionStore keeps per-session chat history, capped to the most recent
// maxTurns question/answer pairs.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	maxTurns int
	ttl      time.Duration
}

func NewSessionStore(maxTurns int, ttl time.Duration) *SessionStore {
	if maxTurns <= 0 {
		maxTurns = 10
	}
	return &SessionStore{
		sessions: make(map[string]*session),
		maxTurns: maxTurns,
		ttl:      ttl,
	}
}

// History returns a copy of the session's messages, oldest first.
func (s *SessionStore) History(id string) []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	out := make([]llm.Message, len(sess.messages))
	copy(out, sess.messages)
	return out
}

// Append records a question/answer exchange, evicting the oldest pair once
// the cap is reached.
func (s *SessionStore) Append(id, question, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{}
		s.sessions[id] = sess
	}
	sess.messages = append(sess.messages,
		llm.Message{Role: llm.RoleUser, Content: question},
		llm.Message{Role: llm.RoleAssistant, Content: answer},
	)
	if max := s.maxTurns * 2; len(sess.messages) > max {
		sess.messages = sess.messages[len(sess.messages)-max:]
	}
	sess.updatedAt = time.Now()
}

// StartCleanup runs Cleanup on an interval until stop is closed.
func (s *SessionStore) StartCleanup(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Cleanup()
			case <-stop:
				return
			}
		}
	}()
}

// Cleanup drops sessions idle for longer than the TTL.
func (s *SessionStore) Cleanup() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.ttl)
	removed := 0
	for id, sess := range s.sessions {
		if sess.updatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
