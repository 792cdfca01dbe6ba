package game

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// Session is one player's game as held by a server.
// The engine is single-writer; Do serializes every access to it.
type Session struct {
	ID        string    // random hex identifier
	Lang      string    // language edition the article came from
	CreatedAt time.Time // set by NewSession

	mu     sync.Mutex
	engine *Engine
}

// NewSession constructs a session with an empty engine.
func NewSession(lang string) *Session {
	return &Session{
		ID:        randomID(),
		Lang:      lang,
		CreatedAt: time.Now().UTC(),
		engine:    New(),
	}
}

// Do runs fn with exclusive access to the session's engine.
func (s *Session) Do(fn func(*Engine)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.engine)
}

// randomID returns a compact 16‑hex‑char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
