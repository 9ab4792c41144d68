package http

import (
	"container/list"
	"sync"
	"time"

	"github.com/google/uuid"

	"fincoach/internal/core"
)

// Chat roles as rendered by the UI.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of the transcript.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session is the per-browser conversation state: transcript, auth
// token, selected year and an optional pinned persona. It lives only
// in memory; when it expires the conversation is gone.
//
// One browser can have several requests in flight at once (chat,
// analyze, chart), so all state access goes through the mutex.
type Session struct {
	ID string

	mu            sync.Mutex
	token         string
	year          int
	pinnedPersona core.Persona // empty: auto-detect per message
	autoConnected bool         // token arrived via the URL handoff
	messages      []ChatMessage
}

// Append adds a turn to the transcript.
func (s *Session) Append(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, ChatMessage{Role: role, Content: content})
}

// Transcript returns a copy of the message history.
func (s *Session) Transcript() []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// SeedGreeting writes the opening assistant message into an empty
// transcript, picking the connected variant when the token arrived via
// the URL handoff. Non-empty transcripts are left alone, so concurrent
// first requests produce exactly one greeting.
func (s *Session) SeedGreeting(connected, plain string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) != 0 {
		return
	}
	greeting := plain
	if s.autoConnected {
		greeting = connected
	}
	s.messages = append(s.messages, ChatMessage{Role: RoleAssistant, Content: greeting})
}

// Connect stores a token handed over in the URL.
func (s *Session) Connect(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.autoConnected = true
}

// SetToken stores a manually entered token. Clearing the token also
// clears the auto-connected marker.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	if token == "" {
		s.autoConnected = false
	}
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) AutoConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoConnected
}

func (s *Session) SetYear(year int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.year = year
}

func (s *Session) Year() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.year
}

// Pin fixes the persona for every following turn; the empty persona
// restores auto-detection.
func (s *Session) Pin(persona core.Persona) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pinnedPersona = persona
}

func (s *Session) Persona() core.Persona {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pinnedPersona
}

// State snapshots the fields a chat turn needs in one lock round.
func (s *Session) State() (token string, year int, persona core.Persona) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.year, s.pinnedPersona
}

// sessionStore keeps sessions with TTL and LRU eviction so abandoned
// browsers cannot grow memory without bound.
type sessionStore struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
}

type sessionEntry struct {
	session   *Session
	expiresAt time.Time
}

func newSessionStore(maxSize int, ttl time.Duration) *sessionStore {
	return &sessionStore{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// Get returns the live session for an ID. Access slides the expiry
// forward so active conversations stay alive.
func (st *sessionStore) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	elem, exists := st.items[id]
	if !exists {
		return nil, false
	}
	entry := elem.Value.(*sessionEntry)
	if time.Now().After(entry.expiresAt) {
		st.removeElement(elem)
		return nil, false
	}
	entry.expiresAt = time.Now().Add(st.ttl)
	st.lru.MoveToFront(elem)
	return entry.session, true
}

// New creates, stores and returns a fresh session.
func (st *sessionStore) New() *Session {
	sess := &Session{
		ID:   uuid.NewString(),
		year: time.Now().Year(),
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	elem := st.lru.PushFront(&sessionEntry{
		session:   sess,
		expiresAt: time.Now().Add(st.ttl),
	})
	st.items[sess.ID] = elem

	if st.lru.Len() > st.maxSize {
		if oldest := st.lru.Back(); oldest != nil {
			st.removeElement(oldest)
		}
	}
	return sess
}

func (st *sessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.lru.Len()
}

// CleanExpired removes all expired sessions and reports how many.
func (st *sessionStore) CleanExpired() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := time.Now()
	var toRemove []*list.Element
	for elem := st.lru.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*sessionEntry).expiresAt) {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		st.removeElement(elem)
	}
	return len(toRemove)
}

func (st *sessionStore) removeElement(elem *list.Element) {
	entry := elem.Value.(*sessionEntry)
	delete(st.items, entry.session.ID)
	st.lru.Remove(elem)
}
