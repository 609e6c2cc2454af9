// Package memory is the durable record of conversation history, the user
// profile and learned programming knowledge. Every mutation is written
// through to the backend; persistence failures are logged and the store keeps
// working from its in-process copy.
package memory

import (
	"encoding/json"
	"errors"
	log "log/slog"
	"slices"
	"strings"
	"sync"
	"time"
)

const DefaultMaxHistory = 20

// Store owns the in-process State and its backend.
type Store struct {
	mu         sync.Mutex
	backend    Backend
	maxHistory int
	state      *State
	now        func() time.Time
	log        *log.Logger
}

type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Open creates the store and loads the persisted document. It never fails:
// missing or corrupt documents yield a fresh default state.
func Open(backend Backend, maxHistory int, opts ...Option) *Store {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	s := &Store{
		backend:    backend,
		maxHistory: maxHistory,
		now:        time.Now,
		log:        log.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	s.state = s.load()
	return s
}

// Load re-reads the backend, replacing the in-process state.
func (s *Store) Load() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.load()
	return s.state.clone()
}

func (s *Store) load() *State {
	if s.backend == nil {
		return NewState()
	}
	data, err := s.backend.Load()
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Error("Failed to load memory, starting fresh", "err", err)
		}
		return NewState()
	}
	st := &State{}
	if err := json.Unmarshal(data, st); err != nil {
		s.log.Error("Memory document is corrupt, starting fresh", "err", err)
		return NewState()
	}
	st.fill()
	return st
}

// Save serializes the current state. Failure is logged and reported as false.
func (s *Store) Save() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() bool {
	if s.backend == nil {
		return false
	}
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		s.log.Error("Failed to encode memory", "err", err)
		return false
	}
	if err := s.backend.Save(data); err != nil {
		s.log.Error("Failed to save memory", "err", err)
		return false
	}
	return true
}

// Close flushes the state and releases the backend.
func (s *Store) Close() error {
	s.Save()
	if s.backend == nil {
		return nil
	}
	return s.backend.Close()
}

// AppendConversation records an exchange, keeping at most maxHistory entries.
func (s *Store) AppendConversation(utterance, response string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.state.ConversationHistory = append(s.state.ConversationHistory, Conversation{
		Timestamp: now,
		User:      utterance,
		Assistant: response,
		Type:      "conversation",
	})
	s.state.SystemData.TotalInteractions++
	s.state.SystemData.LastSession = now
	if n := len(s.state.ConversationHistory); n > s.maxHistory {
		s.state.ConversationHistory = slices.Clone(s.state.ConversationHistory[n-s.maxHistory:])
	}
	s.saveLocked()
}

// RecordProgrammingKnowledge stores a fixed error when solution is set,
// a learned concept otherwise.
func (s *Store) RecordProgrammingKnowledge(language, concept, solution string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := s.knowledgeLocked(language)
	if solution != "" {
		k.ErrorsFixed = append(k.ErrorsFixed, FixedError{Concept: concept, Solution: solution, Timestamp: s.now()})
	} else {
		k.ConceptsLearned = append(k.ConceptsLearned, Concept{Concept: concept, Timestamp: s.now()})
	}
	s.saveLocked()
}

func (s *Store) knowledgeLocked(language string) *Knowledge {
	k, ok := s.state.ProgrammingKnowledge[language]
	if !ok || k == nil {
		k = emptyKnowledge()
		s.state.ProgrammingKnowledge[language] = k
	}
	return k
}

// ProgrammingContext returns a copy of what is known about language.
// Unknown languages yield empty lists.
func (s *Store) ProgrammingContext(language string) Knowledge {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.state.ProgrammingKnowledge[language]
	if !ok || k == nil {
		return *emptyKnowledge()
	}
	return k.clone()
}

// RecentContext renders the last n exchanges as User:/Assistant: lines, most recent last.
func (s *Store) RecentContext(n int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.state.ConversationHistory
	if n < len(h) {
		h = h[len(h)-n:]
	}
	if n <= 0 {
		h = nil
	}
	lines := make([]string, 0, 2*len(h))
	for _, c := range h {
		lines = append(lines, "User: "+c.User, "Assistant: "+c.Assistant)
	}
	return strings.Join(lines, "\n")
}

// SetUser sets the display name and merges preferences.
func (s *Store) SetUser(name string, preferences map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.UserInfo.Name = name
	for k, v := range preferences {
		s.state.UserInfo.Preferences[k] = v
	}
	s.saveLocked()
}

func (s *Store) UserName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.UserInfo.Name
}

// AddKnownLanguage adds language to the user's language set.
func (s *Store) AddKnownLanguage(language string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if language == "" || slices.Contains(s.state.UserInfo.ProgrammingLanguages, language) {
		return
	}
	s.state.UserInfo.ProgrammingLanguages = append(s.state.UserInfo.ProgrammingLanguages, language)
	s.saveLocked()
}

// ClearConversations empties the history. The user profile is kept.
func (s *Store) ClearConversations() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ConversationHistory = []Conversation{}
	s.saveLocked()
}

func (s *Store) LearnFact(category, fact string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LearnedFacts[category] = append(s.state.LearnedFacts[category], Fact{Fact: fact, Timestamp: s.now()})
	s.saveLocked()
}

func (s *Store) SetMood(mood string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.FriendshipData.UserMood == mood {
		return
	}
	s.state.FriendshipData.UserMood = mood
	s.saveLocked()
}

func (s *Store) TotalInteractions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SystemData.TotalInteractions
}

func (s *Store) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.ConversationHistory)
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}
