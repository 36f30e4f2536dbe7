package services

import (
	"sync"
	"time"
)

// ChatTurn is one message of a branch conversation.
type ChatTurn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationStore keeps recent chat messages per branch in memory. Contents
// are lost on restart.
type ConversationStore struct {
	mu          sync.Mutex
	maxMessages int
	history     map[string][]ChatTurn
}

// NewConversationStore retains the last `turns` exchanges (2*turns messages) per branch.
func NewConversationStore(turns int) *ConversationStore {
	if turns < 1 {
		turns = 1
	}
	return &ConversationStore{maxMessages: turns * 2, history: make(map[string][]ChatTurn)}
}

func (s *ConversationStore) Append(branchID string, turns ...ChatTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := append(s.history[branchID], turns...)
	if len(h) > s.maxMessages {
		h = append([]ChatTurn(nil), h[len(h)-s.maxMessages:]...)
	}
	s.history[branchID] = h
}

// Recent returns a copy of at most n of the newest messages of a branch.
func (s *ConversationStore) Recent(branchID string, n int) []ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.history[branchID]
	if n > 0 && len(h) > n {
		h = h[len(h)-n:]
	}
	return append([]ChatTurn(nil), h...)
}

// Clear drops a branch's history and reports whether there was any.
func (s *ConversationStore) Clear(branchID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.history[branchID]
	delete(s.history, branchID)
	return ok
}

// Len is the number of branches with history.
func (s *ConversationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// Close empties the store.
func (s *ConversationStore) Close() {
	s.mu.Lock()
	s.history = make(map[string][]ChatTurn)
	s.mu.Unlock()
}
