package chatlog

import (
	"fmt"
	"sync"

	"chat-chronicler/internal/storage"
)

// Store holds the per-chat message log and its durable snapshot.
// In-memory state is authoritative for the current process; the
// snapshot is reconciled through LoadAndMerge.
type Store struct {
	mu   sync.RWMutex
	blob storage.Blob
	logs map[string][]Message
}

func NewStore(blob storage.Blob) *Store {
	return &Store{blob: blob, logs: make(map[string][]Message)}
}

// Append adds a message to the chat's in-memory log. Always succeeds;
// ordering is arrival order, no timestamp check.
func (s *Store) Append(chatID string, m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[chatID] = append(s.logs[chatID], m)
}

// Messages returns a copy of the chat's log.
func (s *Store) Messages(chatID string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.logs[chatID]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

func (s *Store) Len(chatID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs[chatID])
}

// ChatIDs lists every chat known in memory.
func (s *Store) ChatIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.logs))
	for id := range s.logs {
		out = append(out, id)
	}
	return out
}

// Clear empties the chat's log. An empty log is the clean state; the
// entry itself is kept.
func (s *Store) Clear(chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[chatID] = []Message{}
}

// PersistAll replaces the durable snapshot with the full in-memory
// state. Used for periodic bulk checkpoints.
func (s *Store) PersistAll() error {
	s.mu.RLock()
	snapshot := make(map[string][]Message, len(s.logs))
	for id, msgs := range s.logs {
		cp := make([]Message, len(msgs))
		copy(cp, msgs)
		snapshot[id] = cp
	}
	s.mu.RUnlock()

	if err := s.blob.Save(snapshot); err != nil {
		return fmt.Errorf("persist all: %w", err)
	}
	return nil
}

// PersistOne rewrites only chatID's entry in the durable snapshot,
// read-modify-write, so other chats' durable data is not clobbered.
// Called synchronously after every appended message.
func (s *Store) PersistOne(chatID string) error {
	s.mu.RLock()
	msgs := s.logs[chatID]
	cp := make([]Message, len(msgs))
	copy(cp, msgs)
	s.mu.RUnlock()

	existing := make(map[string][]Message)
	if err := s.blob.Load(&existing); err != nil {
		return fmt.Errorf("persist one read: %w", err)
	}
	existing[chatID] = cp
	if err := s.blob.Save(existing); err != nil {
		return fmt.Errorf("persist one write: %w", err)
	}
	return nil
}

// LoadAndMerge reconciles the durable snapshot into memory. Chats
// absent or empty in memory are replaced wholesale; chats with live
// in-memory messages merge by timestamp-string dedup, so repeated
// loads are idempotent and events appended between snapshot and
// reload survive. The dedup key is deliberately the serialized
// timestamp, not a content hash.
func (s *Store) LoadAndMerge() error {
	durable := make(map[string][]Message)
	if err := s.blob.Load(&durable); err != nil {
		return fmt.Errorf("load: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for chatID, msgs := range durable {
		current := s.logs[chatID]
		if len(current) == 0 {
			cp := make([]Message, len(msgs))
			copy(cp, msgs)
			s.logs[chatID] = cp
			continue
		}
		seen := make(map[string]bool, len(current))
		for _, m := range current {
			seen[m.Timestamp] = true
		}
		for _, m := range msgs {
			if !seen[m.Timestamp] {
				s.logs[chatID] = append(s.logs[chatID], m)
			}
		}
	}
	return nil
}
