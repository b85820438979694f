package digest

import (
	"context"
	"fmt"
	"log"

	"chat-chronicler/internal/chatlog"
	"chat-chronicler/internal/cursor"
	"chat-chronicler/internal/errlog"
	"chat-chronicler/internal/llm"
)

const (
	// MinNewMessages is the policy threshold below which no digest is
	// attempted. Not a fault, a normal negative result.
	MinNewMessages = 3
	// DefaultFallbackTail bounds the retry attempt after a failed
	// summarizer call.
	DefaultFallbackTail = 500
)

// Summarizer is the external collaborator producing the digest text.
// It must not mutate its input.
type Summarizer interface {
	Summarize(ctx context.Context, msgs []chatlog.Message) (string, error)
}

// Kind classifies a terminal digest failure.
type Kind string

const (
	KindConnectivity Kind = "connectivity"
	KindOther        Kind = "other"
)

// RunError is a terminal summarizer failure. ID is an opaque
// correlation id matching the error log; raw detail is never shown to
// the chat.
type RunError struct {
	Kind Kind
	ID   string
	Err  error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("digest failed (%s, id=%s): %v", e.Kind, e.ID, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// NotEnoughError reports that too few messages are pending. The
// cursor is untouched and the summarizer was never called.
type NotEnoughError struct {
	Pending int
}

func (e *NotEnoughError) Error() string {
	return fmt.Sprintf("not enough new messages: %d", e.Pending)
}

// Result is a committed digest.
type Result struct {
	Summary string
	// Media counts the exact slice that was summarized (the fallback
	// tail when the first attempt failed).
	Media chatlog.MediaCounts
	// Used is how many messages the summarized slice contained.
	Used int
}

// Service orchestrates one digest run: collect pending messages, call
// the summarizer with one fallback retry, and advance the cursor only
// on confirmed success. Runs are side-effect free on failure, so a
// caller can simply invoke again later.
type Service struct {
	store        *chatlog.Store
	cursors      *cursor.Table
	summarizer   Summarizer
	errors       *errlog.Logger
	fallbackTail int
}

func New(store *chatlog.Store, cursors *cursor.Table, summarizer Summarizer, errors *errlog.Logger, fallbackTail int) *Service {
	if fallbackTail <= 0 {
		fallbackTail = DefaultFallbackTail
	}
	return &Service{
		store:        store,
		cursors:      cursors,
		summarizer:   summarizer,
		errors:       errors,
		fallbackTail: fallbackTail,
	}
}

// Run produces a digest for one chat. Both the manual and the
// scheduled path call this; it reloads durable state first, which is
// safe because merges are idempotent.
func (s *Service) Run(ctx context.Context, chatID string) (Result, error) {
	if err := s.store.PersistAll(); err != nil {
		log.Printf("⚠️ checkpoint before digest failed: %v", err)
	}
	if err := s.store.LoadAndMerge(); err != nil {
		log.Printf("⚠️ history reload failed, using in-memory state: %v", err)
	}
	if err := s.cursors.LoadAndMerge(); err != nil {
		log.Printf("⚠️ cursor reload failed, using in-memory state: %v", err)
	}

	msgs := s.store.Messages(chatID)
	cur := s.cursors.Summary(chatID)
	if cur > len(msgs) {
		cur = len(msgs)
	}
	pending := msgs[cur:]
	if len(pending) < MinNewMessages {
		return Result{}, &NotEnoughError{Pending: len(pending)}
	}

	used := pending
	text, err := s.summarizer.Summarize(ctx, used)
	if err != nil {
		id := errlog.NewID()
		s.errors.Report(id, "summarizer (primary)", err, map[string]any{
			"chat_id":  chatID,
			"pending":  len(pending),
			"attempt":  "primary",
			"fallback": s.fallbackTail,
		})

		// Exactly one retry, with the most recent messages only.
		used = pending
		if len(used) > s.fallbackTail {
			used = used[len(used)-s.fallbackTail:]
		}
		text, err = s.summarizer.Summarize(ctx, used)
		if err != nil {
			id = errlog.NewID()
			s.errors.Report(id, "summarizer (fallback)", err, map[string]any{
				"chat_id": chatID,
				"pending": len(pending),
				"used":    len(used),
				"attempt": "fallback",
			})
			kind := KindOther
			if llm.IsConnectivity(err) {
				kind = KindConnectivity
			}
			return Result{}, &RunError{Kind: kind, ID: id, Err: err}
		}
	}

	// Commit: the cursor moves to the log length measured now, after
	// the summarizer returned, so messages appended during the call
	// are also marked consumed.
	s.cursors.AdvanceSummary(chatID, s.store.Len(chatID))
	if err := s.store.PersistOne(chatID); err != nil {
		log.Printf("⚠️ history persist after digest failed: %v", err)
	}
	if err := s.cursors.Persist(); err != nil {
		log.Printf("⚠️ cursor persist after digest failed: %v", err)
	}

	return Result{Summary: text, Media: chatlog.CountMedia(used), Used: len(used)}, nil
}
