package cursor

import (
	"fmt"
	"sync"

	"chat-chronicler/internal/storage"
)

// Table tracks, per chat, how far digests have consumed the log and
// which calendar month was last reported. It is a sidecar of the
// event log keyed by the same chat ids, persisted as two independent
// durable tables.
type Table struct {
	mu          sync.RWMutex
	summaryBlob storage.Blob
	monthlyBlob storage.Blob
	summary     map[string]int
	monthly     map[string]string
	// monthly tags set during this run win over durable values on
	// load; the tag is always compared against a fresh read at call
	// time, so a durable overwrite could only reintroduce duplicates.
	monthlySetThisRun map[string]bool
}

func NewTable(summaryBlob, monthlyBlob storage.Blob) *Table {
	return &Table{
		summaryBlob:       summaryBlob,
		monthlyBlob:       monthlyBlob,
		summary:           make(map[string]int),
		monthly:           make(map[string]string),
		monthlySetThisRun: make(map[string]bool),
	}
}

// Summary returns the number of leading log events already folded
// into a digest. Unknown chats default to 0.
func (t *Table) Summary(chatID string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.summary[chatID]
}

// MonthlyTag returns the "YYYY-MM" key of the last reported month,
// empty for unknown chats.
func (t *Table) MonthlyTag(chatID string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.monthly[chatID]
}

// AdvanceSummary moves the summary cursor. Callers guarantee the new
// value is >= the current one and <= the current log length.
func (t *Table) AdvanceSummary(chatID string, v int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.summary[chatID] = v
}

// ResetSummary zeroes the cursor. Only used by the explicit history
// clear.
func (t *Table) ResetSummary(chatID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.summary[chatID] = 0
}

// SetMonthlyTag records that month key's report went out. The dedup
// check against the current tag is the caller's responsibility.
func (t *Table) SetMonthlyTag(chatID, key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.monthly[chatID] = key
	t.monthlySetThisRun[chatID] = true
}

// ClearMonthlyTag resets the tag to empty (history clear).
func (t *Table) ClearMonthlyTag(chatID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.monthly[chatID] = ""
	t.monthlySetThisRun[chatID] = true
}

// LoadAndMerge reconciles durable cursor state into memory. Summary
// cursors take the per-chat maximum so a reload never regresses
// digest progress; monthly tags loaded from disk never overwrite tags
// already written during this run.
func (t *Table) LoadAndMerge() error {
	summary := make(map[string]int)
	if err := t.summaryBlob.Load(&summary); err != nil {
		return fmt.Errorf("load summary cursors: %w", err)
	}
	monthly := make(map[string]string)
	if err := t.monthlyBlob.Load(&monthly); err != nil {
		return fmt.Errorf("load monthly tags: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for chatID, v := range summary {
		if v > t.summary[chatID] {
			t.summary[chatID] = v
		}
	}
	for chatID, key := range monthly {
		if !t.monthlySetThisRun[chatID] {
			t.monthly[chatID] = key
		}
	}
	return nil
}

// Persist overwrites both durable tables. Paired with every event-log
// persist so cursor and log never stay durably inconsistent longer
// than one write.
func (t *Table) Persist() error {
	t.mu.RLock()
	summary := make(map[string]int, len(t.summary))
	for k, v := range t.summary {
		summary[k] = v
	}
	monthly := make(map[string]string, len(t.monthly))
	for k, v := range t.monthly {
		monthly[k] = v
	}
	t.mu.RUnlock()

	if err := t.summaryBlob.Save(summary); err != nil {
		return fmt.Errorf("persist summary cursors: %w", err)
	}
	if err := t.monthlyBlob.Save(monthly); err != nil {
		return fmt.Errorf("persist monthly tags: %w", err)
	}
	return nil
}
