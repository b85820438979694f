package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"chat-chronicler/internal/chatlog"
)

// TopLimit bounds the author rankings in a report.
const TopLimit = 15

// AuthorCount is one ranking row.
type AuthorCount struct {
	Author string
	Count  int
}

// Report is the fully materialized aggregation of one period.
// Period data is small and bounded, no streaming needed.
type Report struct {
	Start time.Time
	End   time.Time

	Total          int
	NewSinceDigest int
	NewMedia       int

	TopByMessages []AuthorCount
	TopByMedia    []AuthorCount
	Media         chatlog.MediaCounts
}

// Aggregate computes the report for msgs over the half-open window
// [start, end). cursor is the digest cursor; the new-since-digest
// counts cover the log suffix from that position, restricted to the
// same window. Messages with unparsable timestamps are skipped.
// Returns ok=false when nothing falls in the window, so callers can
// emit a distinct empty-state message.
func Aggregate(msgs []chatlog.Message, cursor int, start, end time.Time) (Report, bool) {
	loc := start.Location()

	var period []chatlog.Message
	for _, m := range msgs {
		at, err := m.At(loc)
		if err != nil {
			continue
		}
		if !at.Before(start) && at.Before(end) {
			period = append(period, m)
		}
	}
	if len(period) == 0 {
		return Report{}, false
	}

	r := Report{Start: start, End: end, Total: len(period)}

	msgCounts := newTally()
	mediaCounts := newTally()
	for _, m := range period {
		if m.Kind == chatlog.KindText {
			msgCounts.add(m.Author)
		} else {
			mediaCounts.add(m.Author)
			r.Media.Add(m.Kind)
		}
	}
	r.TopByMessages = msgCounts.top(TopLimit)
	r.TopByMedia = mediaCounts.top(TopLimit)

	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(msgs) {
		cursor = len(msgs)
	}
	for _, m := range msgs[cursor:] {
		at, err := m.At(loc)
		if err != nil {
			continue
		}
		if !at.Before(start) && at.Before(end) {
			r.NewSinceDigest++
			if m.IsMedia() {
				r.NewMedia++
			}
		}
	}

	return r, true
}

// tally counts per author preserving first-encounter order so that
// ranking ties stay stable.
type tally struct {
	counts map[string]int
	order  []string
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(author string) {
	if _, ok := t.counts[author]; !ok {
		t.order = append(t.order, author)
	}
	t.counts[author]++
}

func (t *tally) top(limit int) []AuthorCount {
	out := make([]AuthorCount, 0, len(t.order))
	for _, a := range t.order {
		out = append(out, AuthorCount{Author: a, Count: t.counts[a]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// NoDataText is the empty-state reply for a window with no messages.
const NoDataText = "Нет данных за выбранный период."

// Format renders the report the way it is sent to the chat.
func (r Report) Format() string {
	var b strings.Builder
	b.WriteString("📊 Статистика чата за период: ")
	b.WriteString(r.Start.Format("02.01.2006"))
	b.WriteString("–")
	b.WriteString(r.End.Add(-time.Second).Format("02.01.2006"))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Всего сообщений: %d\n", r.Total)
	fmt.Fprintf(&b, "Новых сообщений с последней сводки: %d\n", r.NewSinceDigest)
	fmt.Fprintf(&b, "Нового медиа: %d\n\n", r.NewMedia)

	b.WriteString("🏆 Топ по сообщениям:\n")
	for i, ac := range r.TopByMessages {
		fmt.Fprintf(&b, "%d. %s: %d\n", i+1, ac.Author, ac.Count)
	}

	b.WriteString("\n🎞 Топ по медиа:\n")
	for i, ac := range r.TopByMedia {
		fmt.Fprintf(&b, "%d. %s: %d\n", i+1, ac.Author, ac.Count)
	}

	b.WriteString("\n🔎 Медиаконтент всего:\n")
	fmt.Fprintf(&b, "- photo: %d\n", r.Media.Photo)
	fmt.Fprintf(&b, "- video: %d\n", r.Media.Video)
	fmt.Fprintf(&b, "- voice: %d\n", r.Media.Voice)
	fmt.Fprintf(&b, "- document: %d\n", r.Media.Document)

	return b.String()
}
