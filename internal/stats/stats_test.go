package stats

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"chat-chronicler/internal/chatlog"
)

var loc = time.FixedZone("UTC+3", 3*60*60)

func at(day, hour int) string {
	return time.Date(2024, 7, day, hour, 0, 0, 0, loc).Format(time.RFC3339)
}

func text(author, ts string) chatlog.Message {
	return chatlog.Message{Author: author, Body: "hi", Timestamp: ts, Kind: chatlog.KindText}
}

func media(author, ts string, kind chatlog.Kind) chatlog.Message {
	return chatlog.Message{Author: author, Timestamp: ts, Kind: kind}
}

func window() (time.Time, time.Time) {
	return time.Date(2024, 7, 1, 0, 0, 0, 0, loc), time.Date(2024, 8, 1, 0, 0, 0, 0, loc)
}

func TestAggregate_WindowBoundaries(t *testing.T) {
	start, end := window()
	msgs := []chatlog.Message{
		text("alice", start.Format(time.RFC3339)),                  // exactly at start: included
		text("bob", end.Add(-time.Second).Format(time.RFC3339)),    // end-1s: included
		text("carol", end.Format(time.RFC3339)),                    // exactly at end: excluded
		text("dave", start.Add(-time.Second).Format(time.RFC3339)), // before start: excluded
	}
	r, ok := Aggregate(msgs, 0, start, end)
	if !ok {
		t.Fatalf("expected data")
	}
	if r.Total != 2 {
		t.Fatalf("want 2 in window, got %d", r.Total)
	}
}

func TestAggregate_UnparsableTimestampsSkipped(t *testing.T) {
	start, end := window()
	msgs := []chatlog.Message{
		text("alice", at(10, 12)),
		{Author: "bob", Body: "x", Timestamp: "not-a-time", Kind: chatlog.KindText},
		{Author: "carol", Body: "y", Timestamp: "", Kind: chatlog.KindText},
	}
	r, ok := Aggregate(msgs, 0, start, end)
	if !ok || r.Total != 1 {
		t.Fatalf("want 1, got %+v ok=%v", r, ok)
	}
}

func TestAggregate_NaiveTimestampsUseWindowLocation(t *testing.T) {
	start, end := window()
	msgs := []chatlog.Message{
		{Author: "alice", Body: "x", Timestamp: "2024-07-10T12:00:00", Kind: chatlog.KindText},
	}
	r, ok := Aggregate(msgs, 0, start, end)
	if !ok || r.Total != 1 {
		t.Fatalf("naive timestamp not counted: %+v ok=%v", r, ok)
	}
}

func TestAggregate_NoData(t *testing.T) {
	start, end := window()
	_, ok := Aggregate(nil, 0, start, end)
	if ok {
		t.Fatalf("empty input should report no data")
	}
	outside := []chatlog.Message{text("alice", at(10, 12))}
	_, ok = Aggregate(outside, 0, start.AddDate(0, -2, 0), end.AddDate(0, -2, 0))
	if ok {
		t.Fatalf("out-of-window input should report no data")
	}
}

func TestAggregate_CursorAndMediaExample(t *testing.T) {
	// 5 text messages from 3 authors plus 2 photos, cursor at 2,
	// window covering all 7.
	start, end := window()
	msgs := []chatlog.Message{
		text("alice", at(1, 10)),
		text("bob", at(2, 10)),
		text("alice", at(3, 10)),
		text("carol", at(4, 10)),
		text("alice", at(5, 10)),
		media("bob", at(6, 10), chatlog.KindPhoto),
		media("carol", at(7, 10), chatlog.KindPhoto),
	}
	r, ok := Aggregate(msgs, 2, start, end)
	if !ok {
		t.Fatalf("expected data")
	}
	if r.Total != 7 {
		t.Fatalf("total: want 7, got %d", r.Total)
	}
	if r.NewSinceDigest != 5 {
		t.Fatalf("new since digest: want 5, got %d", r.NewSinceDigest)
	}
	if r.NewMedia != 2 {
		t.Fatalf("new media: want 2, got %d", r.NewMedia)
	}
	if r.Media.Photo != 2 || r.Media.Total() != 2 {
		t.Fatalf("media totals: %+v", r.Media)
	}
	want := []AuthorCount{{"alice", 3}, {"bob", 1}, {"carol", 1}}
	if len(r.TopByMessages) != 3 {
		t.Fatalf("ranking size: %+v", r.TopByMessages)
	}
	for i, ac := range want {
		if r.TopByMessages[i] != ac {
			t.Fatalf("ranking[%d]: want %+v, got %+v", i, ac, r.TopByMessages[i])
		}
	}
}

func TestAggregate_RankingStableTiesAndLimit(t *testing.T) {
	start, end := window()
	var msgs []chatlog.Message
	// 20 authors, one message each: ties broken by encounter order,
	// truncated to TopLimit.
	for i := 0; i < 20; i++ {
		msgs = append(msgs, text(fmt.Sprintf("author%02d", i), at(1+i%27, 10)))
	}
	r, ok := Aggregate(msgs, 0, start, end)
	if !ok {
		t.Fatalf("expected data")
	}
	if len(r.TopByMessages) != TopLimit {
		t.Fatalf("want %d rows, got %d", TopLimit, len(r.TopByMessages))
	}
	for i, ac := range r.TopByMessages {
		want := fmt.Sprintf("author%02d", i)
		if ac.Author != want {
			t.Fatalf("tie order broken at %d: got %s", i, ac.Author)
		}
	}
}

func TestReport_Format(t *testing.T) {
	start, end := window()
	msgs := []chatlog.Message{
		text("alice", at(1, 10)),
		media("bob", at(2, 10), chatlog.KindVoice),
	}
	r, ok := Aggregate(msgs, 0, start, end)
	if !ok {
		t.Fatalf("expected data")
	}
	out := r.Format()
	if !strings.Contains(out, "01.07.2024–31.07.2024") {
		t.Fatalf("period title wrong: %q", out)
	}
	if !strings.Contains(out, "Всего сообщений: 2") {
		t.Fatalf("total missing: %q", out)
	}
	if !strings.Contains(out, "1. alice: 1") || !strings.Contains(out, "1. bob: 1") {
		t.Fatalf("rankings missing: %q", out)
	}
	if !strings.Contains(out, "- voice: 1") {
		t.Fatalf("media totals missing: %q", out)
	}
}
