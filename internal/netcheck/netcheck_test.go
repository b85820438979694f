package netcheck

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestClampReply(t *testing.T) {
	short := "🧪 Netcheck"
	if clampReply(short) != short {
		t.Fatalf("short report mutated")
	}

	long := strings.Repeat("д", replyLimit+50)
	got := clampReply(long)
	if !strings.HasSuffix(got, "…(обрезано)") {
		t.Fatalf("missing truncation marker")
	}
	if !utf8.ValidString(got) {
		t.Fatalf("clamp produced invalid utf-8")
	}
	body := strings.TrimSuffix(got, "\n…(обрезано)")
	if n := utf8.RuneCountInString(body); n != replyLimit {
		t.Fatalf("kept %d chars, want %d", n, replyLimit)
	}
}
