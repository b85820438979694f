package summarize

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"chat-chronicler/internal/chatlog"
	"chat-chronicler/internal/llm"
)

type fakeLLM struct {
	resp llm.Response
	err  error
	got  []llm.Message
}

func (f *fakeLLM) Generate(ctx context.Context, msgs []llm.Message) (llm.Response, error) {
	f.got = msgs
	return f.resp, f.err
}

func TestSummarize_BuildsTranscript(t *testing.T) {
	fake := &fakeLLM{resp: llm.Response{Content: "сводка"}}
	s := New(fake, 10)

	msgs := []chatlog.Message{
		{Author: "Алиса", Body: "короткое", Kind: chatlog.KindText},
		{Author: "", Body: "без автора", Kind: chatlog.KindText},
		{Author: "Боб", Body: strings.Repeat("y", 50), Kind: chatlog.KindText},
	}
	out, err := s.Summarize(context.Background(), msgs)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if out != "сводка" {
		t.Fatalf("unexpected output: %q", out)
	}

	if len(fake.got) != 2 || fake.got[0].Role != "system" || fake.got[1].Role != "user" {
		t.Fatalf("unexpected llm messages: %+v", fake.got)
	}
	prompt := fake.got[1].Content
	if !strings.Contains(prompt, "Алиса: короткое") {
		t.Fatalf("author line missing: %q", prompt)
	}
	if !strings.Contains(prompt, "Аноним: без автора") {
		t.Fatalf("anonymous fallback missing: %q", prompt)
	}
	if !strings.Contains(prompt, "Боб: yyyyyyyyyy...") {
		t.Fatalf("per-message truncation missing: %q", prompt)
	}
	// Input slice untouched.
	if msgs[2].Body != strings.Repeat("y", 50) {
		t.Fatalf("input mutated")
	}
}

func TestSummarize_TruncatesByCharacters(t *testing.T) {
	fake := &fakeLLM{resp: llm.Response{Content: "ok"}}
	s := New(fake, 10)

	msgs := []chatlog.Message{
		{Author: "Вера", Body: strings.Repeat("ш", 25), Kind: chatlog.KindText},
	}
	if _, err := s.Summarize(context.Background(), msgs); err != nil {
		t.Fatalf("summarize: %v", err)
	}
	prompt := fake.got[1].Content
	if !strings.Contains(prompt, "Вера: "+strings.Repeat("ш", 10)+"...") {
		t.Fatalf("cyrillic body not capped at 10 chars: %q", prompt)
	}
	if !utf8.ValidString(prompt) {
		t.Fatalf("prompt contains invalid utf-8")
	}
}
