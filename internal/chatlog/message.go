package chatlog

import (
	"time"
	"unicode/utf8"
)

// Kind classifies a recorded chat message.
type Kind string

const (
	KindText     Kind = "text"
	KindPhoto    Kind = "photo"
	KindVideo    Kind = "video"
	KindVoice    Kind = "voice"
	KindDocument Kind = "document"
)

// MaxBodyLen bounds the stored body of one message, counted in
// characters. Longer bodies are truncated at ingestion with a
// trailing ellipsis.
const MaxBodyLen = 4000

// Message is one recorded chat event. Immutable once appended.
// JSON field names match the on-disk history format.
type Message struct {
	Author    string `json:"username"`
	AuthorID  int64  `json:"user_id"`
	Body      string `json:"text"`
	Timestamp string `json:"timestamp"`
	Kind      Kind   `json:"type"`
}

func (m Message) IsMedia() bool { return m.Kind != KindText }

// At parses the message timestamp. Timestamps without an offset are
// interpreted in loc. Returns an error for unparsable values; callers
// skip those rather than fail.
func (m Message) At(loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, m.Timestamp); err == nil {
		return t.In(loc), nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", m.Timestamp, loc)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// TruncateBody enforces MaxBodyLen on a raw body. The cut is made on
// rune boundaries so Cyrillic text keeps the full character budget.
func TruncateBody(s string) string {
	if utf8.RuneCountInString(s) <= MaxBodyLen {
		return s
	}
	return string([]rune(s)[:MaxBodyLen]) + "..."
}

// MediaCounts tallies media messages by kind.
type MediaCounts struct {
	Photo    int `json:"photo"`
	Video    int `json:"video"`
	Voice    int `json:"voice"`
	Document int `json:"document"`
}

func (c *MediaCounts) Add(k Kind) {
	switch k {
	case KindPhoto:
		c.Photo++
	case KindVideo:
		c.Video++
	case KindVoice:
		c.Voice++
	case KindDocument:
		c.Document++
	}
}

func (c MediaCounts) Total() int {
	return c.Photo + c.Video + c.Voice + c.Document
}

// CountMedia tallies the media messages of one slice.
func CountMedia(msgs []Message) MediaCounts {
	var out MediaCounts
	for _, m := range msgs {
		out.Add(m.Kind)
	}
	return out
}
