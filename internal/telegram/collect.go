package telegram

import (
	"log"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"chat-chronicler/internal/chatlog"
)

// checkpointEvery triggers a full-snapshot save every Nth message per
// chat, on top of the synchronous per-message save.
const checkpointEvery = 10

// collectMessage records one incoming chat message. Text without a
// body is dropped; media take their caption (documents fall back to
// the file name). Persistence failures never break ingestion.
func (b *Bot) collectMessage(msg *tgbotapi.Message) {
	chatID := strconv.FormatInt(msg.Chat.ID, 10)

	var kind chatlog.Kind
	var body string
	switch {
	case len(msg.Photo) > 0:
		kind = chatlog.KindPhoto
		body = msg.Caption
	case msg.Video != nil:
		kind = chatlog.KindVideo
		body = msg.Caption
	case msg.Voice != nil:
		kind = chatlog.KindVoice
	case msg.Document != nil:
		kind = chatlog.KindDocument
		body = msg.Caption
		if body == "" {
			body = msg.Document.FileName
		}
	default:
		kind = chatlog.KindText
		body = msg.Text
	}

	if kind == chatlog.KindText && body == "" {
		return
	}

	author := ""
	var authorID int64
	if msg.From != nil {
		author = msg.From.FirstName
		authorID = msg.From.ID
	}
	if author == "" {
		author = "Аноним"
	}

	b.store.Append(chatID, chatlog.Message{
		Author:    author,
		AuthorID:  authorID,
		Body:      chatlog.TruncateBody(body),
		Timestamp: b.clock.Now().Format(time.RFC3339),
		Kind:      kind,
	})

	if err := b.store.PersistOne(chatID); err != nil {
		log.Printf("⚠️ failed to persist message for chat %s: %v", chatID, err)
	}
	if err := b.cursors.Persist(); err != nil {
		log.Printf("⚠️ failed to persist cursors for chat %s: %v", chatID, err)
	}

	if b.store.Len(chatID)%checkpointEvery == 0 {
		if err := b.store.PersistAll(); err != nil {
			log.Printf("⚠️ bulk checkpoint failed: %v", err)
		}
	}
}
