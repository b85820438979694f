package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"chat-chronicler/internal/chatlog"
	"chat-chronicler/internal/clock"
	"chat-chronicler/internal/digest"
	"chat-chronicler/internal/netcheck"
	"chat-chronicler/internal/stats"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.handleStart(msg)
	case "whatsnew":
		b.handleWhatsNew(ctx, msg)
	case "stats":
		b.handleStats(msg)
	case "clear_history":
		b.handleClearHistory(msg)
	case "netcheck":
		b.handleNetcheck(ctx, msg)
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) {
	b.sendMessage(msg.Chat.ID,
		"🐱 Я хроникёр вашего чата!\n"+
			"Команды:\n"+
			"/whatsnew — сводка\n"+
			"/stats — статистика\n"+
			"/netcheck — диагностика сети\n"+
			"/clear_history — очистка истории")
}

func (b *Bot) handleWhatsNew(ctx context.Context, msg *tgbotapi.Message) {
	chatID := strconv.FormatInt(msg.Chat.ID, 10)

	// Absorb what other runs persisted so the announced count matches
	// the set the digest will actually summarize.
	if err := b.store.LoadAndMerge(); err != nil {
		log.Printf("⚠️ history reload failed: %v", err)
	}
	if err := b.cursors.LoadAndMerge(); err != nil {
		log.Printf("⚠️ cursor reload failed: %v", err)
	}

	if pending := b.store.Len(chatID) - b.cursors.Summary(chatID); pending >= digest.MinNewMessages {
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("🤔 Анализирую %d сообщений...", pending))
	}

	res, err := b.digest.Run(ctx, chatID)
	if err != nil {
		b.sendMessage(msg.Chat.ID, b.digestFailureText(chatID, err))
		return
	}
	b.sendMessage(msg.Chat.ID, digestText(res))
}

func (b *Bot) digestFailureText(chatID string, err error) string {
	var notEnough *digest.NotEnoughError
	if errors.As(err, &notEnough) {
		if b.store.Len(chatID) == 0 {
			return "Нет сообщений."
		}
		return fmt.Sprintf("Новых сообщений мало (%d).", notEnough.Pending)
	}
	var runErr *digest.RunError
	if errors.As(err, &runErr) && runErr.Kind == digest.KindConnectivity {
		return "🌐 Сейчас нет доступа к LLM из этого окружения.\n" +
			"Похоже на сетевую проблему или маршрут/доступ с хостинга.\n\n" +
			"Код ошибки: " + runErr.ID
	}
	out := "❌ Ошибка при создании сводки."
	if errors.As(err, &runErr) {
		out += "\nКод ошибки: " + runErr.ID
		if p := b.errors.Path(); p != "" {
			out += "\nЛог: " + p
		}
	}
	return out
}

func digestText(res digest.Result) string {
	return "📰 Сводка:\n\n" + res.Summary + mediaLine(res.Media) + footerText
}

// mediaLine renders the "also posted" tail of a digest, empty when
// the summarized slice had no media.
func mediaLine(c chatlog.MediaCounts) string {
	var parts []string
	if c.Photo > 0 {
		parts = append(parts, fmt.Sprintf("%d фотографий", c.Photo))
	}
	if c.Video > 0 {
		parts = append(parts, fmt.Sprintf("%d видео", c.Video))
	}
	if c.Voice > 0 {
		parts = append(parts, fmt.Sprintf("%d голосовых", c.Voice))
	}
	if c.Document > 0 {
		parts = append(parts, fmt.Sprintf("%d файлов", c.Document))
	}
	if len(parts) == 0 {
		return ""
	}
	return "\n\n🔎 Также было прислано: " + strings.Join(parts, ", ")
}

func (b *Bot) handleStats(msg *tgbotapi.Message) {
	chatID := strconv.FormatInt(msg.Chat.ID, 10)

	if err := b.store.LoadAndMerge(); err != nil {
		log.Printf("⚠️ history reload failed: %v", err)
	}
	if err := b.cursors.LoadAndMerge(); err != nil {
		log.Printf("⚠️ cursor reload failed: %v", err)
	}

	msgs := b.store.Messages(chatID)
	if len(msgs) == 0 {
		b.sendMessage(msg.Chat.ID, "Нет данных.")
		return
	}

	start, end := clock.MonthWindow(b.clock.Now())
	r, ok := stats.Aggregate(msgs, b.cursors.Summary(chatID), start, end)
	if !ok {
		b.sendMessage(msg.Chat.ID, stats.NoDataText)
		return
	}
	b.sendMessage(msg.Chat.ID, r.Format())
}

func (b *Bot) handleClearHistory(msg *tgbotapi.Message) {
	if msg.From == nil || !b.isAdmin(msg.Chat.ID, msg.From.ID) {
		b.sendMessage(msg.Chat.ID, "Команда только для администраторов.")
		return
	}
	chatID := strconv.FormatInt(msg.Chat.ID, 10)

	b.store.Clear(chatID)
	b.cursors.ResetSummary(chatID)
	b.cursors.ClearMonthlyTag(chatID)

	if err := b.store.PersistOne(chatID); err != nil {
		log.Printf("⚠️ failed to persist cleared history: %v", err)
	}
	if err := b.cursors.Persist(); err != nil {
		log.Printf("⚠️ failed to persist cleared cursors: %v", err)
	}
	b.sendMessage(msg.Chat.ID, "История очищена 🧹")
}

func (b *Bot) handleNetcheck(ctx context.Context, msg *tgbotapi.Message) {
	b.sendMessage(msg.Chat.ID, netcheck.Report(ctx, b.apiHost, b.dataDir, b.clock.Now()))
}
