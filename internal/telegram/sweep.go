package telegram

import (
	"context"
	"errors"
	"log"
	"strconv"

	"chat-chronicler/internal/clock"
	"chat-chronicler/internal/digest"
	"chat-chronicler/internal/errlog"
	"chat-chronicler/internal/stats"
)

// RunDigestSweep produces a digest for every known chat. Per-chat
// failures are isolated so one bad chat does not block the others.
func (b *Bot) RunDigestSweep(ctx context.Context) error {
	if err := b.store.LoadAndMerge(); err != nil {
		log.Printf("⚠️ history reload failed: %v", err)
	}

	for _, chatID := range b.store.ChatIDs() {
		res, err := b.digest.Run(ctx, chatID)
		if err != nil {
			var notEnough *digest.NotEnoughError
			if errors.As(err, &notEnough) {
				continue
			}
			log.Printf("❌ digest sweep for chat %s: %v", chatID, err)
			continue
		}
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			log.Printf("⚠️ bad chat id %q: %v", chatID, err)
			continue
		}
		b.sendMessage(id, digestText(res))
	}
	return nil
}

// RunMonthlyStats sends the previous calendar month's report to every
// chat that has not received it yet. The month tag makes repeated
// triggers for the same month (restarts on day 1 included) a no-op.
func (b *Bot) RunMonthlyStats(ctx context.Context) error {
	if err := b.store.LoadAndMerge(); err != nil {
		log.Printf("⚠️ history reload failed: %v", err)
	}
	if err := b.cursors.LoadAndMerge(); err != nil {
		log.Printf("⚠️ cursor reload failed: %v", err)
	}

	start, end := clock.PrevMonthWindow(b.clock.Now())
	key := clock.MonthKey(start)

	for _, chatID := range b.store.ChatIDs() {
		if b.cursors.MonthlyTag(chatID) == key {
			continue
		}
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			errID := errlog.NewID()
			b.errors.Report(errID, "monthly stats sweep", err, map[string]any{"chat_id": chatID, "month": key})
			continue
		}

		body := stats.NoDataText
		if r, ok := stats.Aggregate(b.store.Messages(chatID), b.cursors.Summary(chatID), start, end); ok {
			body = r.Format()
		}
		b.sendMessage(id, "🗓 Ежемесячная статистика\n\n"+body)

		b.cursors.SetMonthlyTag(chatID, key)
		if err := b.cursors.Persist(); err != nil {
			log.Printf("⚠️ failed to persist monthly tag for chat %s: %v", chatID, err)
		}
	}
	return nil
}
