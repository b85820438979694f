package telegram

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"chat-chronicler/internal/chatlog"
	"chat-chronicler/internal/clock"
	"chat-chronicler/internal/cursor"
	"chat-chronicler/internal/digest"
	"chat-chronicler/internal/errlog"
)

const footerText = "\n\n🧐 Бот допускает неточности в пересказе, проверяйте важные темы)"

type digester interface {
	Run(ctx context.Context, chatID string) (digest.Result, error)
}

type Bot struct {
	api     *tgbotapi.BotAPI
	s       sender
	store   *chatlog.Store
	cursors *cursor.Table
	digest  digester
	clock   clock.Clock
	errors  *errlog.Logger

	// isAdmin gates /clear_history; replaced in tests.
	isAdmin func(chatID, userID int64) bool

	dataDir string
	apiHost string
}

func New(botToken string, store *chatlog.Store, cursors *cursor.Table, dig digester, clk clock.Clock, errors *errlog.Logger, dataDir, apiHost string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	b := &Bot{
		api:     api,
		s:       botAPISender{api: api},
		store:   store,
		cursors: cursors,
		digest:  dig,
		clock:   clk,
		errors:  errors,
		dataDir: dataDir,
		apiHost: apiHost,
	}
	b.isAdmin = b.isChatAdmin
	return b, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	log.Println("🐱 Бот запущен! /whatsnew для ручной сводки")
	for update := range updates {
		if update.Message == nil {
			continue
		}
		if update.Message.IsCommand() {
			b.handleCommand(ctx, update.Message)
			continue
		}
		b.collectMessage(update.Message)
	}
}

func (b *Bot) isChatAdmin(chatID, userID int64) bool {
	admins, err := b.api.GetChatAdministrators(tgbotapi.ChatAdministratorsConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		log.Printf("⚠️ failed to load chat admins: %v", err)
		return false
	}
	for _, a := range admins {
		if a.User != nil && a.User.ID == userID {
			return true
		}
	}
	return false
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}
