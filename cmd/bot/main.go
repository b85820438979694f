package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"chat-chronicler/internal/chatlog"
	"chat-chronicler/internal/clock"
	"chat-chronicler/internal/config"
	"chat-chronicler/internal/cursor"
	"chat-chronicler/internal/digest"
	"chat-chronicler/internal/errlog"
	"chat-chronicler/internal/llm"
	"chat-chronicler/internal/scheduler"
	"chat-chronicler/internal/storage"
	"chat-chronicler/internal/summarize"
	"chat-chronicler/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()
	clk := clock.NewFixed(cfg.Timezone)

	log.Printf("=== ЗАПУСК БОТА ===")
	log.Printf("DATA_DIR: %s", cfg.DataDir)
	log.Printf("MAX_MESSAGES_FOR_ANALYSIS: %d", cfg.FallbackTail)
	log.Printf("MAX_TEXT_LENGTH_PER_MESSAGE: %d", cfg.MaxPerMessage)

	historyBlob, err := storage.NewFileBlob(cfg.HistoryFile())
	if err != nil {
		log.Fatalf("failed to init history storage: %v", err)
	}
	summaryBlob, err := storage.NewFileBlob(cfg.SummaryIndexFile())
	if err != nil {
		log.Fatalf("failed to init cursor storage: %v", err)
	}
	monthlyBlob, err := storage.NewFileBlob(cfg.MonthlySentFile())
	if err != nil {
		log.Fatalf("failed to init monthly tag storage: %v", err)
	}

	store := chatlog.NewStore(historyBlob)
	cursors := cursor.NewTable(summaryBlob, monthlyBlob)
	if err := store.LoadAndMerge(); err != nil {
		log.Printf("⚠️ failed to load history, starting empty: %v", err)
	}
	if err := cursors.LoadAndMerge(); err != nil {
		log.Printf("⚠️ failed to load cursors, starting empty: %v", err)
	}

	errors, err := errlog.New(cfg.ErrorLogFile(), clk.Location())
	if err != nil {
		log.Printf("⚠️ failed to init error log: %v", err)
	}

	factory := llm.Factory{
		OpenaiAPIKey:       cfg.OpenAIAPIKey,
		OpenaiBaseURL:      cfg.OpenAIBaseURL,
		OpenRouterReferrer: cfg.OpenRouterReferrer,
		OpenRouterTitle:    cfg.OpenRouterTitle,
		YandexOAuthToken:   cfg.YandexOAuthToken,
		YandexFolderID:     cfg.YandexFolderID,
	}
	llmClient, err := factory.CreateClient(cfg.LLMProvider, cfg.OpenAIModel)
	if err != nil {
		log.Fatalf("failed to create llm client: %v", err)
	}

	summarizer := summarize.New(llmClient, cfg.MaxPerMessage)
	dig := digest.New(store, cursors, summarizer, errors, cfg.FallbackTail)

	bot, err := telegram.New(
		cfg.TelegramBotToken,
		store,
		cursors,
		dig,
		clk,
		errors,
		cfg.DataDir,
		cfg.SummarizerHost,
	)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	sched := scheduler.New(clk.Location())
	sched.SetDigestFunc(bot.RunDigestSweep)
	sched.SetMonthlyFunc(bot.RunMonthlyStats)
	if err := sched.Start(
		[]string{cfg.MorningDigestCron, cfg.EveningDigestCron},
		cfg.MonthlyReportCron,
	); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	bot.Start(context.Background())
}
