package config

import (
	"log"
	"path/filepath"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN,required"`

	// LLM settings
	LLMProvider      string `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string `env:"OPENAI_BASE_URL"`
	OpenAIModel      string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken string `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string `env:"YANDEX_FOLDER_ID"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Storage
	DataDir string `env:"DATA_DIR" envDefault:"data"`

	// Reporting
	Timezone       string `env:"BOT_TIMEZONE" envDefault:"Europe/Moscow"`
	FallbackTail   int    `env:"MAX_MESSAGES_FOR_ANALYSIS" envDefault:"500"`
	MaxPerMessage  int    `env:"MAX_TEXT_LENGTH_PER_MESSAGE" envDefault:"600"`
	SummarizerHost string `env:"SUMMARIZER_HOST" envDefault:"api.openai.com"`

	// Schedule (cron specs, bot timezone)
	MorningDigestCron string `env:"MORNING_DIGEST_CRON" envDefault:"0 5 * * *"`
	EveningDigestCron string `env:"EVENING_DIGEST_CRON" envDefault:"0 18 * * *"`
	MonthlyReportCron string `env:"MONTHLY_REPORT_CRON" envDefault:"5 5 1 * *"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}

func (c *Config) HistoryFile() string { return filepath.Join(c.DataDir, "chat_history.json") }

func (c *Config) SummaryIndexFile() string { return filepath.Join(c.DataDir, "summary_index.json") }
func (c *Config) MonthlySentFile() string {
	return filepath.Join(c.DataDir, "monthly_stats_sent.json")
}

func (c *Config) ErrorLogFile() string { return filepath.Join(c.DataDir, "error_log.txt") }
