package summarize

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"chat-chronicler/internal/chatlog"
	"chat-chronicler/internal/llm"
)

// DefaultMaxPerMessage bounds how much of one message goes into the
// prompt transcript, counted in characters.
const DefaultMaxPerMessage = 600

// Service turns a slice of chat messages into a narrative digest via
// an LLM client. It never mutates its input.
type Service struct {
	client        llm.Client
	maxPerMessage int
}

func New(client llm.Client, maxPerMessage int) *Service {
	if maxPerMessage <= 0 {
		maxPerMessage = DefaultMaxPerMessage
	}
	return &Service{client: client, maxPerMessage: maxPerMessage}
}

func (s *Service) Summarize(ctx context.Context, msgs []chatlog.Message) (string, error) {
	prompt := s.buildPrompt(msgs)
	resp, err := s.client.Generate(ctx, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return resp.Content, nil
}

func (s *Service) buildPrompt(msgs []chatlog.Message) string {
	var raw strings.Builder
	for _, m := range msgs {
		body := m.Body
		if utf8.RuneCountInString(body) > s.maxPerMessage {
			body = string([]rune(body)[:s.maxPerMessage]) + "..."
		}
		author := m.Author
		if author == "" {
			author = "Аноним"
		}
		fmt.Fprintf(&raw, "%s: %s\n", author, body)
	}
	return fmt.Sprintf(userPromptTemplate, raw.String())
}

const systemPrompt = `Ты — стендап-хроникёр чата: добрый, ироничный, наблюдательный. ` +
	`КРИТИЧНО важно: имена пользователей копируй строго как они написаны, ` +
	`символ в символ, без любых изменений и без перевода/транслита/склонения/смены регистра. ` +
	`Если тема тяжёлая/чувствительная — мгновенно переходи на нейтральный тон без шуток.`

const userPromptTemplate = `Ты — стендап-комик и хроникёр чата одновременно: добрый, остроумный, ироничный.
Твоя задача — сделать сводку, которую реально смешно и приятно читать.

КЛЮЧЕВОЕ:
- Юмор — это наблюдение, а не насмешка.
- Никакой токсичности, унижений, хамства и "приколов" над людьми.

ФОРМАТ (обязателен):
1) мини-сцены на каждую тему, которая обсуждалась (каждая 1–4 предложения).
   - Каждая сцена начинается с эмодзи и короткой подводки (1 строка),
     затем текст сцены.
2) Упомяни как можно больше тем, которые обсуждались в чате.

ОБЯЗАТЕЛЬНЫЕ ПРАВИЛА ПРО ИМЕНА:
1) Имена пользователей — копируй строго как в сообщениях, символ в символ.
2) В каждой сцене упоминай только тех, кто реально в ней участвовал.

ПРО СОДЕРЖАНИЕ:
- Пиши по темам, а не перечислением сообщений.
- Если пост слишком короткий для нормальной сцены — НЕ ВЫДУМЫВАЙ.
  Лучше процитируй 1–3 строки дословно и добавь короткий комментарий.

ВАЖНО:
Если тема грустная, тяжёлая или чувствительная —
пересказывай спокойно, нейтрально, без шуток и иронии.

Вот сообщения чата:
%s

Сделай сводку: смешно, живо, бережно, без выдумывания фактов.
`
