package bot

import (
	"context"
	"strings"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// mockSender records every Telegram call made by the handler
type mockSender struct {
	mu      sync.Mutex
	sent    []*bot.SendMessageParams
	edits   []*bot.EditMessageTextParams
	answers []*bot.AnswerCallbackQueryParams

	sendErr error
	editErr error
}

func (m *mockSender) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, params)
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	return &models.Message{ID: len(m.sent)}, nil
}

func (m *mockSender) EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = append(m.edits, params)
	if m.editErr != nil {
		return nil, m.editErr
	}
	return &models.Message{ID: params.MessageID}, nil
}

func (m *mockSender) AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answers = append(m.answers, params)
	return true, nil
}

// sentTo returns the texts sent to chatID in order
func (m *mockSender) sentTo(chatID int64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var texts []string
	for _, p := range m.sent {
		if p.ChatID == chatID {
			texts = append(texts, p.Text)
		}
	}
	return texts
}

func (m *mockSender) lastSent() *bot.SendMessageParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return nil
	}
	return m.sent[len(m.sent)-1]
}

func (m *mockSender) lastEdit() *bot.EditMessageTextParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.edits) == 0 {
		return nil
	}
	return m.edits[len(m.edits)-1]
}

func (m *mockSender) lastAnswer() *bot.AnswerCallbackQueryParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.answers) == 0 {
		return nil
	}
	return m.answers[len(m.answers)-1]
}

func (m *mockSender) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
	m.edits = nil
	m.answers = nil
}

// mockLogger records log messages by level
type mockLogger struct {
	mu      sync.Mutex
	entries []string
}

func (m *mockLogger) record(level, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, level+": "+msg)
}

func (m *mockLogger) Info(msg string, args ...interface{})  { m.record("INFO", msg) }
func (m *mockLogger) Error(msg string, args ...interface{}) { m.record("ERROR", msg) }
func (m *mockLogger) Debug(msg string, args ...interface{}) { m.record("DEBUG", msg) }
func (m *mockLogger) Warn(msg string, args ...interface{})  { m.record("WARN", msg) }

func (m *mockLogger) count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if strings.HasPrefix(e, level+": ") {
			n++
		}
	}
	return n
}
