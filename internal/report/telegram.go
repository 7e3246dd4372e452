package report

import (
	"context"
	"fmt"
	"net/http"

	"github.com/quantfolio/quantfolio/pkg/config"
	"github.com/quantfolio/quantfolio/pkg/httputil"
	"github.com/quantfolio/quantfolio/pkg/logger"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramSink pushes rendered reports to a Telegram chat. Without
// credentials every send is a logged no-op, so callers never branch on it.
type TelegramSink struct {
	cfg        config.TelegramConfig
	httpClient *httputil.Client
	logger     *logger.Logger
}

// NewTelegramSink creates a sink.
func NewTelegramSink(cfg config.TelegramConfig, httpClient *httputil.Client, log *logger.Logger) *TelegramSink {
	return &TelegramSink{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     log,
	}
}

// Send delivers a text message. Messages longer than the Telegram limit are
// split on line boundaries.
func (t *TelegramSink) Send(ctx context.Context, text string) error {
	if !t.cfg.Enabled() {
		t.logger.Debug("Telegram not configured, skipping alert")
		return nil
	}

	for _, chunk := range splitMessage(text, 4000) {
		if err := t.sendChunk(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (t *TelegramSink) sendChunk(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", telegramAPIBase, t.cfg.BotToken)
	payload := map[string]string{
		"chat_id": t.cfg.ChatID,
		"text":    text,
	}

	resp, err := t.httpClient.PostJSON(ctx, url, payload)
	if err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram send failed: status %d", resp.StatusCode)
	}

	t.logger.WithField("length", len(text)).Debug("Telegram alert sent")
	return nil
}

// splitMessage breaks text into chunks of at most limit bytes, preferring
// newline boundaries.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(text) > limit {
		cut := limit
		for i := limit; i > 0; i-- {
			if text[i-1] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	if len(text) > 0 {
		chunks = append(chunks, text)
	}
	return chunks
}
