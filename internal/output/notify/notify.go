// Package notify posts finished reports to a Telegram chat.
package notify

import (
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/lueurxax/framing-eval/internal/platform/config"
	"github.com/lueurxax/framing-eval/internal/process/aggregate"
)

const chartFileName = "report.png"

// Sender is the subset of the bot API used to deliver reports.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier sends a report summary and its chart to one chat.
type Notifier struct {
	api    Sender
	chatID int64
	logger *zerolog.Logger
}

// New connects to the bot API with the configured token.
func New(cfg config.TelegramConfig, logger *zerolog.Logger) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	return NewWithSender(api, cfg.ChatID, logger), nil
}

// NewWithSender builds a Notifier around an existing sender.
func NewWithSender(api Sender, chatID int64, logger *zerolog.Logger) *Notifier {
	return &Notifier{api: api, chatID: chatID, logger: logger}
}

// Report is what gets posted for one evaluated results file.
type Report struct {
	Title  string
	Report aggregate.Report
	Chart  []byte
}

// Send posts the summary text, then the chart when one is present. A failed
// chart upload is logged and does not fail the notification.
func (n *Notifier) Send(r Report) error {
	msg := tgbotapi.NewMessage(n.chatID, FormatSummary(r.Title, r.Report))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send summary: %w", err)
	}

	if len(r.Chart) == 0 {
		return nil
	}

	photo := tgbotapi.NewPhoto(n.chatID, tgbotapi.FileBytes{
		Name:  chartFileName,
		Bytes: r.Chart,
	})

	if _, err := n.api.Send(photo); err != nil {
		n.logger.Warn().Err(err).Int64("chat_id", n.chatID).Msg("failed to send report chart, summary was delivered")
	}

	return nil
}

// FormatSummary renders the report as Telegram HTML.
func FormatSummary(title string, rep aggregate.Report) string {
	var sb strings.Builder

	if title != "" {
		sb.WriteString(fmt.Sprintf("<b>%s</b>\n", html.EscapeString(title)))
	}

	sb.WriteString(fmt.Sprintf("Final result: <b>%d/%d</b> correct answers (%.1f%%)\n",
		rep.Overall.Correct, rep.Overall.Total, rep.Overall.Accuracy()*100))

	sb.WriteString("\n<b>By emotion</b>\n")

	for _, e := range rep.ByEmotion {
		sb.WriteString(fmt.Sprintf("• %s: %d/%d\n", html.EscapeString(e.Phrase), e.Correct, e.Total))
	}

	sb.WriteString("\n<b>By attribute</b>\n")

	for _, c := range rep.ByCategory {
		if c.Total == 0 {
			continue
		}

		sb.WriteString(fmt.Sprintf("• %s: %d/%d\n", html.EscapeString(string(c.Category)), c.Correct, c.Total))
	}

	sb.WriteString(fmt.Sprintf("\nFailed questions: %d", len(rep.Failures)))

	return sb.String()
}
