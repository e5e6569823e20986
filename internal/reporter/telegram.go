// Telegram reporting for finished runs. Optional: the pipeline works
// without it, this is for operators who want pushes on the phone.

package reporter

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-jobscout/internal/orchestrator"
	"go-jobscout/internal/scraper"
)

type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{api: api, chatID: chatID}, nil
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
		")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
		"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
		"}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}

// SendJob pushes one newly discovered job.
func (t *Telegram) SendJob(job scraper.ResolvedJob) error {
	msgText := fmt.Sprintf("🏢 *%s*\n", escapeMarkdown(job.Company))
	msgText += fmt.Sprintf("💼 %s\n", escapeMarkdown(job.Title))
	if job.Salary != "" {
		msgText += fmt.Sprintf("💰 %s\n", escapeMarkdown(job.Salary))
	}

	loc := job.Location
	if loc == "" {
		loc = "N/A"
	}
	msgText += fmt.Sprintf("📍 %s\n", escapeMarkdown(loc))

	if job.PostedText != "" {
		msgText += fmt.Sprintf("📅 %s\n", escapeMarkdown(job.PostedText))
	}
	msgText += fmt.Sprintf("🗂 ATS: %s\n", escapeMarkdown(string(job.ATSVendor)))
	msgText += fmt.Sprintf("🔖 Source: %s\n", escapeMarkdown(job.SourceSite))

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🔗 Apply", job.ApplyURL),
		),
	)

	msg := tgbotapi.NewMessage(t.chatID, msgText)
	msg.ParseMode = "MarkdownV2"
	msg.ReplyMarkup = keyboard

	_, err := t.api.Send(msg)
	return err
}

// SendRunSummary pushes the aggregate stats of one run.
func (t *Telegram) SendRunSummary(stats orchestrator.Stats) error {
	text := fmt.Sprintf(
		"ℹ️ Run finished in %s\nKeywords: %d | Pages: %d\nNew jobs: %d | Duplicates: %d | Errors: %d\nVerifications: %d (recovered %d, abandoned workers %d)",
		stats.Elapsed.Round(time.Second), stats.KeywordsProcessed, stats.PagesScraped,
		stats.JobsFound, stats.DuplicatesSkipped, stats.ErrorsEncountered,
		stats.SuspectedCount, stats.RecoveredCount, stats.AbandonedWorkers,
	)
	msg := tgbotapi.NewMessage(t.chatID, text)
	_, err := t.api.Send(msg)
	return err
}
