// Package bot hosts the Telegram front door: a long-polling /start handler
// that opens the registration Mini-App, and outbound confirmation messages.
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mgc/inscriptions/internal/pkg/logger"
)

// Bot wraps the Telegram Bot API client
type Bot struct {
	api       *tgbotapi.BotAPI
	webAppURL string
	done      chan struct{}
}

// New creates a new Bot instance
func New(token, webAppURL string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	api.Debug = false

	return &Bot{
		api:       api,
		webAppURL: webAppURL,
		done:      make(chan struct{}),
	}, nil
}

// Start removes any webhook registration left over from a previous
// deployment, then consumes updates until Stop is called. It blocks and is
// meant to run in its own goroutine.
func (b *Bot) Start() {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		logger.Warn().Err(err).Msg("Failed to delete webhook, polling may conflict")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	logger.Info().Str("username", b.api.Self.UserName).Msg("Bot polling started")

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(update)
		case <-b.done:
			return
		}
	}
}

// Stop halts the update loop cooperatively.
func (b *Bot) Stop() {
	close(b.done)
	b.api.StopReceivingUpdates()
	logger.Info().Msg("Bot polling stopped")
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	if update.Message.Command() == "start" {
		b.sendStartMenu(update.Message.Chat.ID)
	}
}

// sendStartMenu replies with the greeting and the web-app keyboard button
// that opens the registration form inside Telegram.
func (b *Bot) sendStartMenu(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "👋 MGC Inscriptions\nBase de données connectée.\nCliquez pour ouvrir :")

	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonWebApp("📝 Ouvrir le Formulaire", tgbotapi.WebAppInfo{URL: b.webAppURL}),
		),
	)
	keyboard.ResizeKeyboard = true
	msg.ReplyMarkup = keyboard

	if _, err := b.api.Send(msg); err != nil {
		logger.Error().Err(err).Int64("chatId", chatID).Msg("Failed to send start menu")
	}
}

// NotifyRegistration sends the registration confirmation to the submitting
// user. The context bounds the call only coarsely: tgbotapi has no
// context-aware send, so a cancelled context skips the attempt.
func (b *Bot) NotifyRegistration(ctx context.Context, chatID int64, nomComplet, ticketID string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	text := fmt.Sprintf("✅ Dossier Enregistré !\n👤 %s\n🆔 Ticket : %s", nomComplet, ticketID)
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("failed to send confirmation: %w", err)
	}
	return nil
}
