package telegram

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ebook-bot/internal/metrics"
	"ebook-bot/internal/telegram/flows/buyebook"
)

// Router dispatches inbound Telegram updates to the purchase flow. Plain
// messages that are not commands are ignored, same as unknown commands.
type Router struct {
	buyEbookHandler *buyebook.Handler
	logger          *slog.Logger
}

func NewRouter(buyEbookHandler *buyebook.Handler, logger *slog.Logger) *Router {
	return &Router{
		buyEbookHandler: buyEbookHandler,
		logger:          logger,
	}
}

func (r *Router) Route(update *tgbotapi.Update) error {
	ctx := context.Background()

	chatID := extractChatID(update)
	if chatID == 0 {
		return nil // update without a usable chat
	}

	if update.CallbackQuery != nil {
		metrics.UpdatesRouted.WithLabelValues("callback").Inc()
		r.logger.Info("callback received",
			slog.Int64("chat_id", chatID),
			slog.String("data", update.CallbackQuery.Data))
		return r.buyEbookHandler.HandleCallback(ctx, update.CallbackQuery)
	}

	if update.Message != nil && update.Message.IsCommand() {
		metrics.UpdatesRouted.WithLabelValues("command").Inc()
		switch update.Message.Command() {
		case "start", "comprar":
			return r.buyEbookHandler.Start(chatID)
		default:
			r.logger.Debug("unknown command",
				slog.Int64("chat_id", chatID),
				slog.String("command", update.Message.Command()))
			return nil
		}
	}

	metrics.UpdatesRouted.WithLabelValues("other").Inc()
	return nil
}

func extractChatID(update *tgbotapi.Update) int64 {
	if update.Message != nil {
		return update.Message.Chat.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.Message != nil {
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}
