package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ebook-bot/internal/telegram/states"
)

// ErrNoActivePurchase is returned when the chat has no purchase in flight,
// including replays of an already delivered payment.
var ErrNoActivePurchase = errors.New("no active purchase for chat")

// Service sends the localized download link once a payment is confirmed.
type Service struct {
	notifier  notifier
	purchases purchaseStore
	l10n      localizer
	linkES    string
	linkEN    string
	logger    *slog.Logger
}

func NewService(notifier notifier, purchases purchaseStore, l10n localizer, linkES, linkEN string, logger *slog.Logger) *Service {
	return &Service{
		notifier:  notifier,
		purchases: purchases,
		l10n:      l10n,
		linkES:    linkES,
		linkEN:    linkEN,
		logger:    logger,
	}
}

// Deliver claims the chat's purchase state and sends the download link in the
// buyer's language. Claiming first means a replayed confirmation finds no
// state and becomes a no-op.
func (s *Service) Deliver(ctx context.Context, chatID int64) error {
	purchase, ok := s.purchases.Claim(chatID)
	if !ok {
		return ErrNoActivePurchase
	}

	lang := string(purchase.Language)
	link := s.linkES
	if purchase.Language == states.LanguageEN {
		link = s.linkEN
	}

	text := s.l10n.Get(lang, "delivery.confirmed", map[string]interface{}{
		"link": link,
	})

	if err := s.notifier.SendMessage(chatID, text); err != nil {
		return fmt.Errorf("send download link: %w", err)
	}

	s.logger.Info("ebook delivered",
		slog.Int64("chat_id", chatID),
		slog.String("language", lang))

	return nil
}
