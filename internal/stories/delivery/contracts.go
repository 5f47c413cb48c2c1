package delivery

import "ebook-bot/internal/telegram/states"

type (
	notifier interface {
		SendMessage(chatID int64, text string) error
	}

	purchaseStore interface {
		Claim(chatID int64) (states.Purchase, bool)
	}

	localizer interface {
		Get(lang, key string, params map[string]interface{}) string
	}
)
