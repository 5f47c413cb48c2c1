package buyebook

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ebook-bot/internal/telegram/states"
)

type (
	botApi interface {
		Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
		Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	}

	stateManager interface {
		Get(chatID int64) (states.Purchase, bool)
		SetLanguage(chatID int64, lang states.Language)
		SetMethod(chatID int64, method states.Method) bool
		SetBankCountry(chatID int64, country states.BankCountry) bool
	}

	paymentService interface {
		CreateCharge(ctx context.Context, chatID int64) (string, error)
	}

	localizer interface {
		Get(lang, key string, params map[string]interface{}) string
	}
)
