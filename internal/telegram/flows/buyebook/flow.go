package buyebook

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"ebook-bot/internal/config"
	"ebook-bot/internal/metrics"
	"ebook-bot/internal/telegram/states"
)

// Callback data the flow reacts to. The prefixed values carry the choice as
// a suffix: idioma_es, pago_usdt, banco_ec and so on.
const (
	CallbackBuy = "comprar"

	callbackLanguagePrefix = "idioma_"
	callbackMethodPrefix   = "pago_"
	callbackBankPrefix     = "banco_"
)

type Handler struct {
	bot            botApi
	stateManager   stateManager
	paymentService paymentService
	l10n           localizer
	product        config.ProductConfig
	paypal         config.PayPalConfig
	bankES         config.BankESConfig
	bankEC         config.BankECConfig
	logger         *slog.Logger
}

func NewHandler(
	bot botApi,
	sm stateManager,
	ps paymentService,
	l10n localizer,
	product config.ProductConfig,
	paypal config.PayPalConfig,
	bankES config.BankESConfig,
	bankEC config.BankECConfig,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		bot:            bot,
		stateManager:   sm,
		paymentService: ps,
		l10n:           l10n,
		product:        product,
		paypal:         paypal,
		bankES:         bankES,
		bankEC:         bankEC,
		logger:         logger,
	}
}

// Start greets the chat and shows the buy button
func (h *Handler) Start(chatID int64) error {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(h.l10n.Get("es", "buttons.buy", nil), CallbackBuy),
		),
	)
	return h.sendKeyboard(chatID, h.l10n.Get("es", "flow.welcome", nil), keyboard)
}

// HandleCallback drives the purchase flow one button press at a time. The
// callback query is always answered, whatever the step itself does.
func (h *Handler) HandleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.Message == nil {
		return nil
	}
	chatID := cb.Message.Chat.ID
	data := cb.Data

	defer func() {
		_, _ = h.bot.Request(tgbotapi.NewCallback(cb.ID, ""))
	}()

	switch {
	case data == CallbackBuy:
		return h.showLanguages(chatID)
	case strings.HasPrefix(data, callbackLanguagePrefix):
		return h.handleLanguage(chatID, strings.TrimPrefix(data, callbackLanguagePrefix))
	case strings.HasPrefix(data, callbackMethodPrefix):
		return h.handleMethod(ctx, chatID, strings.TrimPrefix(data, callbackMethodPrefix))
	case strings.HasPrefix(data, callbackBankPrefix):
		return h.handleBankCountry(chatID, strings.TrimPrefix(data, callbackBankPrefix))
	default:
		h.logger.Debug("unknown callback", slog.Int64("chat_id", chatID), slog.String("data", data))
		return nil
	}
}

func (h *Handler) showLanguages(chatID int64) error {
	keyboard := h.buildKeyboard("es", []buttonSpec{
		{"buttons.lang_es", callbackLanguagePrefix + "es"},
		{"buttons.lang_en", callbackLanguagePrefix + "en"},
	})
	return h.sendKeyboard(chatID, h.l10n.Get("es", "flow.choose_language", nil), keyboard)
}

func (h *Handler) handleLanguage(chatID int64, code string) error {
	var lang states.Language
	switch code {
	case "es":
		lang = states.LanguageES
	case "en":
		lang = states.LanguageEN
	default:
		return nil
	}

	h.stateManager.SetLanguage(chatID, lang)

	keyboard := h.buildKeyboard(string(lang), []buttonSpec{
		{"buttons.usdt", callbackMethodPrefix + "usdt"},
		{"buttons.paypal", callbackMethodPrefix + "paypal"},
		{"buttons.bank", callbackMethodPrefix + "banco"},
	})
	return h.sendKeyboard(chatID, h.l10n.Get(string(lang), "flow.choose_method", nil), keyboard)
}

func (h *Handler) handleMethod(ctx context.Context, chatID int64, code string) error {
	purchase, ok := h.stateManager.Get(chatID)
	if !ok {
		return h.sendSessionExpired(chatID)
	}
	lang := string(purchase.Language)

	switch code {
	case "usdt":
		url, err := h.paymentService.CreateCharge(ctx, chatID)
		if err != nil {
			metrics.ChargesCreated.WithLabelValues("error").Inc()
			h.logger.Error("create charge failed",
				slog.Int64("chat_id", chatID),
				slog.Any("error", err))
			// The purchase stays where it was so the buyer can retry
			return h.send(chatID, h.l10n.Get(lang, "payment.usdt_error", nil))
		}
		metrics.ChargesCreated.WithLabelValues("ok").Inc()
		h.stateManager.SetMethod(chatID, states.MethodUSDT)
		return h.send(chatID, h.l10n.Get(lang, "payment.usdt_link", map[string]interface{}{
			"url": url,
		}))

	case "paypal":
		h.stateManager.SetMethod(chatID, states.MethodPayPal)
		return h.send(chatID, h.l10n.Get(lang, "payment.paypal_instructions", map[string]interface{}{
			"price":     formatAmount(h.product.PriceAmount),
			"email":     h.paypal.Email,
			"reference": h.reference(chatID),
		}))

	case "banco":
		h.stateManager.SetMethod(chatID, states.MethodBank)
		keyboard := h.buildKeyboard(lang, []buttonSpec{
			{"buttons.bank_es", callbackBankPrefix + "es"},
			{"buttons.bank_ec", callbackBankPrefix + "ec"},
		})
		return h.sendKeyboard(chatID, h.l10n.Get(lang, "flow.choose_bank_country", nil), keyboard)

	default:
		return nil
	}
}

func (h *Handler) handleBankCountry(chatID int64, code string) error {
	purchase, ok := h.stateManager.Get(chatID)
	if !ok {
		return h.sendSessionExpired(chatID)
	}
	lang := string(purchase.Language)

	switch code {
	case "es":
		h.stateManager.SetBankCountry(chatID, states.BankCountryES)
		return h.send(chatID, h.l10n.Get(lang, "payment.bank_es_instructions", map[string]interface{}{
			"holder":    h.bankES.Holder,
			"iban":      h.bankES.IBAN,
			"reference": h.reference(chatID),
		}))

	case "ec":
		h.stateManager.SetBankCountry(chatID, states.BankCountryEC)
		return h.send(chatID, h.l10n.Get(lang, "payment.bank_ec_instructions", map[string]interface{}{
			"bank":      h.bankEC.Bank,
			"account":   h.bankEC.Account,
			"reference": h.reference(chatID),
		}))

	default:
		return nil
	}
}

func (h *Handler) sendSessionExpired(chatID int64) error {
	return h.send(chatID, h.l10n.Get("es", "flow.session_expired", nil))
}

// reference is the transfer note the buyer quotes so a manual payment can be
// matched to the chat
func (h *Handler) reference(chatID int64) string {
	return fmt.Sprintf("%s-%d", h.product.ReferencePrefix, chatID)
}

type buttonSpec struct {
	labelKey string
	data     string
}

func (h *Handler) buildKeyboard(lang string, specs []buttonSpec) tgbotapi.InlineKeyboardMarkup {
	rows := lo.Map(specs, func(b buttonSpec, _ int) []tgbotapi.InlineKeyboardButton {
		return tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(h.l10n.Get(lang, b.labelKey, nil), b.data),
		)
	})
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (h *Handler) send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := h.bot.Send(msg)
	return err
}

func (h *Handler) sendKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = keyboard
	_, err := h.bot.Send(msg)
	return err
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
