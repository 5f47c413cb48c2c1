package buyebook

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ebook-bot/internal/config"
	"ebook-bot/internal/localization"
	"ebook-bot/internal/telegram/states"
)

func newTestHandler(t *testing.T, payments *MockPaymentService) (*Handler, *MockBotApi, *states.Manager) {
	t.Helper()

	l10n, err := localization.NewService()
	if err != nil {
		t.Fatalf("localization.NewService: %v", err)
	}

	bot := &MockBotApi{}
	sm := states.NewManager()

	h := NewHandler(
		bot,
		sm,
		payments,
		l10n,
		config.ProductConfig{
			PriceAmount:     15,
			PriceCurrency:   "usd",
			PayCurrency:     "usdt",
			Description:     "Ebook Digital",
			LinkES:          "https://example.com/es.pdf",
			LinkEN:          "https://example.com/en.pdf",
			ReferencePrefix: "EBOOK",
		},
		config.PayPalConfig{Email: "seller@example.com"},
		config.BankESConfig{Holder: "Jane Seller", IBAN: "ES12 3456 7890 1234 5678 90"},
		config.BankECConfig{Bank: "Banco Pichincha", Account: "2214543269"},
		slog.Default(),
	)

	return h, bot, sm
}

func callback(chatID int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		Data:    data,
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
	}
}

func sentText(t *testing.T, bot *MockBotApi, idx int) string {
	t.Helper()
	if len(bot.SentMessages) <= idx {
		t.Fatalf("expected at least %d sent messages, got %d", idx+1, len(bot.SentMessages))
	}
	msg, ok := bot.SentMessages[idx].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("sent message %d is not a MessageConfig: %T", idx, bot.SentMessages[idx])
	}
	return msg.Text
}

func sentKeyboard(t *testing.T, bot *MockBotApi, idx int) tgbotapi.InlineKeyboardMarkup {
	t.Helper()
	msg := bot.SentMessages[idx].(tgbotapi.MessageConfig)
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		t.Fatalf("sent message %d has no inline keyboard", idx)
	}
	return kb
}

func TestStart_ShowsBuyButton(t *testing.T) {
	h, bot, _ := newTestHandler(t, &MockPaymentService{})

	if err := h.Start(123); err != nil {
		t.Fatalf("Start: %v", err)
	}

	text := sentText(t, bot, 0)
	if !strings.Contains(text, "Bienvenido a mi tienda de ebooks") {
		t.Errorf("unexpected welcome text: %q", text)
	}

	kb := sentKeyboard(t, bot, 0)
	if len(kb.InlineKeyboard) != 1 || len(kb.InlineKeyboard[0]) != 1 {
		t.Fatalf("expected a single buy button, got %+v", kb.InlineKeyboard)
	}
	if *kb.InlineKeyboard[0][0].CallbackData != CallbackBuy {
		t.Errorf("expected callback data %q, got %q", CallbackBuy, *kb.InlineKeyboard[0][0].CallbackData)
	}
}

func TestHandleCallback_BuyShowsLanguages(t *testing.T) {
	h, bot, _ := newTestHandler(t, &MockPaymentService{})

	if err := h.HandleCallback(context.Background(), callback(123, "comprar")); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}

	kb := sentKeyboard(t, bot, 0)
	if len(kb.InlineKeyboard) != 2 {
		t.Fatalf("expected 2 language buttons, got %d rows", len(kb.InlineKeyboard))
	}
	if *kb.InlineKeyboard[0][0].CallbackData != "idioma_es" || *kb.InlineKeyboard[1][0].CallbackData != "idioma_en" {
		t.Errorf("unexpected language callback data: %+v", kb.InlineKeyboard)
	}

	if len(bot.Requests) != 1 {
		t.Errorf("expected the callback query to be answered, got %d requests", len(bot.Requests))
	}
}

func TestHandleCallback_LanguageSelection(t *testing.T) {
	h, bot, sm := newTestHandler(t, &MockPaymentService{})

	if err := h.HandleCallback(context.Background(), callback(123, "idioma_en")); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}

	p, ok := sm.Get(123)
	if !ok || p.Language != states.LanguageEN {
		t.Fatalf("expected purchase with language en, got %+v ok=%v", p, ok)
	}

	text := sentText(t, bot, 0)
	if !strings.Contains(text, "How would you like to pay?") {
		t.Errorf("expected method prompt in english, got %q", text)
	}

	kb := sentKeyboard(t, bot, 0)
	if len(kb.InlineKeyboard) != 3 {
		t.Fatalf("expected 3 method buttons, got %d rows", len(kb.InlineKeyboard))
	}
}

func TestHandleCallback_USDT(t *testing.T) {
	payments := &MockPaymentService{PayURL: "https://nowpayments.io/payment/?iid=42"}
	h, bot, sm := newTestHandler(t, payments)
	sm.SetLanguage(123, states.LanguageES)

	if err := h.HandleCallback(context.Background(), callback(123, "pago_usdt")); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}

	if len(payments.Calls) != 1 || payments.Calls[0] != 123 {
		t.Fatalf("expected one charge for chat 123, got %v", payments.Calls)
	}

	text := sentText(t, bot, 0)
	if !strings.Contains(text, "https://nowpayments.io/payment/?iid=42") {
		t.Errorf("expected payment url in message, got %q", text)
	}
	if !strings.Contains(text, "Paga en USDT") {
		t.Errorf("expected spanish usdt text, got %q", text)
	}

	p, _ := sm.Get(123)
	if p.Method != states.MethodUSDT {
		t.Errorf("expected method usdt recorded, got %q", p.Method)
	}
}

func TestHandleCallback_USDTGatewayError(t *testing.T) {
	payments := &MockPaymentService{Err: errors.New("gateway down")}
	h, bot, sm := newTestHandler(t, payments)
	sm.SetLanguage(123, states.LanguageEN)

	if err := h.HandleCallback(context.Background(), callback(123, "pago_usdt")); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}

	text := sentText(t, bot, 0)
	if !strings.Contains(text, "Error generating payment link") {
		t.Errorf("expected localized error, got %q", text)
	}

	// The purchase survives so the buyer can retry
	p, ok := sm.Get(123)
	if !ok {
		t.Fatal("expected purchase kept after gateway error")
	}
	if p.Method != "" {
		t.Errorf("expected method unchanged after gateway error, got %q", p.Method)
	}
}

func TestHandleCallback_PayPalReference(t *testing.T) {
	h, bot, sm := newTestHandler(t, &MockPaymentService{})
	sm.SetLanguage(123, states.LanguageES)

	if err := h.HandleCallback(context.Background(), callback(123, "pago_paypal")); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}

	text := sentText(t, bot, 0)
	for _, want := range []string{"EBOOK-123", "seller@example.com", "15 USD"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected paypal instructions to contain %q, got %q", want, text)
		}
	}
}

func TestHandleCallback_BankFlow(t *testing.T) {
	h, bot, sm := newTestHandler(t, &MockPaymentService{})
	sm.SetLanguage(123, states.LanguageEN)

	if err := h.HandleCallback(context.Background(), callback(123, "pago_banco")); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	kb := sentKeyboard(t, bot, 0)
	if len(kb.InlineKeyboard) != 2 {
		t.Fatalf("expected 2 country buttons, got %d rows", len(kb.InlineKeyboard))
	}

	if err := h.HandleCallback(context.Background(), callback(123, "banco_es")); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}

	text := sentText(t, bot, 1)
	for _, want := range []string{"ES12 3456 7890 1234 5678 90", "EBOOK-123", "Jane Seller"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected bank instructions to contain %q, got %q", want, text)
		}
	}

	p, _ := sm.Get(123)
	if p.Method != states.MethodBank || p.BankCountry != states.BankCountryES {
		t.Errorf("unexpected purchase state: %+v", p)
	}
}

func TestHandleCallback_ExpiredSession(t *testing.T) {
	h, bot, _ := newTestHandler(t, &MockPaymentService{})

	if err := h.HandleCallback(context.Background(), callback(123, "pago_usdt")); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}

	text := sentText(t, bot, 0)
	if !strings.Contains(text, "sesión ha expirado") {
		t.Errorf("expected session expired prompt, got %q", text)
	}
}

func TestHandleCallback_UnknownDataStillAnswered(t *testing.T) {
	h, bot, _ := newTestHandler(t, &MockPaymentService{})

	if err := h.HandleCallback(context.Background(), callback(123, "something_else")); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}

	if len(bot.SentMessages) != 0 {
		t.Errorf("expected no messages for unknown data, got %d", len(bot.SentMessages))
	}
	if len(bot.Requests) != 1 {
		t.Errorf("expected the callback query to be answered, got %d requests", len(bot.Requests))
	}
}
