package delivery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"ebook-bot/internal/localization"
	"ebook-bot/internal/telegram/states"
)

type mockNotifier struct {
	messages map[int64][]string
	err      error
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{messages: make(map[int64][]string)}
}

func (m *mockNotifier) SendMessage(chatID int64, text string) error {
	if m.err != nil {
		return m.err
	}
	m.messages[chatID] = append(m.messages[chatID], text)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, notifier *mockNotifier) (*Service, *states.Manager) {
	t.Helper()

	l10n, err := localization.NewService()
	if err != nil {
		t.Fatalf("localization.NewService: %v", err)
	}

	sm := states.NewManager()
	svc := NewService(notifier, sm, l10n,
		"https://example.com/es.pdf",
		"https://example.com/en.pdf",
		testLogger())

	return svc, sm
}

func TestDeliver(t *testing.T) {
	tests := []struct {
		name     string
		language states.Language
		wantLink string
		wantText string
	}{
		{
			name:     "spanish buyer gets spanish link",
			language: states.LanguageES,
			wantLink: "https://example.com/es.pdf",
			wantText: "¡Pago en USDT confirmado!",
		},
		{
			name:     "english buyer gets english link",
			language: states.LanguageEN,
			wantLink: "https://example.com/en.pdf",
			wantText: "USDT payment confirmed!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := newMockNotifier()
			svc, sm := newTestService(t, notifier)
			sm.SetLanguage(123, tt.language)
			sm.SetMethod(123, states.MethodUSDT)

			if err := svc.Deliver(context.Background(), 123); err != nil {
				t.Fatalf("Deliver: %v", err)
			}

			sent := notifier.messages[123]
			if len(sent) != 1 {
				t.Fatalf("expected one message, got %d", len(sent))
			}
			if !strings.Contains(sent[0], tt.wantLink) {
				t.Errorf("expected link %q in message %q", tt.wantLink, sent[0])
			}
			if !strings.Contains(sent[0], tt.wantText) {
				t.Errorf("expected text %q in message %q", tt.wantText, sent[0])
			}
		})
	}
}

func TestDeliver_NoActivePurchase(t *testing.T) {
	notifier := newMockNotifier()
	svc, _ := newTestService(t, notifier)

	err := svc.Deliver(context.Background(), 999)
	if !errors.Is(err, ErrNoActivePurchase) {
		t.Fatalf("expected ErrNoActivePurchase, got %v", err)
	}
	if len(notifier.messages) != 0 {
		t.Errorf("expected no messages, got %v", notifier.messages)
	}
}

func TestDeliver_ReplayIsNoOp(t *testing.T) {
	notifier := newMockNotifier()
	svc, sm := newTestService(t, notifier)
	sm.SetLanguage(123, states.LanguageES)

	if err := svc.Deliver(context.Background(), 123); err != nil {
		t.Fatalf("first Deliver: %v", err)
	}

	err := svc.Deliver(context.Background(), 123)
	if !errors.Is(err, ErrNoActivePurchase) {
		t.Fatalf("expected replay to find no purchase, got %v", err)
	}

	if len(notifier.messages[123]) != 1 {
		t.Errorf("expected exactly one delivery, got %d", len(notifier.messages[123]))
	}
}
