package buyebook

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MockBotApi records everything the flow tries to send
type MockBotApi struct {
	SentMessages []tgbotapi.Chattable
	Requests     []tgbotapi.Chattable
}

func (m *MockBotApi) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.SentMessages = append(m.SentMessages, c)
	return tgbotapi.Message{MessageID: len(m.SentMessages)}, nil
}

func (m *MockBotApi) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	m.Requests = append(m.Requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// MockPaymentService returns a fixed payment URL or a fixed error
type MockPaymentService struct {
	PayURL string
	Err    error
	Calls  []int64
}

func (m *MockPaymentService) CreateCharge(_ context.Context, chatID int64) (string, error) {
	m.Calls = append(m.Calls, chatID)
	if m.Err != nil {
		return "", m.Err
	}
	return m.PayURL, nil
}
