package payment

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"ebook-bot/internal/config"
	"ebook-bot/internal/infra/nowpayments"
)

// Service mints crypto charges through NOWPayments and keeps the ledger in
// sync with what the gateway reports.
type Service struct {
	storage        Storage
	gateway        GatewayClient
	product        config.ProductConfig
	ipnCallbackURL string
	logger         *slog.Logger
	now            func() time.Time
}

func NewService(storage Storage, gateway GatewayClient, product config.ProductConfig, ipnCallbackURL string, logger *slog.Logger) *Service {
	return &Service{
		storage:        storage,
		gateway:        gateway,
		product:        product,
		ipnCallbackURL: ipnCallbackURL,
		logger:         logger,
		now:            time.Now,
	}
}

// CreateCharge creates a gateway payment for the configured product and
// returns the hosted payment URL. The ledger row is best effort: a storage
// failure is logged but never blocks the buyer.
func (s *Service) CreateCharge(ctx context.Context, chatID int64) (string, error) {
	orderID := uuid.New().String()

	charge := Charge{
		ChatID:      chatID,
		OrderID:     orderID,
		Amount:      s.product.PriceAmount,
		Currency:    s.product.PriceCurrency,
		PayCurrency: s.product.PayCurrency,
		Status:      StatusPending,
	}
	if _, err := s.storage.CreateCharge(ctx, charge); err != nil {
		s.logger.Warn("record charge failed",
			slog.Int64("chat_id", chatID),
			slog.String("order_id", orderID),
			slog.Any("error", err))
	}

	created, err := s.gateway.CreatePayment(ctx, nowpayments.PaymentRequest{
		PriceAmount:      s.product.PriceAmount,
		PriceCurrency:    s.product.PriceCurrency,
		PayCurrency:      s.product.PayCurrency,
		IPNCallbackURL:   s.ipnCallbackURL,
		OrderID:          orderID,
		OrderDescription: s.product.Description,
		CustomID:         strconv.FormatInt(chatID, 10),
	})
	if err != nil {
		return "", fmt.Errorf("create gateway payment: %w", err)
	}

	if created.PaymentURL == "" {
		return "", fmt.Errorf("gateway returned no payment url for order %s", orderID)
	}

	paymentID := created.PaymentID.String()
	if _, err := s.storage.UpdateCharge(ctx,
		GetCriteria{OrderID: &orderID},
		UpdateParams{NowPaymentsID: &paymentID, PaymentURL: &created.PaymentURL},
	); err != nil {
		s.logger.Warn("update charge with gateway data failed",
			slog.String("order_id", orderID),
			slog.Any("error", err))
	}

	s.logger.Info("charge created",
		slog.Int64("chat_id", chatID),
		slog.String("order_id", orderID),
		slog.String("payment_id", paymentID))

	return created.PaymentURL, nil
}

// MarkConfirmed flips the ledger row to confirmed. The row is matched by
// order id when the IPN carries one, by gateway payment id otherwise.
func (s *Service) MarkConfirmed(ctx context.Context, orderID, paymentID string) error {
	criteria := GetCriteria{}
	switch {
	case orderID != "":
		criteria.OrderID = &orderID
	case paymentID != "":
		criteria.NowPaymentsID = &paymentID
	default:
		return fmt.Errorf("callback carries neither order id nor payment id")
	}

	existing, err := s.storage.GetCharge(ctx, criteria)
	if err != nil {
		return fmt.Errorf("get charge: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("no charge for order %q / payment %q", orderID, paymentID)
	}
	if existing.Status == StatusConfirmed {
		return nil
	}

	status := StatusConfirmed
	processedAt := s.now()
	params := UpdateParams{Status: &status, ProcessedAt: &processedAt}
	if paymentID != "" && existing.NowPaymentsID == nil {
		params.NowPaymentsID = &paymentID
	}

	if _, err := s.storage.UpdateCharge(ctx, criteria, params); err != nil {
		return fmt.Errorf("update charge: %w", err)
	}

	s.logger.Info("charge confirmed",
		slog.Int64("chat_id", existing.ChatID),
		slog.String("order_id", existing.OrderID))

	return nil
}

// ExpireStale marks pending charges older than olderThan as expired and
// returns how many rows were touched.
func (s *Service) ExpireStale(ctx context.Context, olderThan time.Duration) (int, error) {
	pending := StatusPending
	cutoff := s.now().Add(-olderThan)

	charges, err := s.storage.ListCharges(ctx, ListCriteria{
		Status:        &pending,
		CreatedBefore: &cutoff,
	})
	if err != nil {
		return 0, fmt.Errorf("list stale charges: %w", err)
	}

	expired := StatusExpired
	count := 0
	for _, charge := range charges {
		id := charge.ID
		if _, err := s.storage.UpdateCharge(ctx, GetCriteria{ID: &id}, UpdateParams{Status: &expired}); err != nil {
			s.logger.Error("expire charge failed",
				slog.Int64("charge_id", charge.ID),
				slog.Any("error", err))
			continue
		}
		count++
	}

	return count, nil
}
