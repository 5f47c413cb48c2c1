package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ebook-bot/internal/infra/nowpayments"
	"ebook-bot/internal/metrics"
	"ebook-bot/internal/stories/delivery"
)

type (
	deliveryService interface {
		Deliver(ctx context.Context, chatID int64) error
	}

	chargeRecorder interface {
		MarkConfirmed(ctx context.Context, orderID, paymentID string) error
	}
)

// UpdateHandler decodes a Telegram webhook update and hands it to the
// router. Telegram retries anything but a 200, so the response is always
// 200 OK even when the update is garbage or routing fails.
func UpdateHandler(router *Router, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			logger.Warn("decode telegram update", slog.Any("error", err))
			writeOK(w)
			return
		}

		if err := router.Route(&update); err != nil {
			logger.Error("route update", slog.Any("error", err))
		}

		writeOK(w)
	}
}

// ipnPayload is the slice of the NOWPayments IPN body this bot cares about.
// custom_id echoes whatever the charge was created with; the gateway has
// been seen sending it both as a string and as a number.
type ipnPayload struct {
	PaymentID     json.Number `json:"payment_id"`
	PaymentStatus string      `json:"payment_status"`
	OrderID       string      `json:"order_id"`
	CustomID      json.Number `json:"custom_id"`
}

// NOWPaymentsHandler processes gateway status callbacks. A signature
// mismatch is the only 400; everything else, including callbacks this bot
// cannot act on, is acknowledged with 200 so the gateway stops retrying.
func NOWPaymentsHandler(ipnSecret string, deliveries deliveryService, charges chargeRecorder, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			logger.Warn("read IPN body", slog.Any("error", err))
			writeOK(w)
			return
		}

		if ipnSecret != "" {
			sig := r.Header.Get("x-nowpayments-sig")
			if !nowpayments.VerifySignature(ipnSecret, body, sig) {
				metrics.IPNCallbacks.WithLabelValues("invalid_signature").Inc()
				logger.Warn("IPN signature mismatch")
				http.Error(w, "invalid signature", http.StatusBadRequest)
				return
			}
		}

		var payload ipnPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			metrics.IPNCallbacks.WithLabelValues("ignored").Inc()
			logger.Warn("decode IPN body", slog.Any("error", err))
			writeOK(w)
			return
		}

		if payload.PaymentStatus != "confirmed" {
			metrics.IPNCallbacks.WithLabelValues("ignored").Inc()
			logger.Info("IPN ignored",
				slog.String("status", payload.PaymentStatus),
				slog.String("payment_id", payload.PaymentID.String()))
			writeOK(w)
			return
		}

		ctx := r.Context()

		// Ledger update is best effort; delivery does not depend on it
		if err := charges.MarkConfirmed(ctx, payload.OrderID, payload.PaymentID.String()); err != nil {
			logger.Warn("mark charge confirmed",
				slog.String("payment_id", payload.PaymentID.String()),
				slog.Any("error", err))
		}

		chatID, err := strconv.ParseInt(payload.CustomID.String(), 10, 64)
		if err != nil || chatID == 0 {
			metrics.IPNCallbacks.WithLabelValues("ignored").Inc()
			logger.Warn("IPN without usable custom_id",
				slog.String("custom_id", payload.CustomID.String()))
			writeOK(w)
			return
		}

		switch err := deliveries.Deliver(ctx, chatID); {
		case err == nil:
			metrics.IPNCallbacks.WithLabelValues("confirmed").Inc()
			metrics.Deliveries.Inc()
		case errors.Is(err, delivery.ErrNoActivePurchase):
			metrics.IPNCallbacks.WithLabelValues("ignored").Inc()
			logger.Info("IPN for chat without active purchase", slog.Int64("chat_id", chatID))
		default:
			metrics.IPNCallbacks.WithLabelValues("error").Inc()
			logger.Error("deliver ebook",
				slog.Int64("chat_id", chatID),
				slog.Any("error", err))
		}

		writeOK(w)
	}
}

// HealthHandler serves the liveness text on GET /
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("✅ Bot activo"))
	}
}

func writeOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
