package environment

import (
	"context"
	"log/slog"
	"net/http"

	"ebook-bot/internal/config"
	"ebook-bot/internal/telegram"
)

type Servers struct {
	HTTP struct {
		Observability *http.Server
		API           *http.Server
	}
}

func newServers(ctx context.Context, cfg config.Config, logger *slog.Logger, clients *Clients, services *Services) *Servers {
	var servers Servers

	mux := http.NewServeMux()

	// Telegram pushes message updates to /telegram and button presses to
	// /callback; both carry the same update envelope, so either route
	// accepts either kind.
	updateHandler := telegram.UpdateHandler(services.TelegramRouter, logger.WithGroup("http"))
	mux.HandleFunc("POST /telegram", updateHandler)
	mux.HandleFunc("POST /callback", updateHandler)

	mux.HandleFunc("POST /webhook/nowpayments", telegram.NOWPaymentsHandler(
		cfg.NOWPayments.IPNSecret,
		services.DeliveryService,
		services.PaymentService,
		logger.WithGroup("http"),
	))

	mux.HandleFunc("GET /{$}", telegram.HealthHandler())

	servers.HTTP.API = &http.Server{
		Addr:              cfg.API.ADDR(),
		Handler:           mux,
		ReadTimeout:       cfg.API.ReadTimeout,
		WriteTimeout:      cfg.API.WriteTimeout,
		IdleTimeout:       cfg.API.IdleTimeout,
		ReadHeaderTimeout: cfg.API.ReadTimeout,
	}
	servers.HTTP.Observability = initObservability(ctx, logger.WithGroup("http"), clients, cfg)

	return &servers
}
