package environment

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"ebook-bot/internal/config"
	"ebook-bot/internal/localization"
	"ebook-bot/internal/storage"
	"ebook-bot/internal/stories/delivery"
	"ebook-bot/internal/stories/payment"
	"ebook-bot/internal/telegram"
	"ebook-bot/internal/telegram/flows/buyebook"
	"ebook-bot/internal/telegram/states"
	"ebook-bot/internal/worker"
)

type Services struct {
	TelegramRouter  *telegram.Router
	PaymentService  *payment.Service
	DeliveryService *delivery.Service
	WorkerService   *worker.Service
}

func newServices(ctx context.Context, clients *Clients, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	var s Services

	if clients.TelegramBot == nil {
		return nil, errors.New("telegram bot is not initialized - check TELEGRAM_BOT_TOKEN")
	}

	storageImpl := storage.New(clients.SQLiteDB.DB)
	if err := storageImpl.InitSchema(ctx); err != nil {
		return nil, errors.Wrap(err, "init storage schema")
	}

	l10n, err := localization.NewService()
	if err != nil {
		return nil, errors.Wrap(err, "load translations")
	}

	stateManager := states.NewManager()

	paymentService := payment.NewService(
		storageImpl,
		clients.NOWPayments,
		cfg.Product,
		cfg.NOWPayments.IPNCallbackURL,
		logger,
	)

	deliveryService := delivery.NewService(
		clients.TelegramBot,
		stateManager,
		l10n,
		cfg.Product.LinkES,
		cfg.Product.LinkEN,
		logger,
	)

	buyEbookHandler := buyebook.NewHandler(
		clients.TelegramBot,
		stateManager,
		paymentService,
		l10n,
		cfg.Product,
		cfg.PayPal,
		cfg.BankES,
		cfg.BankEC,
		logger,
	)

	workerService := worker.NewService(
		stateManager,
		paymentService,
		cfg.Housekeeping.SessionTTL,
		cfg.Housekeeping.PendingChargeTTL,
		logger,
	)

	s.TelegramRouter = telegram.NewRouter(buyEbookHandler, logger)
	s.PaymentService = paymentService
	s.DeliveryService = deliveryService
	s.WorkerService = workerService

	return &s, nil
}
