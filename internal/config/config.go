package config

import (
	"fmt"
	"time"
)

type Config struct {
	Env              string                  `env:"ENV,default=local"`
	Logger           LoggerConfig            `env:",prefix=LOGGER_"`
	Observability    ObservabilityHTTPConfig `env:",prefix=OBSERVABILITY_"`
	API              APIHTTPConfig           `env:",prefix=API_"`
	ShutdownDuration time.Duration           `env:"SHUTDOWN_DURATION,default=30s"`
	DB               SQLiteConfig            `env:",prefix=DB_"`
	Telegram         TelegramConfig          `env:",prefix=TELEGRAM_"`
	NOWPayments      NOWPaymentsConfig       `env:",prefix=NOWPAYMENTS_"`
	Product          ProductConfig           `env:",prefix=PRODUCT_"`
	PayPal           PayPalConfig            `env:",prefix=PAYPAL_"`
	BankES           BankESConfig            `env:",prefix=BANK_ES_"`
	BankEC           BankECConfig            `env:",prefix=BANK_EC_"`
	Housekeeping     HousekeepingConfig      `env:",prefix=HOUSEKEEPING_"`
}

type TelegramConfig struct {
	BotToken string        `env:"BOT_TOKEN,required"`
	Timeout  time.Duration `env:"TIMEOUT,default=30s"`
}

type NOWPaymentsConfig struct {
	APIKey    string `env:"API_KEY,required"`
	IPNSecret string `env:"IPN_SECRET"`
	BaseURL   string `env:"BASE_URL,default=https://api.nowpayments.io/v1"`
	// Public URL the gateway posts status callbacks to,
	// e.g. https://bot.example.com/webhook/nowpayments
	IPNCallbackURL string        `env:"IPN_CALLBACK_URL,required"`
	Timeout        time.Duration `env:"TIMEOUT,default=30s"`
}

// ProductConfig describes the single product this shop sells.
type ProductConfig struct {
	PriceAmount     float64 `env:"PRICE_AMOUNT,default=15"`
	PriceCurrency   string  `env:"PRICE_CURRENCY,default=usd"`
	PayCurrency     string  `env:"PAY_CURRENCY,default=usdt"`
	Description     string  `env:"DESCRIPTION,default=Ebook Digital"`
	LinkES          string  `env:"LINK_ES,required"`
	LinkEN          string  `env:"LINK_EN,required"`
	ReferencePrefix string  `env:"REFERENCE_PREFIX,default=EBOOK"`
}

type PayPalConfig struct {
	Email string `env:"EMAIL,required"`
}

type BankESConfig struct {
	Holder string `env:"HOLDER,required"`
	IBAN   string `env:"IBAN,required"`
}

type BankECConfig struct {
	Bank    string `env:"BANK,default=Banco Pichincha"`
	Account string `env:"ACCOUNT,required"`
}

type HousekeepingConfig struct {
	SessionTTL       time.Duration `env:"SESSION_TTL,default=24h"`
	PendingChargeTTL time.Duration `env:"PENDING_CHARGE_TTL,default=24h"`
}

type LoggerConfig struct {
	Level string `env:"LEVEL,default=debug"`
}

type APIHTTPConfig struct {
	Host         string        `env:"HOST,default=0.0.0.0"`
	Port         uint16        `env:"PORT,default=10000"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT,default=30s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,default=30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT,default=1m"`
}

func (a APIHTTPConfig) ADDR() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

type ObservabilityHTTPConfig struct {
	Host         string        `env:"HOST,default=127.0.0.1"`
	Port         uint16        `env:"PORT,default=8383"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT,default=30s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,default=30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT,default=1m"`
}

func (a ObservabilityHTTPConfig) ADDR() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

type SQLiteConfig struct {
	Path         string `env:"PATH,default=./data/ebook.db"`
	MaxOpenConns int    `env:"MAX_OPEN_CONNS,default=25"`
	MaxIdleConns int    `env:"MAX_IDLE_CONNS,default=5"`
	MaxLifetime  string `env:"MAX_LIFETIME,default=5m"`
}
