package states

import "time"

type Language string

const (
	LanguageES Language = "es"
	LanguageEN Language = "en"
)

type Method string

const (
	MethodUSDT   Method = "usdt"
	MethodPayPal Method = "paypal"
	MethodBank   Method = "bank"
)

type BankCountry string

const (
	BankCountryES BankCountry = "es"
	BankCountryEC BankCountry = "ec"
)

// Purchase is the in-flight purchase of a single chat. It exists from the
// moment a language is picked until the ebook is delivered.
type Purchase struct {
	Language    Language
	Method      Method
	BankCountry BankCountry
	UpdatedAt   time.Time
}
