package payment

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusExpired   Status = "expired"
)

// Charge is the audit record of a crypto charge minted through NOWPayments.
// Delivery itself is driven by the in-memory purchase state; this ledger only
// tracks what was asked of the gateway and what came back.
type Charge struct {
	ID            int64
	ChatID        int64
	OrderID       string
	NowPaymentsID *string
	Amount        float64
	Currency      string
	PayCurrency   string
	Status        Status
	PaymentURL    *string
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type GetCriteria struct {
	ID            *int64
	OrderID       *string
	NowPaymentsID *string
}

type ListCriteria struct {
	ChatID        *int64
	Status        *Status
	CreatedBefore *time.Time
	Limit         int
}

type UpdateParams struct {
	Status        *Status
	NowPaymentsID *string
	PaymentURL    *string
	ProcessedAt   *time.Time
}
