package payment

import (
	"context"

	"ebook-bot/internal/infra/nowpayments"
)

type (
	Storage interface {
		CreateCharge(ctx context.Context, charge Charge) (*Charge, error)
		GetCharge(ctx context.Context, criteria GetCriteria) (*Charge, error)
		UpdateCharge(ctx context.Context, criteria GetCriteria, params UpdateParams) (*Charge, error)
		ListCharges(ctx context.Context, criteria ListCriteria) ([]*Charge, error)
	}

	GatewayClient interface {
		CreatePayment(ctx context.Context, request nowpayments.PaymentRequest) (*nowpayments.Payment, error)
	}
)
