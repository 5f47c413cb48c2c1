package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"ebook-bot/internal/stories/payment"
)

const chargesTable = "charges"

const chargesSchema = `
CREATE TABLE IF NOT EXISTS charges (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	chat_id INTEGER NOT NULL,
	order_id TEXT NOT NULL UNIQUE,
	nowpayments_id TEXT,
	amount REAL NOT NULL,
	currency TEXT NOT NULL,
	pay_currency TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	payment_url TEXT,
	processed_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_charges_chat_id ON charges(chat_id);
CREATE INDEX IF NOT EXISTS idx_charges_status ON charges(status);
`

var chargeRowFields = fields(chargeRow{})

type chargeRow struct {
	ID            int64      `db:"id"`
	ChatID        int64      `db:"chat_id"`
	OrderID       string     `db:"order_id"`
	NowPaymentsID *string    `db:"nowpayments_id"`
	Amount        float64    `db:"amount"`
	Currency      string     `db:"currency"`
	PayCurrency   string     `db:"pay_currency"`
	Status        string     `db:"status"`
	PaymentURL    *string    `db:"payment_url"`
	ProcessedAt   *time.Time `db:"processed_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

func (c chargeRow) ToModel() *payment.Charge {
	return &payment.Charge{
		ID:            c.ID,
		ChatID:        c.ChatID,
		OrderID:       c.OrderID,
		NowPaymentsID: c.NowPaymentsID,
		Amount:        c.Amount,
		Currency:      c.Currency,
		PayCurrency:   c.PayCurrency,
		Status:        payment.Status(c.Status),
		PaymentURL:    c.PaymentURL,
		ProcessedAt:   c.ProcessedAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// InitSchema creates the charges table when it does not exist yet.
func (s *storageImpl) InitSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, chargesSchema); err != nil {
		return fmt.Errorf("create charges schema: %w", err)
	}
	return nil
}

func (s *storageImpl) CreateCharge(ctx context.Context, charge payment.Charge) (*payment.Charge, error) {
	params := map[string]interface{}{
		"chat_id":        charge.ChatID,
		"order_id":       charge.OrderID,
		"nowpayments_id": charge.NowPaymentsID,
		"amount":         charge.Amount,
		"currency":       charge.Currency,
		"pay_currency":   charge.PayCurrency,
		"status":         string(charge.Status),
		"payment_url":    charge.PaymentURL,
		"processed_at":   charge.ProcessedAt,
		"created_at":     s.now(),
		"updated_at":     s.now(),
	}

	q, args, err := s.stmpBuilder().
		Insert(chargesTable).
		SetMap(params).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.ExecContext: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("result.LastInsertId: %w", err)
	}

	return s.GetCharge(ctx, payment.GetCriteria{ID: &id})
}

func (s *storageImpl) GetCharge(ctx context.Context, criteria payment.GetCriteria) (*payment.Charge, error) {
	query := s.stmpBuilder().
		Select(chargeRowFields).
		From(chargesTable).
		Limit(1)

	query = applyChargeCriteria(query, criteria)

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	row := s.db.QueryRowContext(ctx, q, args...)

	var c chargeRow
	err = row.Scan(&c.ID, &c.ChatID, &c.OrderID, &c.NowPaymentsID, &c.Amount, &c.Currency,
		&c.PayCurrency, &c.Status, &c.PaymentURL, &c.ProcessedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("row.Scan: %w", err)
	}

	return c.ToModel(), nil
}

func (s *storageImpl) UpdateCharge(ctx context.Context, criteria payment.GetCriteria, params payment.UpdateParams) (*payment.Charge, error) {
	query := s.stmpBuilder().
		Update(chargesTable).
		Set("updated_at", s.now())

	if criteria.ID != nil {
		query = query.Where(sq.Eq{"id": *criteria.ID})
	}
	if criteria.OrderID != nil {
		query = query.Where(sq.Eq{"order_id": *criteria.OrderID})
	}
	if criteria.NowPaymentsID != nil {
		query = query.Where(sq.Eq{"nowpayments_id": *criteria.NowPaymentsID})
	}

	if params.Status != nil {
		query = query.Set("status", string(*params.Status))
	}
	if params.NowPaymentsID != nil {
		query = query.Set("nowpayments_id", *params.NowPaymentsID)
	}
	if params.PaymentURL != nil {
		query = query.Set("payment_url", *params.PaymentURL)
	}
	if params.ProcessedAt != nil {
		query = query.Set("processed_at", *params.ProcessedAt)
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	_, err = s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.ExecContext: %w", err)
	}

	return s.GetCharge(ctx, criteria)
}

func (s *storageImpl) ListCharges(ctx context.Context, criteria payment.ListCriteria) ([]*payment.Charge, error) {
	query := s.stmpBuilder().
		Select(chargeRowFields).
		From(chargesTable)

	if criteria.ChatID != nil {
		query = query.Where(sq.Eq{"chat_id": *criteria.ChatID})
	}
	if criteria.Status != nil {
		query = query.Where(sq.Eq{"status": string(*criteria.Status)})
	}
	if criteria.CreatedBefore != nil {
		query = query.Where(sq.Lt{"created_at": *criteria.CreatedBefore})
	}

	if criteria.Limit > 0 {
		query = query.Limit(uint64(criteria.Limit))
	}

	query = query.OrderBy("created_at DESC")

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.QueryContext: %w", err)
	}
	defer rows.Close()

	var result []*payment.Charge
	for rows.Next() {
		var c chargeRow
		err = rows.Scan(&c.ID, &c.ChatID, &c.OrderID, &c.NowPaymentsID, &c.Amount, &c.Currency,
			&c.PayCurrency, &c.Status, &c.PaymentURL, &c.ProcessedAt, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		result = append(result, c.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return result, nil
}

func applyChargeCriteria(query sq.SelectBuilder, criteria payment.GetCriteria) sq.SelectBuilder {
	if criteria.ID != nil {
		query = query.Where(sq.Eq{"id": *criteria.ID})
	}
	if criteria.OrderID != nil {
		query = query.Where(sq.Eq{"order_id": *criteria.OrderID})
	}
	if criteria.NowPaymentsID != nil {
		query = query.Where(sq.Eq{"nowpayments_id": *criteria.NowPaymentsID})
	}
	return query
}
