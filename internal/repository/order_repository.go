package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/checkoutpay/internal/domain"
	"github.com/nikolayk812/checkoutpay/internal/port"
	"github.com/samber/lo"
)

var (
	ErrNotFound = domain.ErrNotFound
)

const orderColumns = `id, customer_email, total_minor, total_currency, payment_state, payment_intent_id, created_at, updated_at`

type orderRepository struct {
	db DBTX
}

func NewOrder(pool *pgxpool.Pool) port.OrderRepository {
	return &orderRepository{db: pool}
}

func NewOrderWithTx(tx pgx.Tx) port.OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	var o domain.Order

	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return o, fmt.Errorf("q.GetOrder: %w", ErrNotFound)
		}
		return o, fmt.Errorf("q.GetOrder: %w", err)
	}

	return o, nil
}

func (r *orderRepository) InsertOrder(ctx context.Context, order domain.Order) (uuid.UUID, error) {
	if order.Total.Amount.IsNegative() {
		return uuid.Nil, errors.New("order total is negative")
	}

	totalMinor, err := domain.ChargeableMinorUnits(order.Total.Amount)
	if err != nil {
		return uuid.Nil, fmt.Errorf("domain.ChargeableMinorUnits: %w", err)
	}

	orderID := order.ID
	if orderID == uuid.Nil {
		orderID = uuid.New()
	}

	state := order.PaymentState
	if state == "" {
		state = domain.PaymentStateCreated
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO orders (id, customer_email, total_minor, total_currency, payment_state, payment_intent_id)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		orderID,
		order.CustomerEmail,
		totalMinor,
		order.Total.Currency.String(),
		string(state),
		order.PaymentIntentID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return uuid.Nil, fmt.Errorf("q.InsertOrder: %w", domain.ErrOrderExists)
		}
		return uuid.Nil, fmt.Errorf("q.InsertOrder: %w", err)
	}

	return orderID, nil
}

func (r *orderRepository) GetPaymentState(ctx context.Context, orderID uuid.UUID) (domain.PaymentState, error) {
	var raw string

	err := r.db.QueryRow(ctx, `SELECT payment_state FROM orders WHERE id = $1`, orderID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("q.GetPaymentState: %w", ErrNotFound)
		}
		return "", fmt.Errorf("q.GetPaymentState: %w", err)
	}

	state, err := domain.ToPaymentState(raw)
	if err != nil {
		return "", fmt.Errorf("domain.ToPaymentState[%s]: %w", raw, err)
	}

	return state, nil
}

func (r *orderRepository) SetPaymentState(ctx context.Context, orderID uuid.UUID, state domain.PaymentState) error {
	if orderID == uuid.Nil {
		return fmt.Errorf("orderID is empty")
	}
	if state == "" {
		return fmt.Errorf("state is empty")
	}

	cmdTag, err := r.db.Exec(ctx,
		`UPDATE orders SET payment_state = $2, updated_at = NOW() WHERE id = $1`,
		orderID, string(state))
	if err != nil {
		return fmt.Errorf("q.SetPaymentState: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("q.SetPaymentState: %w", ErrNotFound)
	}

	return nil
}

func (r *orderRepository) CompareAndSwapPaymentState(ctx context.Context, orderID uuid.UUID, expected, next domain.PaymentState, intentID string) (bool, error) {
	if orderID == uuid.Nil {
		return false, fmt.Errorf("orderID is empty")
	}

	swapped, err := withTx(ctx, r.db, func(tx DBTX) (bool, error) {
		cmdTag, err := tx.Exec(ctx,
			`UPDATE orders
			    SET payment_state = $3,
			        payment_intent_id = CASE WHEN $4 = '' THEN payment_intent_id ELSE $4 END,
			        updated_at = NOW()
			  WHERE id = $1 AND payment_state = $2`,
			orderID, string(expected), string(next), intentID)
		if err != nil {
			return false, fmt.Errorf("q.CompareAndSwapPaymentState: %w", err)
		}

		if cmdTag.RowsAffected() > 0 {
			return true, nil
		}

		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
			return false, fmt.Errorf("q.OrderExists: %w", err)
		}

		if !exists {
			return false, fmt.Errorf("q.CompareAndSwapPaymentState: %w", ErrNotFound)
		}

		return false, nil
	})
	if err != nil {
		return false, fmt.Errorf("withTx: %w", err)
	}

	return swapped, nil
}

func (r *orderRepository) SearchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter.Validate: %w", err)
	}

	var createdAfter, createdBefore, updatedAfter, updatedBefore *time.Time

	if filter.CreatedAt != nil {
		createdAfter = filter.CreatedAt.After
		createdBefore = filter.CreatedAt.Before
	}

	if filter.UpdatedAt != nil {
		updatedAfter = filter.UpdatedAt.After
		updatedBefore = filter.UpdatedAt.Before
	}

	states := lo.Map(filter.States, func(s domain.PaymentState, _ int) string {
		return string(s)
	})

	rows, err := r.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders
		  WHERE ($1::uuid[] IS NULL OR id = ANY($1::uuid[]))
		    AND ($2::text[] IS NULL OR payment_state = ANY($2::text[]))
		    AND ($3::timestamptz IS NULL OR created_at > $3)
		    AND ($4::timestamptz IS NULL OR created_at < $4)
		    AND ($5::timestamptz IS NULL OR updated_at > $5)
		    AND ($6::timestamptz IS NULL OR updated_at < $6)
		  ORDER BY updated_at`,
		nilSliceIfEmpty(filter.IDs),
		nilSliceIfEmpty(states),
		createdAfter,
		createdBefore,
		updatedAfter,
		updatedBefore,
	)
	if err != nil {
		return nil, fmt.Errorf("q.SearchOrders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanOrder: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return orders, nil
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		o            domain.Order
		totalMinor   int64
		currencyCode string
		state        string
	)

	if err := row.Scan(
		&o.ID,
		&o.CustomerEmail,
		&totalMinor,
		&currencyCode,
		&state,
		&o.PaymentIntentID,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return o, err
	}

	parsedCurrency, err := domain.ParseCurrency(currencyCode)
	if err != nil {
		return o, err
	}

	o.PaymentState, err = domain.ToPaymentState(state)
	if err != nil {
		return o, fmt.Errorf("domain.ToPaymentState[%s]: %w", state, err)
	}

	o.Total = domain.Money{Amount: domain.FromMinorUnits(totalMinor), Currency: parsedCurrency}

	return o, nil
}

func nilSliceIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
