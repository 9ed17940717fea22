package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/armelle-pouzioux/GLesCrocs/internal/domain"
	"github.com/armelle-pouzioux/GLesCrocs/internal/interfaces"
)

type orderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) interfaces.OrderRepository {
	return &orderRepository{pool: pool}
}

func (r *orderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *orderRepository) NextTicket(ctx context.Context, serviceDate string) (int, error) {
	const query = `
		SELECT COALESCE(MAX(ticket_number), 0) + 1
		FROM orders
		WHERE service_date = $1
	`

	var ticket int
	if err := r.queryRow(ctx, query, serviceDate).Scan(&ticket); err != nil {
		return 0, markTransient(fmt.Errorf("next ticket: %w", err))
	}
	return ticket, nil
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	const orderQuery = `
		INSERT INTO orders (service_date, ticket_number, status, menu_id,
		                    total_cents, estimated_prep_sec, validated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.queryRow(ctx, orderQuery,
		order.ServiceDate, order.TicketNumber, order.Status, order.MenuID,
		order.TotalCents, order.EstimatedPrepSec, order.ValidatedAt,
	).Scan(&order.ID)
	if err != nil {
		// The UNIQUE(service_date, ticket_number) constraint is the
		// backstop for ticket races; losing it is retryable.
		if isUniqueViolation(err) {
			return domain.ErrUnavailable
		}
		return markTransient(fmt.Errorf("insert order: %w", err))
	}

	const lineQuery = `
		INSERT INTO order_items (order_id, menu_item_id, name_snapshot, qty, unit_price_cents)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	for i := range order.Lines {
		line := &order.Lines[i]
		err := r.queryRow(ctx, lineQuery,
			order.ID, line.MenuItemID, line.NameSnapshot, line.Quantity, line.UnitPriceCents,
		).Scan(&line.ID)
		if err != nil {
			return markTransient(fmt.Errorf("insert order item: %w", err))
		}
		line.OrderID = order.ID
	}

	return nil
}

func (r *orderRepository) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return r.getOrder(ctx, id, false)
}

func (r *orderRepository) GetOrderForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	return r.getOrder(ctx, id, true)
}

const orderColumns = `
	id, service_date, ticket_number, status, menu_id, total_cents, estimated_prep_sec,
	validated_at, preparing_at, paid_at, ready_at, completed_at, cancelled_at
`

func (r *orderRepository) getOrder(ctx context.Context, id int64, forUpdate bool) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	order, err := scanOrder(r.queryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, markTransient(fmt.Errorf("get order: %w", err))
	}

	if err := r.loadLines(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) loadLines(ctx context.Context, order *domain.Order) error {
	const query = `
		SELECT id, order_id, menu_item_id, name_snapshot, qty, unit_price_cents
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`
	rows, err := r.query(ctx, query, order.ID)
	if err != nil {
		return markTransient(fmt.Errorf("load order items: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.MenuItemID,
			&line.NameSnapshot, &line.Quantity, &line.UnitPriceCents); err != nil {
			return markTransient(fmt.Errorf("scan order item: %w", err))
		}
		order.Lines = append(order.Lines, line)
	}
	return rows.Err()
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, order *domain.Order) error {
	const query = `
		UPDATE orders
		SET status = $1, preparing_at = $2, paid_at = $3, ready_at = $4,
		    completed_at = $5, cancelled_at = $6
		WHERE id = $7
	`
	tag, err := r.exec(ctx, query,
		order.Status, order.PreparingAt, order.PaidAt, order.ReadyAt,
		order.CompletedAt, order.CancelledAt, order.ID,
	)
	if err != nil {
		return markTransient(fmt.Errorf("update order status: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) ActiveQueue(ctx context.Context, serviceDate string) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE service_date = $1 AND status NOT IN ($2, $3)
		ORDER BY ticket_number ASC
	`
	rows, err := r.query(ctx, query, serviceDate, domain.StatusCompleted, domain.StatusCancelled)
	if err != nil {
		return nil, markTransient(fmt.Errorf("list active queue: %w", err))
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, markTransient(fmt.Errorf("scan queue order: %w", err))
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, markTransient(err)
	}
	return orders, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	var date time.Time
	err := row.Scan(
		&order.ID, &date, &order.TicketNumber, &order.Status, &order.MenuID,
		&order.TotalCents, &order.EstimatedPrepSec,
		&order.ValidatedAt, &order.PreparingAt, &order.PaidAt,
		&order.ReadyAt, &order.CompletedAt, &order.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	order.ServiceDate = date.Format(domain.ServiceDateFormat)
	return &order, nil
}

func (r *orderRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *orderRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *orderRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
