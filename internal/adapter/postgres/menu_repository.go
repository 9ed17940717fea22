package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/armelle-pouzioux/GLesCrocs/internal/domain"
	"github.com/armelle-pouzioux/GLesCrocs/internal/interfaces"
)

type menuRepository struct {
	pool *pgxpool.Pool
}

func NewMenuRepository(pool *pgxpool.Pool) interfaces.MenuRepository {
	return &menuRepository{pool: pool}
}

func (r *menuRepository) ActiveMenu(ctx context.Context, serviceDate string) (*domain.Menu, error) {
	return r.activeMenu(ctx, serviceDate, false)
}

// ActiveMenuForUpdate locks the menu row for the surrounding transaction.
// Same-day order creations all take this lock first, which serializes
// ticket assignment.
func (r *menuRepository) ActiveMenuForUpdate(ctx context.Context, serviceDate string) (*domain.Menu, error) {
	return r.activeMenu(ctx, serviceDate, true)
}

func (r *menuRepository) activeMenu(ctx context.Context, serviceDate string, forUpdate bool) (*domain.Menu, error) {
	query := `
		SELECT id, service_date, is_active
		FROM menus
		WHERE service_date = $1 AND is_active
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var menu domain.Menu
	var date time.Time
	err := r.queryRow(ctx, query, serviceDate).Scan(&menu.ID, &date, &menu.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMenuNotFound
		}
		return nil, markTransient(fmt.Errorf("resolve active menu: %w", err))
	}
	menu.ServiceDate = date.Format(domain.ServiceDateFormat)

	return &menu, nil
}

func (r *menuRepository) ResolveItem(ctx context.Context, menuItemID int64) (*domain.MenuItem, error) {
	const query = `
		SELECT id, menu_id, name, price_cents, prep_time_sec, available
		FROM menu_items
		WHERE id = $1 AND available
	`

	var item domain.MenuItem
	err := r.queryRow(ctx, query, menuItemID).Scan(
		&item.ID, &item.MenuID, &item.Name, &item.PriceCents, &item.PrepTimeSec, &item.Available,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, markTransient(fmt.Errorf("resolve menu item: %w", err))
	}

	return &item, nil
}

func (r *menuRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
