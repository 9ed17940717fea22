package order

import (
	"context"

	"github.com/armelle-pouzioux/GLesCrocs/internal/domain"
	"github.com/armelle-pouzioux/GLesCrocs/internal/interfaces"
)

// pricedCart is a cart resolved against the catalog: per-line snapshots plus
// the order-level aggregates.
type pricedCart struct {
	Lines            []domain.OrderLine
	TotalCents       int64
	EstimatedPrepSec int
}

// priceCart resolves each cart line, snapshotting the item's name and unit
// price at call time. Quantities below 1 are floored to 1 rather than
// rejected, matching long-standing behavior the kiosk relies on.
func priceCart(ctx context.Context, catalog interfaces.MenuRepository, lines []interfaces.CartLine) (pricedCart, error) {
	var cart pricedCart

	for _, line := range lines {
		item, err := catalog.ResolveItem(ctx, line.MenuItemID)
		if err != nil {
			return pricedCart{}, err
		}

		qty := line.Quantity
		if qty < 1 {
			qty = 1
		}

		cart.Lines = append(cart.Lines, domain.OrderLine{
			MenuItemID:     item.ID,
			NameSnapshot:   item.Name,
			Quantity:       qty,
			UnitPriceCents: item.PriceCents,
		})
		cart.TotalCents += item.PriceCents * int64(qty)
		cart.EstimatedPrepSec += item.PrepTimeSec * qty
	}

	return cart, nil
}
