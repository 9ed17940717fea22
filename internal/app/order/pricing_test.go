package order

import (
	"context"
	"errors"
	"testing"

	"github.com/armelle-pouzioux/GLesCrocs/internal/adapter/memory"
	"github.com/armelle-pouzioux/GLesCrocs/internal/domain"
	"github.com/armelle-pouzioux/GLesCrocs/internal/interfaces"
)

func TestPriceCart(t *testing.T) {
	ctx := context.Background()

	store := memory.NewStore()
	menu := store.AddMenu("2025-06-01", true)
	burger := store.AddItem(menu.ID, "Burger", 850, 300, true)
	fries := store.AddItem(menu.ID, "Frites", 300, 90, true)
	offMenu := store.AddItem(menu.ID, "Plat retiré", 700, 120, false)

	tests := []struct {
		name     string
		lines    []interfaces.CartLine
		wantErr  error
		total    int64
		prepSec  int
		wantQtys []int
	}{
		{
			name: "single line",
			lines: []interfaces.CartLine{
				{MenuItemID: burger.ID, Quantity: 2},
			},
			total:    1700,
			prepSec:  600,
			wantQtys: []int{2},
		},
		{
			name: "mixed cart sums per line",
			lines: []interfaces.CartLine{
				{MenuItemID: burger.ID, Quantity: 1},
				{MenuItemID: fries.ID, Quantity: 3},
			},
			total:    850 + 3*300,
			prepSec:  300 + 3*90,
			wantQtys: []int{1, 3},
		},
		{
			name: "zero and negative quantities floor to 1",
			lines: []interfaces.CartLine{
				{MenuItemID: burger.ID, Quantity: 0},
				{MenuItemID: fries.ID, Quantity: -5},
			},
			total:    850 + 300,
			prepSec:  300 + 90,
			wantQtys: []int{1, 1},
		},
		{
			name: "unknown item",
			lines: []interfaces.CartLine{
				{MenuItemID: 9999, Quantity: 1},
			},
			wantErr: domain.ErrItemNotFound,
		},
		{
			name: "unavailable item",
			lines: []interfaces.CartLine{
				{MenuItemID: offMenu.ID, Quantity: 1},
			},
			wantErr: domain.ErrItemNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart, err := priceCart(ctx, store, tt.lines)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("priceCart: %v", err)
			}

			if cart.TotalCents != tt.total {
				t.Errorf("total = %d, want %d", cart.TotalCents, tt.total)
			}
			if cart.EstimatedPrepSec != tt.prepSec {
				t.Errorf("prep = %d, want %d", cart.EstimatedPrepSec, tt.prepSec)
			}
			if len(cart.Lines) != len(tt.wantQtys) {
				t.Fatalf("lines = %d, want %d", len(cart.Lines), len(tt.wantQtys))
			}
			for i, want := range tt.wantQtys {
				if cart.Lines[i].Quantity != want {
					t.Errorf("line %d quantity = %d, want %d", i, cart.Lines[i].Quantity, want)
				}
			}
		})
	}
}
