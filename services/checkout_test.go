package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salon-server/cart"
	"salon-server/database"
	"salon-server/events"
	"salon-server/models"
	"salon-server/store"
	"salon-server/types"
)

var shopper = Customer{Name: "Meena", Email: "meena@example.com", Phone: "9000000000", Address: "12 Anna Nagar"}

func TestCheckoutSnapshotsCatalog(t *testing.T) {
	w, rec := newWorkflow(t)
	ctx := context.Background()

	serum := &models.Product{Name: "Serum", Price: decimal.NewFromInt(500), ImageURL: "/uploads/serum.jpg"}
	comb := &models.Product{Name: "Comb", Price: decimal.NewFromInt(300)}
	require.NoError(t, w.Create(ctx, serum))
	require.NoError(t, w.Create(ctx, comb))

	sc := cart.New()
	require.NoError(t, sc.Add(serum.ID, 2))
	require.NoError(t, sc.Add(comb.ID, 1))

	order, err := NewCheckout(w).CheckoutCart(ctx, sc, shopper)
	require.NoError(t, err)
	assert.Empty(t, sc.Lines())
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(1300)))
	require.Len(t, order.Items, 2)
	assert.Equal(t, "/uploads/serum.jpg", order.Items[0].ImageURL)

	_, err = w.Update(ctx, models.KindProduct, serum.ID, map[string]any{"price": 900, "name": "Serum XL"})
	require.NoError(t, err)

	stored, err := w.Store().Orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Serum", stored.Items[0].Name)
	assert.True(t, stored.Items[0].Price.Equal(decimal.NewFromInt(500)))
	assert.True(t, stored.TotalAmount.Equal(decimal.NewFromInt(1300)))

	created := rec.ofType(events.Created)
	assert.Equal(t, models.KindOrder, created[len(created)-1].Kind)
}

func TestCheckoutFailuresKeepCart(t *testing.T) {
	w, _ := newWorkflow(t)
	ctx := context.Background()
	checkout := NewCheckout(w)

	_, err := checkout.CheckoutCart(ctx, cart.New(), shopper)
	assert.ErrorIs(t, err, types.ErrValidation)

	sc := cart.New()
	require.NoError(t, sc.Add("ghost", 1))
	_, err = checkout.CheckoutCart(ctx, sc, shopper)
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Len(t, sc.Lines(), 1)

	p := &models.Product{Name: "Serum", Price: decimal.NewFromInt(500)}
	require.NoError(t, w.Create(ctx, p))
	sc = cart.New()
	require.NoError(t, sc.Add(p.ID, 1))
	_, err = checkout.CheckoutCart(ctx, sc, Customer{Name: "No Phone", Address: "x"})
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Len(t, sc.Lines(), 1)
}

// publisherFunc runs a callback for every published event.
type publisherFunc func(events.Event)

func (f publisherFunc) Publish(ev events.Event) { f(ev) }

func TestCheckoutKeepsItemsAddedMeanwhile(t *testing.T) {
	ctx := context.Background()
	sc := cart.New()

	var serum, comb *models.Product
	w := NewWorkflow(store.New(database.OpenTest(t)), publisherFunc(func(ev events.Event) {
		if ev.Type == events.Created && ev.Kind == models.KindOrder {
			// The shopper keeps adding while the order is being stored.
			require.NoError(t, sc.Add(serum.ID, 1))
			require.NoError(t, sc.Add(comb.ID, 1))
		}
	}))

	serum = &models.Product{Name: "Serum", Price: decimal.NewFromInt(500)}
	comb = &models.Product{Name: "Comb", Price: decimal.NewFromInt(300)}
	require.NoError(t, w.Create(ctx, serum))
	require.NoError(t, w.Create(ctx, comb))
	require.NoError(t, sc.Add(serum.ID, 2))

	order, err := NewCheckout(w).CheckoutCart(ctx, sc, shopper)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)

	assert.Equal(t, []cart.Line{{ProductID: serum.ID, Quantity: 1}, {ProductID: comb.ID, Quantity: 1}}, sc.Lines())
}
