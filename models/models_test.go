package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"bookings":  KindBooking,
		"Booking":   KindBooking,
		"enquiries": KindEnquiry,
		"orders":    KindOrder,
		"services":  KindService,
		"product":   KindProduct,
	}
	for in, want := range cases {
		got, ok := ParseKind(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseKind("invoices")
	assert.False(t, ok)
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "enquiries", KindEnquiry.Plural())
	assert.Equal(t, "bookings", KindBooking.Plural())
}

func TestStatusSets(t *testing.T) {
	assert.Equal(t, BookingStatusPending, InitialStatus(KindBooking))
	assert.Equal(t, OrderStatusPending, InitialStatus(KindOrder))
	assert.Equal(t, EnquiryStatusNew, InitialStatus(KindEnquiry))
	assert.Equal(t, Status(""), InitialStatus(KindService))

	assert.True(t, IsValidStatus(KindBooking, BookingStatusSeen))
	assert.False(t, IsValidStatus(KindOrder, BookingStatusSeen))
	assert.False(t, KindProduct.HasStatus())
}

func TestOrderComputeTotal(t *testing.T) {
	o := Order{Items: []OrderItem{
		{Name: "Serum", Price: decimal.NewFromInt(500), Quantity: 2},
		{Name: "Comb", Price: decimal.NewFromInt(300), Quantity: 1},
	}}
	assert.True(t, o.ComputeTotal().Equal(decimal.NewFromInt(1300)))
}

func TestNegativePriceRejected(t *testing.T) {
	s := Service{Name: "Cut", Price: decimal.NewFromInt(-1)}
	assert.Error(t, s.Validate())

	o := Order{Items: []OrderItem{{Name: "x", Price: decimal.NewFromInt(-5), Quantity: 1}}}
	assert.Error(t, o.Validate())
}

func TestMoneyMarshalsAsNumber(t *testing.T) {
	b, err := json.Marshal(Product{Name: "Oil", Price: decimal.RequireFromString("12.50")})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"price":12.5`)
}
