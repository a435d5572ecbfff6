package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swifteats/internal/catalog"
	"swifteats/internal/domain"
)

func menuFixture() []catalog.MenuItem {
	return []catalog.MenuItem{
		{ItemID: 1, Name: "Margherita", Price: decimal.NewFromInt(100), IsAvailable: true},
		{ItemID: 2, Name: "Garlic Bread", Price: decimal.RequireFromString("49.50"), IsAvailable: true},
		{ItemID: 3, Name: "Tiramisu", Price: decimal.NewFromInt(80), IsAvailable: false},
	}
}

func TestPriceKnownTotal(t *testing.T) {
	// menu price 100, quantity 2: subtotal 200, tax 10, total 240.
	quote, err := Price(menuFixture(), []Line{{ItemID: 1, Quantity: 2}})
	require.NoError(t, err)

	assert.Equal(t, "200", quote.Subtotal.String())
	assert.Equal(t, "10", quote.Tax.String())
	assert.Equal(t, "240", quote.Total.String())
}

func TestPriceSnapshotsMenuPrices(t *testing.T) {
	quote, err := Price(menuFixture(), []Line{
		{ItemID: 1, Quantity: 1},
		{ItemID: 2, Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, quote.Items, 2)

	assert.Equal(t, int64(1), quote.Items[0].ItemID)
	assert.True(t, quote.Items[0].Price.Equal(decimal.NewFromInt(100)))
	assert.True(t, quote.Items[1].Price.Equal(decimal.RequireFromString("49.50")))

	// 100 + 148.50 = 248.50; tax 12.43 (rounded); +30 delivery = 290.93
	assert.Equal(t, "290.93", quote.Total.StringFixed(2))
}

func TestPriceUnavailableItem(t *testing.T) {
	_, err := Price(menuFixture(), []Line{{ItemID: 3, Quantity: 1}})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestPriceUnknownItem(t *testing.T) {
	_, err := Price(menuFixture(), []Line{{ItemID: 999, Quantity: 1}})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Detail, "999")
}

func TestValidateLinesBounds(t *testing.T) {
	tests := []struct {
		name  string
		lines []Line
		ok    bool
	}{
		{"empty", nil, false},
		{"one line", []Line{{ItemID: 1, Quantity: 1}}, true},
		{"twenty lines", manyLines(20), true},
		{"twenty-one lines", manyLines(21), false},
		{"quantity zero", []Line{{ItemID: 1, Quantity: 0}}, false},
		{"quantity five", []Line{{ItemID: 1, Quantity: 5}}, true},
		{"quantity six", []Line{{ItemID: 1, Quantity: 6}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLines(tt.lines)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				var verr *domain.ValidationError
				assert.ErrorAs(t, err, &verr)
			}
		})
	}
}

func TestValidateRestaurant(t *testing.T) {
	open := &catalog.Restaurant{RestaurantID: 1, Name: "Spice Villa", City: "Pune", IsOpen: true}

	assert.NoError(t, ValidateRestaurant(open, "Pune"))

	closed := *open
	closed.IsOpen = false
	var verr *domain.ValidationError
	require.ErrorAs(t, ValidateRestaurant(&closed, "Pune"), &verr)
	assert.Equal(t, "Restaurant is closed", verr.Detail)

	require.ErrorAs(t, ValidateRestaurant(open, "Mumbai"), &verr)
	assert.Equal(t, "Delivery city must match restaurant city", verr.Detail)
}

func manyLines(n int) []Line {
	lines := make([]Line, n)
	for i := range lines {
		lines[i] = Line{ItemID: int64(i + 1), Quantity: 1}
	}
	return lines
}
