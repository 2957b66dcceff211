package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []Status{
		StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusReturned,
	} {
		parsed, err := ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	for _, s := range []string{"", "pending", "PENDING", "Unknown", "Shipped "} {
		_, err := ParseStatus(s)
		assert.ErrorIs(t, err, ErrUnknownStatus, "input %q", s)
	}
}

func TestValidateTransition(t *testing.T) {
	all := []Status{
		StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusReturned,
	}
	allowed := map[Status][]Status{
		StatusPending:    {StatusProcessing, StatusCancelled},
		StatusConfirmed:  {StatusProcessing},
		StatusProcessing: {StatusDelivered},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, ValidateTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestComputeTotal(t *testing.T) {
	items := []Item{
		{ProductID: "p1", Quantity: 2, PriceAtOrder: decimal.RequireFromString("10.00")},
		{ProductID: "p2", Quantity: 1, PriceAtOrder: decimal.RequireFromString("5.50")},
		{ProductID: "p1", Quantity: 3, PriceAtOrder: decimal.RequireFromString("10.00")},
	}

	assert.True(t, decimal.RequireFromString("55.50").Equal(ComputeTotal(items)))
	assert.True(t, decimal.Zero.Equal(ComputeTotal(nil)))
}

func TestNew(t *testing.T) {
	price := decimal.RequireFromString("19.99")

	t.Run("Success", func(t *testing.T) {
		o, err := New("o1", "c1", []Item{
			{ProductID: "p1", Quantity: 2, PriceAtOrder: price},
		})
		require.NoError(t, err)

		assert.Equal(t, "o1", o.ID)
		assert.Equal(t, "c1", o.CustomerID)
		assert.Equal(t, StatusPending, o.Status)
		assert.True(t, decimal.RequireFromString("39.98").Equal(o.TotalAmount))
		require.Len(t, o.Items, 1)
		assert.Equal(t, "o1", o.Items[0].OrderID)
		assert.False(t, o.OrderDate.IsZero())
	})

	t.Run("Fail on no items", func(t *testing.T) {
		_, err := New("o1", "c1", nil)
		assert.ErrorIs(t, err, ErrNoItems)
	})

	t.Run("Fail on non-positive quantity", func(t *testing.T) {
		_, err := New("o1", "c1", []Item{{ProductID: "p1", Quantity: 0, PriceAtOrder: price}})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("Does not alias caller slice", func(t *testing.T) {
		items := []Item{{ProductID: "p1", Quantity: 1, PriceAtOrder: price}}
		o, err := New("o1", "c1", items)
		require.NoError(t, err)

		items[0].Quantity = 99
		assert.Equal(t, 1, o.Items[0].Quantity)
	})
}

func TestClone(t *testing.T) {
	o, err := New("o1", "c1", []Item{
		{ProductID: "p1", Quantity: 1, PriceAtOrder: decimal.RequireFromString("1.00")},
	})
	require.NoError(t, err)

	clone := o.Clone()
	clone.Status = StatusCancelled
	clone.Items[0].Quantity = 42

	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, 1, o.Items[0].Quantity)
}
