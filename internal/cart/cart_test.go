package cart

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/cod-storefront/internal/apperror"
	"github.com/wichananm65/cod-storefront/internal/product"
)

func item(id, price string) product.Product {
	return product.Product{ID: id, Title: "Product " + id, Price: decimal.RequireFromString(price), Image: id + ".png"}
}

func TestAdd_MergesSameProduct(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(item("p", "10"), 2))
	require.NoError(t, c.Add(item("p", "10"), 3))

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, 5, c.ItemCount())
}

func TestAdd_SnapshotsProductAtAddTime(t *testing.T) {
	var c Cart
	p := item("p", "10")
	require.NoError(t, c.Add(p, 1))

	p.Title = "Renamed"
	p.Price = decimal.NewFromInt(99)
	require.NoError(t, c.Add(p, 1))

	line := c.Lines()[0]
	assert.Equal(t, "Product p", line.Title)
	assert.True(t, line.Price.Equal(decimal.NewFromInt(10)))
}

func TestAdd_RejectsNonPositiveQuantity(t *testing.T) {
	var c Cart
	for _, qty := range []int{0, -1} {
		err := c.Add(item("p", "10"), qty)
		var ve *apperror.ValidationError
		require.ErrorAs(t, err, &ve)
	}
	assert.True(t, c.IsEmpty())
}

func TestSetQuantity(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(item("a", "1"), 1))
	require.NoError(t, c.Add(item("b", "2"), 1))

	require.NoError(t, c.SetQuantity("a", 4))
	require.NoError(t, c.SetQuantity("b", 0))
	require.NoError(t, c.SetQuantity("unknown", 3))

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "a", lines[0].ProductID)
	assert.Equal(t, 4, lines[0].Quantity)

	var ve *apperror.ValidationError
	assert.ErrorAs(t, c.SetQuantity("a", -2), &ve)
}

func TestRemove_IsIdempotent(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(item("a", "1"), 1))
	c.Remove("a")
	c.Remove("a")
	assert.True(t, c.IsEmpty())
}

func TestSubtotal(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(item("a", "100"), 2))
	require.NoError(t, c.Add(item("b", "0.10"), 3))
	assert.Equal(t, "200.3", c.Subtotal().String())
}

func TestRandomSequences_KeepOneLinePerProduct(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ids := []string{"a", "b", "c"}

	var c Cart
	for i := 0; i < 500; i++ {
		id := ids[rng.Intn(len(ids))]
		switch rng.Intn(3) {
		case 0:
			_ = c.Add(item(id, "1"), rng.Intn(4)+1)
		case 1:
			_ = c.SetQuantity(id, rng.Intn(4))
		case 2:
			c.Remove(id)
		}

		seen := map[string]bool{}
		sum := 0
		for _, l := range c.Lines() {
			require.False(t, seen[l.ProductID], "duplicate line for %s", l.ProductID)
			require.GreaterOrEqual(t, l.Quantity, 1)
			seen[l.ProductID] = true
			sum += l.Quantity
		}
		require.Equal(t, sum, c.ItemCount())
	}
}

func TestDecode_FailSoft(t *testing.T) {
	assert.True(t, Decode(nil).IsEmpty())
	assert.True(t, Decode([]byte("{not json")).IsEmpty())
	assert.True(t, Decode([]byte(`{"productId":"a"}`)).IsEmpty())

	c := Decode([]byte(`[
		{"productId":"a","title":"A","price":"5","quantity":1},
		{"productId":"","title":"?","price":"1","quantity":1},
		{"productId":"b","title":"B","price":"2","quantity":0},
		{"productId":"a","title":"A","price":"5","quantity":2}
	]`))
	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestMarshal_RoundTripsThroughDecode(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(item("a", "12.50"), 2))

	raw, err := json.Marshal(c)
	require.NoError(t, err)

	got := Decode(raw).Lines()
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ProductID)
	assert.Equal(t, 2, got[0].Quantity)
	assert.True(t, got[0].Price.Equal(decimal.RequireFromString("12.5")))
}
