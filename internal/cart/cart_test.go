package cart

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/farmstore/pkg/errors"
)

func carrots() Product {
	return Product{ID: 5, Name: "Carrots", Price: decimal.NewFromInt(50000), Stock: 3}
}

func TestCartTotals(t *testing.T) {
	t.Parallel()

	var c Cart
	require.NoError(t, c.Add(carrots(), 2))
	require.NoError(t, c.Add(Product{ID: 7, Name: "Kale", Price: decimal.RequireFromString("12.50"), Stock: 10}, 4))

	assert.Equal(t, 6, c.ItemCount())
	assert.True(t, c.Subtotal().Equal(decimal.RequireFromString("100050")), c.Subtotal().String())
	assert.True(t, c.Items[0].Subtotal().Equal(decimal.NewFromInt(100000)))
	assert.False(t, c.IsEmpty())
}

func TestAddMergesByProductAndClampsToStock(t *testing.T) {
	t.Parallel()

	var c Cart
	require.NoError(t, c.Add(carrots(), 2))
	require.NoError(t, c.Add(carrots(), 5))

	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)
}

func TestAddRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	var c Cart
	err := c.Add(carrots(), 0)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	soldOut := carrots()
	soldOut.Stock = 0
	err = c.Add(soldOut, 1)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	err = c.Add(Product{Stock: 2}, 1)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	assert.True(t, c.IsEmpty())
}

func TestIncrementStopsAtStock(t *testing.T) {
	t.Parallel()

	var c Cart
	require.NoError(t, c.Add(carrots(), 2))
	id := c.Items[0].ID

	changed, err := c.Increment(id)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = c.Increment(id)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 3, c.Items[0].Quantity)
}

func TestDecrementStopsAtOne(t *testing.T) {
	t.Parallel()

	var c Cart
	require.NoError(t, c.Add(carrots(), 2))
	id := c.Items[0].ID

	changed, err := c.Decrement(id)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = c.Decrement(id)
	require.NoError(t, err)
	assert.False(t, changed)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 1, c.Items[0].Quantity)
}

func TestUnknownItem(t *testing.T) {
	t.Parallel()

	var c Cart
	_, err := c.Increment(uuid.New())
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(c.Remove(uuid.New())))
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(c.SetQuantity(uuid.New(), 1)))
}

func TestSetQuantityClamps(t *testing.T) {
	t.Parallel()

	var c Cart
	require.NoError(t, c.Add(carrots(), 1))
	id := c.Items[0].ID

	require.NoError(t, c.SetQuantity(id, 40))
	assert.Equal(t, 3, c.Items[0].Quantity)

	err := c.SetQuantity(id, 0)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	assert.Equal(t, 3, c.Items[0].Quantity)
}

func TestRemoveAndClear(t *testing.T) {
	t.Parallel()

	var c Cart
	require.NoError(t, c.Add(carrots(), 1))
	require.NoError(t, c.Add(Product{ID: 9, Name: "Leeks", Price: decimal.NewFromInt(3), Stock: 4}, 2))

	require.NoError(t, c.Remove(c.Items[0].ID))
	require.Len(t, c.Items, 1)
	assert.Equal(t, int64(9), c.Items[0].ProductID)

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, c.ItemCount())
}

func TestReconcile(t *testing.T) {
	t.Parallel()

	var c Cart
	require.NoError(t, c.Add(carrots(), 3))
	require.NoError(t, c.Add(Product{ID: 7, Name: "Kale", Price: decimal.NewFromInt(2), Stock: 10}, 4))
	require.NoError(t, c.Add(Product{ID: 9, Name: "Leeks", Price: decimal.NewFromInt(3), Stock: 4}, 2))

	adjustments := c.Reconcile(map[int64]int{5: 1, 7: 0})

	require.Len(t, adjustments, 2)
	assert.Equal(t, Adjustment{ItemID: adjustments[0].ItemID, ProductID: 5, ProductName: "Carrots", From: 3, To: 1}, adjustments[0])
	assert.True(t, adjustments[1].Removed)
	assert.Equal(t, int64(7), adjustments[1].ProductID)

	require.Len(t, c.Items, 2)
	assert.Equal(t, 1, c.Items[0].Quantity)
	assert.Equal(t, 1, c.Items[0].ProductStock)
	assert.Equal(t, int64(9), c.Items[1].ProductID)
	assert.Equal(t, 2, c.Items[1].Quantity)
}

func TestQuantityInvariantHoldsUnderRandomActions(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	var c Cart
	for p := int64(1); p <= 4; p++ {
		require.NoError(t, c.Add(Product{ID: p, Name: "p", Price: decimal.NewFromInt(p), Stock: int(p) + 1}, 1))
	}

	for step := 0; step < 500; step++ {
		item := c.Items[rng.Intn(len(c.Items))]
		switch rng.Intn(3) {
		case 0:
			_, err := c.Increment(item.ID)
			require.NoError(t, err)
		case 1:
			_, err := c.Decrement(item.ID)
			require.NoError(t, err)
		case 2:
			require.NoError(t, c.SetQuantity(item.ID, rng.Intn(10)+1))
		}
		for _, it := range c.Items {
			if it.Quantity < 1 || it.Quantity > it.ProductStock {
				t.Fatalf("step %d: quantity %d outside [1,%d]", step, it.Quantity, it.ProductStock)
			}
		}
	}
	assert.Len(t, c.Items, 4)
}
