package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamcoffee/storefront/internal/domain/product"
)

func snap(id string, price float64) product.Snapshot {
	return product.Snapshot{ID: id, Name: id, Price: price}
}

func cartOf(entries ...CartItem) Cart {
	c := Cart{Items: entries}
	return Recompute(c)
}

func line(id string, qty int, price float64) CartItem {
	return CartItem{
		ID:       ItemID(id, ""),
		Product:  snap(id, price),
		Quantity: qty,
		Price:    price,
	}
}

func quantities(c Cart) map[string]int {
	out := make(map[string]int, len(c.Items))
	for _, item := range c.Items {
		out[item.Key()] = item.Quantity
	}
	return out
}

// ============================================
// Merge Tests
// ============================================

func TestMerge_CombinesQuantitiesPerKey(t *testing.T) {
	guest := cartOf(line("A", 2, 3.0), line("B", 1, 2.0))
	user := cartOf(line("A", 1, 3.0), line("C", 3, 4.0))

	merged := Merge(user, guest)

	assert.Equal(t, map[string]int{
		"A-default": 3,
		"B-default": 1,
		"C-default": 3,
	}, quantities(merged))

	// Totals recomputed from the merged set, not copied from either source.
	assert.InDelta(t, 3*3.0+1*2.0+3*4.0, merged.Total, 1e-9)
	assert.Equal(t, 7, merged.ItemCount)
}

func TestMerge_EmptyGuestLeavesUserCart(t *testing.T) {
	user := cartOf(line("A", 2, 3.0))

	merged := Merge(user, Empty())

	assert.Equal(t, user, merged)
}

func TestMerge_EmptyUserTakesGuestCart(t *testing.T) {
	guest := cartOf(line("A", 2, 3.0))

	merged := Merge(Empty(), guest)

	require.Len(t, merged.Items, 1)
	assert.Equal(t, 2, merged.Items[0].Quantity)
	assert.InDelta(t, 6.0, merged.Total, 1e-9)
}

func TestMerge_ClampsCombinedQuantity(t *testing.T) {
	guest := cartOf(line("A", 60, 1.0))
	user := cartOf(line("A", 60, 1.0))

	merged := Merge(user, guest)

	assert.Equal(t, MaxQuantity, merged.Items[0].Quantity)
}

func TestMerge_DoesNotMutateSources(t *testing.T) {
	guest := cartOf(line("A", 2, 3.0))
	user := cartOf(line("A", 1, 3.0))

	_ = Merge(user, guest)

	assert.Equal(t, 1, user.Items[0].Quantity)
	assert.Equal(t, 2, guest.Items[0].Quantity)
}

// ============================================
// MergePending Tests
// ============================================

func TestMergePending_AppendsOnlyUnseenKeys(t *testing.T) {
	// Guest-cart merge already ran and won for A; the pending copy of A is
	// assumed to be the same add and must not double count.
	merged := cartOf(line("A", 3, 2.0))
	pending := []CartItem{line("A", 1, 2.0), line("D", 2, 5.0)}

	result := MergePending(merged, pending)

	assert.Equal(t, map[string]int{
		"A-default": 3,
		"D-default": 2,
	}, quantities(result))
	assert.InDelta(t, 3*2.0+2*5.0, result.Total, 1e-9)
}

func TestMergePending_SkipsStructurallyInvalidEntries(t *testing.T) {
	pending := []CartItem{
		{Product: snap("", 1.0), Quantity: 1},  // no product id
		{Product: snap("E", 1.0), Quantity: 0}, // no quantity
		line("F", 1, 1.5),
	}

	result := MergePending(Empty(), pending)

	require.Len(t, result.Items, 1)
	assert.Equal(t, "F-default", result.Items[0].ID)
}

func TestMergePending_NoPendingIsNoop(t *testing.T) {
	c := cartOf(line("A", 1, 2.0))

	assert.Equal(t, c, MergePending(c, nil))
}
