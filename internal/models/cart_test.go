package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCartNormalizeMergesDuplicates(t *testing.T) {
	cart := &Cart{UserID: "u1", Items: []CartItem{
		{ProductID: "p1", Size: "M", Quantity: 2},
		{ProductID: "p1", Size: "M", Quantity: 3},
		{ProductID: "p1", Size: "L", Quantity: 1},
	}}

	cart.Normalize()

	assert.Len(t, cart.Items, 2)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, "M", cart.Items[0].Size)
	assert.Equal(t, 1, cart.Items[1].Quantity)
}

func TestCartNormalizeMergesAcrossSizeWhitespace(t *testing.T) {
	cart := &Cart{Items: []CartItem{
		{ProductID: "p1", Size: "M", Quantity: 1},
		{ProductID: "p1", Size: "  M ", Quantity: 2},
	}}

	cart.Normalize()

	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
}

func TestCartNormalizeDropsNonPositiveQuantities(t *testing.T) {
	cart := &Cart{Items: []CartItem{
		{ProductID: "p1", Size: "M", Quantity: 2},
		{ProductID: "p1", Size: "M", Quantity: -2},
		{ProductID: "p2", Size: "S", Quantity: 0},
	}}

	cart.Normalize()

	assert.Empty(t, cart.Items)
}

func TestCartSetQuantityRemovesAtZero(t *testing.T) {
	cart := &Cart{Items: []CartItem{
		{ProductID: "p1", Size: "M", Quantity: 2},
		{ProductID: "p2", Size: "S", Quantity: 1},
	}}

	cart.SetQuantity(ItemKey{ProductID: "p1", Size: "M"}, 0)

	assert.Len(t, cart.Items, 1)
	assert.Equal(t, "p2", cart.Items[0].ProductID)
}

func TestCartRemoveReportsWhetherSomethingWasRemoved(t *testing.T) {
	cart := &Cart{Items: []CartItem{
		{ProductID: "p1", Size: "M", Quantity: 2},
	}}

	assert.False(t, cart.Remove(ItemKey{ProductID: "p1", Size: "L"}))
	assert.Len(t, cart.Items, 1)

	assert.True(t, cart.Remove(ItemKey{ProductID: "p1", Size: "M"}))
	assert.Empty(t, cart.Items)
}

func TestCartRemoveAllKeepsUnpurchasedLines(t *testing.T) {
	cart := &Cart{Items: []CartItem{
		{ProductID: "p1", Size: "M", Quantity: 2},
		{ProductID: "p1", Size: "L", Quantity: 1},
		{ProductID: "p2", Size: "S", Quantity: 4},
	}}

	cart.RemoveAll([]ItemKey{
		{ProductID: "p1", Size: "M"},
		{ProductID: "p2", Size: " S "},
	})

	assert.Len(t, cart.Items, 1)
	assert.Equal(t, "L", cart.Items[0].Size)
}

func TestProductFindSizeTrimsInput(t *testing.T) {
	p := &Product{Sizes: []ProductSize{{Size: "M", Stock: 3}}}

	assert.NotNil(t, p.FindSize("  M "))
	assert.Nil(t, p.FindSize("m"))
	assert.Nil(t, p.FindSize("XL"))
}
