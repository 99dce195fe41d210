package numbering

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocator_NextInvoiceNumber(t *testing.T) {
	allocator := NewAllocator()

	first, err := allocator.NextInvoiceNumber()
	require.NoError(t, err)

	second, err := allocator.NextInvoiceNumber()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first, "INV-"))
	assert.True(t, strings.HasPrefix(second, "INV-"))
	assert.NotEqual(t, first, second)
	assert.Greater(t, second, first)
}

func TestAllocator_NextWorkOrderNumber(t *testing.T) {
	allocator := NewAllocator()

	first, err := allocator.NextWorkOrderNumber()
	require.NoError(t, err)

	second, err := allocator.NextWorkOrderNumber()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first, "WO-"))
	assert.True(t, strings.HasPrefix(second, "WO-"))
	assert.NotEqual(t, first, second)
}

func TestAllocator_NumbersAreUnique(t *testing.T) {
	allocator := NewAllocator()

	seen := make(map[string]bool)

	for range 100 {
		number, err := allocator.NextInvoiceNumber()
		require.NoError(t, err)
		assert.False(t, seen[number], "number %s allocated twice", number)
		seen[number] = true
	}
}
