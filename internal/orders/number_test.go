package orders

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewOrderNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9A-F]{10}$`)
	seen := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		n := NewOrderNumber()
		assert.Regexp(t, pattern, n)
		assert.False(t, seen[n], "collision on %s", n)
		seen[n] = true
	}
}

func TestIdempotencyKeyIsStable(t *testing.T) {
	a := IdempotencyKey("AB12CD34EF", "user-1")
	b := IdempotencyKey("AB12CD34EF", "user-1")
	assert.Equal(t, a, b)
	assert.Equal(t, "order_AB12CD34EF_user-1", a)
	assert.NotEqual(t, a, IdempotencyKey("AB12CD34EF", "user-2"))
}
