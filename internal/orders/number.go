package orders

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// NewOrderNumber returns a human-readable opaque token (10 uppercase hex
// chars, 40 bits of randomness). Collisions are negligible at that width;
// the order store still enforces uniqueness at the persistence layer.
func NewOrderNumber() string {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return strings.ToUpper(hex.EncodeToString(buf))
}

// IdempotencyKey derives the gateway idempotency key for one logical
// checkout attempt. Stable for a given (order number, user), so a retried
// charge with the same key cannot double-bill.
func IdempotencyKey(orderNumber, userID string) string {
	return fmt.Sprintf("order_%s_%s", orderNumber, userID)
}
