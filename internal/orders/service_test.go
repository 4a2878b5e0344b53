package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"sideways_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderComputesExactTotal(t *testing.T) {
	e := newEnv()
	in := validInput()
	in.Items = []LineItem{
		{ProductID: "prod-1", Size: "M", Quantity: 2},
		{ProductID: "prod-1", Size: "L", Quantity: 1},
	}

	order, err := e.svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)

	var sum float64
	for _, it := range order.Items {
		assert.Equal(t, 150.00, it.PriceAtPurchase, "snapshot price must be the server-held price")
		sum += it.PriceAtPurchase * float64(it.Quantity)
	}
	assert.Equal(t, sum, order.TotalAmount)
	assert.Equal(t, 450.00, order.TotalAmount)

	// The gateway gets rounded centavos.
	require.Len(t, e.gateway.charges, 1)
	assert.Equal(t, int64(45000), e.gateway.charges[0].AmountMinor)
	assert.Equal(t, "mxn", e.gateway.charges[0].Currency)
}

func TestCreateOrderEmptyItems(t *testing.T) {
	e := newEnv()
	in := validInput()
	in.Items = nil

	_, err := e.svc.CreateOrder(context.Background(), in)
	assert.Equal(t, KindInvalidRequest, KindOf(err))
	assert.Empty(t, e.orders.byID)
	assert.Empty(t, e.gateway.charges)
}

func TestCreateOrderForeignAddress(t *testing.T) {
	e := newEnv()
	in := validInput()
	in.AddressID = "addr-other"

	_, err := e.svc.CreateOrder(context.Background(), in)
	assert.Equal(t, KindForbidden, KindOf(err))
	assert.Equal(t, 5, e.products.stockOf("prod-1", "M"), "stock must be untouched")
	assert.Empty(t, e.gateway.charges)
}

func TestCreateOrderForeignCard(t *testing.T) {
	e := newEnv()
	in := validInput()
	in.CardID = "card-other"

	_, err := e.svc.CreateOrder(context.Background(), in)
	assert.Equal(t, KindForbidden, KindOf(err))
	assert.Empty(t, e.gateway.charges)
}

func TestCreateOrderMissingAddress(t *testing.T) {
	e := newEnv()
	in := validInput()
	in.AddressID = "addr-nope"

	_, err := e.svc.CreateOrder(context.Background(), in)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	e := newEnv()
	in := validInput()
	in.Items = []LineItem{{ProductID: "prod-nope", Size: "M", Quantity: 1}}

	_, err := e.svc.CreateOrder(context.Background(), in)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCreateOrderInactiveProduct(t *testing.T) {
	e := newEnv()
	in := validInput()
	in.Items = []LineItem{{ProductID: "prod-inactive", Size: "M", Quantity: 1}}

	_, err := e.svc.CreateOrder(context.Background(), in)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCreateOrderUnknownSize(t *testing.T) {
	e := newEnv()
	in := validInput()
	in.Items = []LineItem{{ProductID: "prod-1", Size: "XXL", Quantity: 1}}

	_, err := e.svc.CreateOrder(context.Background(), in)
	assert.Equal(t, KindInvalidRequest, KindOf(err))
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	e := newEnv()
	in := validInput()
	in.Items = []LineItem{{ProductID: "prod-1", Size: "M", Quantity: 6}}

	_, err := e.svc.CreateOrder(context.Background(), in)
	assert.Equal(t, KindInsufficientStock, KindOf(err))
	assert.Equal(t, 5, e.products.stockOf("prod-1", "M"))
	assert.Empty(t, e.gateway.charges)
	assert.Empty(t, e.orders.byID)
}

func TestCreateOrderCardGuard(t *testing.T) {
	e := newEnv()

	_, err := e.svc.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)
	require.Contains(t, e.guard.marked, "card-1")

	// Same card within the guard window: refused before any mutation.
	_, err = e.svc.CreateOrder(context.Background(), validInput())
	assert.Equal(t, KindRateLimited, KindOf(err))
	assert.Len(t, e.gateway.charges, 1)
	assert.Len(t, e.orders.byID, 1)
}

func TestCreateOrderSuccessEndState(t *testing.T) {
	e := newEnv()

	order, err := e.svc.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)
	require.NotNil(t, order)

	// Stock 5 → 3 for the purchased bucket, untouched elsewhere.
	assert.Equal(t, 3, e.products.stockOf("prod-1", "M"))
	assert.Equal(t, 1, e.products.stockOf("prod-1", "L"))

	// Only the purchased pair leaves the cart.
	require.Len(t, e.cart.cart.Items, 1)
	assert.Equal(t, "L", e.cart.cart.Items[0].Size)

	// One Paid order with a single seeded history entry and the gateway tx.
	stored := e.orders.only()
	require.NotNil(t, stored)
	assert.Equal(t, string(StatusPaid), stored.Status)
	require.Len(t, stored.StatusHistory, 1)
	assert.Equal(t, string(StatusPaid), stored.StatusHistory[0].Status)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 2, stored.Items[0].Quantity)
	assert.Equal(t, 150.00, stored.Items[0].PriceAtPurchase)
	assert.Equal(t, "pi_test_1", stored.PaymentIntentID)
	assert.Nil(t, stored.ProcessedAt)

	// Both e-mails go out without blocking the response.
	assert.Eventually(t, func() bool { return e.notifier.receiptCount() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestCreateOrderIdempotencyKey(t *testing.T) {
	e := newEnv()

	order, err := e.svc.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)

	require.Len(t, e.gateway.charges, 1)
	charge := e.gateway.charges[0]
	assert.Equal(t, IdempotencyKey(order.OrderNumber, "user-1"), charge.IdempotencyKey)
	assert.Equal(t, "pm_card_visa", charge.PaymentMethod)

	// A replay with the same key must not produce a second charge.
	res1, err := e.gateway.Charge(context.Background(), charge)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentIntentID, res1.TransactionID)
	assert.Len(t, e.gateway.charges, 1)
}

func TestCreateOrderPaymentDeclined(t *testing.T) {
	e := newEnv()
	e.gateway.status = "requires_payment_method"

	_, err := e.svc.CreateOrder(context.Background(), validInput())
	assert.Equal(t, KindPaymentFailed, KindOf(err))

	// No order, no stock movement, no cart pruning.
	assert.Empty(t, e.orders.byID)
	assert.Equal(t, 5, e.products.stockOf("prod-1", "M"))
	assert.Len(t, e.cart.cart.Items, 2)
	assert.Empty(t, e.guard.marked)
}

func TestCreateOrderGatewayError(t *testing.T) {
	e := newEnv()
	e.gateway.chargeErr = errors.New("connection reset")

	_, err := e.svc.CreateOrder(context.Background(), validInput())
	assert.Equal(t, KindPaymentFailed, KindOf(err))
	assert.Empty(t, e.orders.byID)
}

func TestCreateOrderStockRaceTriggersCompensation(t *testing.T) {
	e := newEnv()
	// The advisory read passes but the atomic gate refuses: a concurrent
	// checkout took the last units between read and decrement.
	e.products.refuse[stockKey("prod-1", "M")] = true

	_, err := e.svc.CreateOrder(context.Background(), validInput())
	assert.Equal(t, KindInsufficientStock, KindOf(err))

	// The captured charge is refunded and the persisted order flagged.
	require.Len(t, e.gateway.refunds, 1)
	assert.Equal(t, "pi_test_1", e.gateway.refunds[0])
	stored := e.orders.only()
	require.NotNil(t, stored)
	assert.Equal(t, string(StatusCancelled), stored.Status)
	assert.True(t, stored.IsCancelled)
	assert.True(t, stored.IsRefunded)
}

func TestCreateOrderDuplicateNumberRefunds(t *testing.T) {
	e := newEnv()
	e.orders.createErr = ErrDuplicateOrderNumber

	_, err := e.svc.CreateOrder(context.Background(), validInput())
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Len(t, e.gateway.refunds, 1)
}

func TestCreateOrderTrimsSize(t *testing.T) {
	e := newEnv()
	in := validInput()
	in.Items = []LineItem{{ProductID: "prod-1", Size: "  M ", Quantity: 1}}

	order, err := e.svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "M", order.Items[0].Size)
	assert.Equal(t, 4, e.products.stockOf("prod-1", "M"))
}

func TestCreateOrderPartialDecrementKeeps(t *testing.T) {
	e := newEnv()
	in := validInput()
	in.Items = []LineItem{
		{ProductID: "prod-1", Size: "M", Quantity: 1},
		{ProductID: "prod-1", Size: "L", Quantity: 1},
	}
	e.products.refuse[stockKey("prod-1", "L")] = true

	_, err := e.svc.CreateOrder(context.Background(), in)
	assert.Equal(t, KindInsufficientStock, KindOf(err))
	// First bucket was taken before the refusal; the refund covers the
	// whole charge, operators reconcile the remaining stock drift.
	require.Len(t, e.gateway.refunds, 1)
}

func TestCreateOrderKeepsCartOnNoopPrune(t *testing.T) {
	e := newEnv()
	// Item purchased directly, never in the cart: pruning must not touch
	// the cart's other lines.
	e.cart.cart.Items = []models.CartItem{{ProductID: "prod-other", Size: "S", Quantity: 1}}

	_, err := e.svc.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)
	assert.Len(t, e.cart.cart.Items, 1)
}
