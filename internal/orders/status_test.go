package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var admin = Actor{UserID: "admin-1", Admin: true}

func placeOrder(t *testing.T, e *env) string {
	t.Helper()
	order, err := e.svc.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)
	return order.ID.String()
}

func TestUpdateStatusRequiresAdmin(t *testing.T) {
	e := newEnv()
	id := placeOrder(t, e)

	_, err := e.svc.UpdateStatus(context.Background(), id, "Shipped", Actor{UserID: "user-1"})
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	e := newEnv()
	id := placeOrder(t, e)

	_, err := e.svc.UpdateStatus(context.Background(), id, "Teleported", admin)
	assert.Equal(t, KindInvalidRequest, KindOf(err))
}

func TestUpdateStatusNotFound(t *testing.T) {
	e := newEnv()

	_, err := e.svc.UpdateStatus(context.Background(), "missing", "Paid", admin)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestUpdateStatusSameStatusIsNoop(t *testing.T) {
	e := newEnv()
	id := placeOrder(t, e)

	order, err := e.svc.UpdateStatus(context.Background(), id, "Paid", admin)
	require.NoError(t, err)
	assert.Len(t, order.StatusHistory, 1, "no duplicate history entry on a no-op")

	stored, _ := e.orders.FindByID(context.Background(), id)
	assert.Len(t, stored.StatusHistory, 1)
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	e := newEnv()
	id := placeOrder(t, e)

	// Paid → Delivered skips Shipped.
	_, err := e.svc.UpdateStatus(context.Background(), id, "Delivered", admin)
	assert.Equal(t, KindInvalidRequest, KindOf(err))

	// Cancelled is terminal, resurrection is refused.
	_, err = e.svc.UpdateStatus(context.Background(), id, "Cancelled", admin)
	require.NoError(t, err)
	_, err = e.svc.UpdateStatus(context.Background(), id, "Paid", admin)
	assert.Equal(t, KindInvalidRequest, KindOf(err))
}

func TestUpdateStatusShippedThenDelivered(t *testing.T) {
	e := newEnv()
	id := placeOrder(t, e)

	_, err := e.svc.UpdateStatus(context.Background(), id, "Shipped", admin)
	require.NoError(t, err)
	order, err := e.svc.UpdateStatus(context.Background(), id, "Delivered", admin)
	require.NoError(t, err)

	// Delivered retains the record; history has Paid, Shipped, Delivered.
	assert.Equal(t, string(StatusDelivered), order.Status)
	require.Len(t, order.StatusHistory, 3)
	assert.Equal(t, string(StatusShipped), order.StatusHistory[1].Status)

	stored, _ := e.orders.FindByID(context.Background(), id)
	require.NotNil(t, stored, "Delivered must not remove the order")
}

func TestUpdateStatusCancelledSetsFlag(t *testing.T) {
	e := newEnv()
	id := placeOrder(t, e)

	order, err := e.svc.UpdateStatus(context.Background(), id, "Cancelled", admin)
	require.NoError(t, err)
	assert.True(t, order.IsCancelled)
}

func TestUpdateStatusPaidSetsProcessedAt(t *testing.T) {
	e := newEnv()
	id := placeOrder(t, e)

	// Force a Pending order to exercise the → Paid branch.
	stored, _ := e.orders.FindByID(context.Background(), id)
	stored.Status = string(StatusPending)
	stored.IsCancelled = true
	require.NoError(t, e.orders.Update(context.Background(), stored))

	order, err := e.svc.UpdateStatus(context.Background(), id, "Paid", admin)
	require.NoError(t, err)
	require.NotNil(t, order.ProcessedAt)
	assert.False(t, order.IsCancelled)
}

func TestUpdateStatusSendsStatusEmail(t *testing.T) {
	e := newEnv()
	id := placeOrder(t, e)

	_, err := e.svc.UpdateStatus(context.Background(), id, "Shipped", admin)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		e.notifier.mu.Lock()
		defer e.notifier.mu.Unlock()
		return len(e.notifier.statuses) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestPurgeDeliveredOrder(t *testing.T) {
	e := newEnv()
	id := placeOrder(t, e)
	_, err := e.svc.UpdateStatus(context.Background(), id, "Shipped", admin)
	require.NoError(t, err)
	_, err = e.svc.UpdateStatus(context.Background(), id, "Delivered", admin)
	require.NoError(t, err)

	stored, _ := e.orders.FindByID(context.Background(), id)
	res, err := e.svc.Purge(context.Background(), id, admin)
	require.NoError(t, err)
	assert.Equal(t, stored.OrderNumber, res.OrderNumber)

	// Gone: a second purge and a fetch both come back empty.
	_, err = e.svc.Purge(context.Background(), id, admin)
	assert.Equal(t, KindNotFound, KindOf(err))
	gone, _ := e.orders.FindByID(context.Background(), id)
	assert.Nil(t, gone)
}

func TestPurgeRefusesLiveOrder(t *testing.T) {
	e := newEnv()
	id := placeOrder(t, e)

	_, err := e.svc.Purge(context.Background(), id, admin)
	assert.Equal(t, KindInvalidRequest, KindOf(err))

	_, err = e.svc.Purge(context.Background(), id, Actor{UserID: "user-1"})
	assert.Equal(t, KindForbidden, KindOf(err))
}
