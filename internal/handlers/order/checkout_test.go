package order

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sideways_back_end/internal/models"
	"sideways_back_end/internal/orders"
)

// Doublures minimales des collaborateurs du workflow : juste de quoi dérouler
// un checkout via le handler HTTP.

type stubProducts struct{ byID map[string]*models.Product }

func (s stubProducts) FindByID(_ context.Context, id string) (*models.Product, error) {
	return s.byID[id], nil
}

func (s stubProducts) DecrementStock(_ context.Context, _, _ string, _ int) (bool, error) {
	return true, nil
}

type stubAddresses struct{ address *models.Address }

func (s stubAddresses) FindByID(_ context.Context, _ string) (*models.Address, error) {
	return s.address, nil
}

type stubCards struct{ card *models.Card }

func (s stubCards) FindByID(_ context.Context, _ string) (*models.Card, error) {
	return s.card, nil
}

type stubOrders struct{}

func (stubOrders) Create(_ context.Context, o *models.Order) error {
	o.ID = gocql.TimeUUID()
	return nil
}

func (stubOrders) FindByID(_ context.Context, _ string) (*models.Order, error) { return nil, nil }
func (stubOrders) Update(_ context.Context, _ *models.Order) error             { return nil }
func (stubOrders) Delete(_ context.Context, _ string) error                    { return nil }

type stubCart struct{}

func (stubCart) RemoveItems(_ context.Context, _ string, _ []models.ItemKey) error { return nil }

type stubGuard struct{}

func (stubGuard) RecentlyUsed(_ context.Context, _ string) (bool, error) { return false, nil }
func (stubGuard) MarkUsed(_ context.Context, _ string) error             { return nil }

type stubGateway struct{ status string }

func (s stubGateway) Charge(_ context.Context, _ orders.ChargeParams) (*orders.ChargeResult, error) {
	res := &orders.ChargeResult{Status: s.status, TransactionID: "pi_test_1"}
	if s.status != "succeeded" {
		res.FailureReason = "card_declined"
	}
	return res, nil
}

func (stubGateway) Refund(_ context.Context, _ string, _ int64) error { return nil }

type stubNotifier struct{}

func (stubNotifier) OrderReceipt(_ context.Context, _ *models.Order, _ string) error  { return nil }
func (stubNotifier) NewOrderAlert(_ context.Context, _ *models.Order) error           { return nil }
func (stubNotifier) StatusChanged(_ context.Context, _ *models.Order, _ string) error { return nil }

type stubUsers struct{}

func (stubUsers) FindEmail(_ context.Context, _ string) (string, error) {
	return "user1@example.com", nil
}

func newCheckoutRouter(t *testing.T, gatewayStatus string, invalidated *[]string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gateway := stubGateway{status: gatewayStatus}
	svc := orders.NewService(
		stubProducts{byID: map[string]*models.Product{
			"p1": {ID: gocql.TimeUUID(), Name: "Retro Runner", Price: 1500, IsActive: true,
				Sizes: []models.ProductSize{{Size: "M", Stock: 3}}},
			"p2": {ID: gocql.TimeUUID(), Name: "Clásico", Price: 900, IsActive: true,
				Sizes: []models.ProductSize{{Size: "42", Stock: 2}}},
		}},
		stubAddresses{address: &models.Address{ID: gocql.TimeUUID(), UserID: "user-1"}},
		stubCards{card: &models.Card{ID: gocql.TimeUUID(), UserID: "user-1"}},
		stubOrders{},
		stubCart{},
		stubGuard{},
		gateway,
		stubNotifier{},
		stubUsers{},
	)
	h := NewHandler(svc, nil, nil, nil, gateway)

	orig := invalidateProduct
	invalidateProduct = func(_ context.Context, productID string) {
		*invalidated = append(*invalidated, productID)
	}
	t.Cleanup(func() { invalidateProduct = orig })

	r := gin.New()
	r.POST("/api/orders", func(c *gin.Context) {
		c.Set("user_id", "user-1")
		c.Set("email", "user1@example.com")
	}, h.Checkout)
	return r
}

func postCheckout(t *testing.T, r *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// Après une vente le stock a bougé : le cache produit des articles achetés
// doit être invalidé pour que le catalogue ne serve pas un stock périmé.
func TestCheckoutInvalidatesPurchasedProductCache(t *testing.T) {
	var invalidated []string
	r := newCheckoutRouter(t, "succeeded", &invalidated)

	w := postCheckout(t, r, gin.H{
		"addressId": "a1",
		"cardId":    "c1",
		"items": []gin.H{
			{"productId": "p1", "size": "M", "quantity": 1},
			{"productId": "p2", "size": "42", "quantity": 2},
		},
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.ElementsMatch(t, []string{"p1", "p2"}, invalidated)
}

func TestCheckoutDeclinedPaymentLeavesProductCacheAlone(t *testing.T) {
	var invalidated []string
	r := newCheckoutRouter(t, "requires_payment_method", &invalidated)

	w := postCheckout(t, r, gin.H{
		"addressId": "a1",
		"cardId":    "c1",
		"items":     []gin.H{{"productId": "p1", "size": "M", "quantity": 1}},
	})

	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Empty(t, invalidated)
}
