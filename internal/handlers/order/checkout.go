package order

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sideways_back_end/internal/cache"
	"sideways_back_end/internal/orders"
	"sideways_back_end/internal/store"
)

// Substituable en test : la vente a consommé du stock, le cache produit des
// articles achetés doit sauter pour que le catalogue reflète le stock réel.
var invalidateProduct = cache.InvalidateProduct

// Handler regroupe les routes commandes. Tout est injecté au démarrage
// (voir cmd/server) pour que les collaborateurs soient substituables.
type Handler struct {
	svc      *orders.Service
	orders   *store.ScyllaOrderStore
	refunds  *store.ScyllaRefundStore
	products *store.ScyllaProductStore
	gateway  orders.Gateway
}

func NewHandler(
	svc *orders.Service,
	orderStore *store.ScyllaOrderStore,
	refunds *store.ScyllaRefundStore,
	products *store.ScyllaProductStore,
	gateway orders.Gateway,
) *Handler {
	return &Handler{
		svc:      svc,
		orders:   orderStore,
		refunds:  refunds,
		products: products,
		gateway:  gateway,
	}
}

// 🟢 POST /api/orders
func (h *Handler) Checkout(c *gin.Context) {
	var input struct {
		AddressID string            `json:"addressId" binding:"required"`
		CardID    string            `json:"cardId" binding:"required"`
		Items     []orders.LineItem `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	order, err := h.svc.CreateOrder(c.Request.Context(), orders.CreateOrderInput{
		UserID:    c.GetString("user_id"),
		UserEmail: c.GetString("email"),
		AddressID: input.AddressID,
		CardID:    input.CardID,
		Items:     input.Items,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	for _, item := range order.Items {
		invalidateProduct(c.Request.Context(), item.ProductID)
	}

	c.JSON(http.StatusCreated, order)
}

// writeError traduit l'erreur typée du workflow en statut HTTP.
func writeError(c *gin.Context, err error) {
	var status int
	switch orders.KindOf(err) {
	case orders.KindInvalidRequest, orders.KindInsufficientStock, orders.KindPaymentFailed:
		status = http.StatusBadRequest
	case orders.KindForbidden:
		status = http.StatusForbidden
	case orders.KindNotFound:
		status = http.StatusNotFound
	case orders.KindRateLimited:
		status = http.StatusTooManyRequests
	case orders.KindConflict:
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
	}

	c.JSON(status, gin.H{"error": orders.PublicMessage(err)})
}
