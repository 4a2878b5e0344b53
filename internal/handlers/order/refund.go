package order

import (
	"log"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sideways_back_end/internal/models"
	"sideways_back_end/internal/orders"
)

//
// --- REMBOURSEMENTS ---
// Le client dépose une demande; un admin l'approuve (remboursement Stripe +
// retour du stock) ou la rejette.
//

// 🟢 POST /api/orders/:id/refund
func (h *Handler) RequestRefund(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		Reason string `json:"reason" binding:"required,min=10,max=500"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	order, err := h.orders.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commande"})
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}
	if order.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette commande ne vous appartient pas"})
		return
	}

	if order.Status != string(orders.StatusPaid) && order.Status != string(orders.StatusShipped) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cette commande n'est pas éligible au remboursement"})
		return
	}

	existing, err := h.refunds.FindByOrder(c.Request.Context(), order.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture remboursements"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Une demande de remboursement existe déjà pour cette commande"})
		return
	}

	refund := &models.Refund{
		OrderID:      order.ID,
		UserID:       userID,
		Reason:       input.Reason,
		RefundAmount: order.TotalAmount,
	}
	if err := h.refunds.Create(c.Request.Context(), refund); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création demande"})
		return
	}

	log.Printf("📩 Demande de remboursement: commande %s (%.2f MXN)", order.OrderNumber, refund.RefundAmount)
	c.JSON(http.StatusCreated, refund)
}

// 🟡 PUT /api/admin/refunds/:id (admin) — {"approve": true|false}
func (h *Handler) ProcessRefund(c *gin.Context) {
	var input struct {
		Approve *bool `json:"approve" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	refund, err := h.refunds.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture demande"})
		return
	}
	if refund == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Demande introuvable"})
		return
	}
	if refund.Status != "pending" {
		c.JSON(http.StatusConflict, gin.H{"error": "Demande déjà traitée"})
		return
	}

	if !*input.Approve {
		refund.Status = "rejected"
		if err := h.refunds.UpdateStatus(c.Request.Context(), refund); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour demande"})
			return
		}
		log.Printf("❌ Remboursement rejeté: %s", refund.ID)
		c.JSON(http.StatusOK, gin.H{"message": "Demande rejetée", "status": "rejected"})
		return
	}

	order, err := h.orders.FindByID(c.Request.Context(), refund.OrderID.String())
	if err != nil || order == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commande"})
		return
	}

	amountMinor := int64(math.Round(refund.RefundAmount * 100))
	if err := h.gateway.Refund(c.Request.Context(), order.PaymentIntentID, amountMinor); err != nil {
		log.Printf("❌ Erreur remboursement Stripe: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur traitement remboursement"})
		return
	}

	refund.Status = "completed"
	if err := h.refunds.UpdateStatus(c.Request.Context(), refund); err != nil {
		log.Printf("⚠️ Erreur mise à jour demande %s: %v", refund.ID, err)
	}

	// La commande remboursée passe en Cancelled et le stock revient en rayon.
	order.Status = string(orders.StatusCancelled)
	order.IsCancelled = true
	order.IsRefunded = true
	order.CancelReason = "refund approved"
	order.StatusHistory = append(order.StatusHistory, models.StatusEntry{
		Status:    string(orders.StatusCancelled),
		Timestamp: time.Now(),
	})
	if err := h.orders.Update(c.Request.Context(), order); err != nil {
		log.Printf("⚠️ Erreur mise à jour commande %s: %v", order.OrderNumber, err)
	}

	for _, item := range order.Items {
		if err := h.products.RestoreStock(c.Request.Context(), item.ProductID, item.Size, item.Quantity); err != nil {
			log.Printf("⚠️ Erreur retour stock %s/%s: %v", item.ProductID, item.Size, err)
		}
	}

	log.Printf("✅ Remboursement traité: %s (commande %s)", refund.ID, order.OrderNumber)
	c.JSON(http.StatusOK, gin.H{"message": "Remboursement traité", "status": "completed"})
}
