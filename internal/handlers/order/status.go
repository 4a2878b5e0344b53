package order

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sideways_back_end/internal/orders"
)

//
// --- ADMINISTRATION DES STATUTS ---
//

// 🟡 PUT /api/admin/orders/:id/status (admin)
func (h *Handler) UpdateStatus(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	updated, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), input.Status, actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// 🔴 DELETE /api/admin/orders/:id (admin) — purge définitive d'une commande
// terminée (Delivered ou Cancelled). Les commandes en cours sont refusées.
func (h *Handler) Purge(c *gin.Context) {
	result, err := h.svc.Purge(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Commande purgée",
		"orderId":     result.OrderID,
		"orderNumber": result.OrderNumber,
	})
}

func actorFrom(c *gin.Context) orders.Actor {
	return orders.Actor{
		UserID: c.GetString("user_id"),
		Admin:  c.GetString("role") == "admin",
	}
}
