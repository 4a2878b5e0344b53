package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sideways_back_end/internal/models"
	"sideways_back_end/internal/store"
)

var orderStore = store.NewScyllaOrderStore()

//
// --- HANDLERS COMMANDES (côté client) ---
//

// 🟢 GET /api/orders — les plus récentes en premier.
func ListMyOrders(c *gin.Context) {
	userID := c.GetString("user_id")

	results, err := orderStore.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commandes"})
		return
	}
	if results == nil {
		results = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": results})
}

// 🟢 GET /api/orders/:id
func GetMyOrder(c *gin.Context) {
	userID := c.GetString("user_id")

	order, err := orderStore.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commande"})
		return
	}
	if order == nil || order.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}
	c.JSON(http.StatusOK, order)
}
