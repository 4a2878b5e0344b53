package product

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"sideways_back_end/internal/cache"
)

// 🟡 PUT /api/admin/products/:id/stock (admin) — réassort : fixe le stock absolu
// d'une taille. Les ventes passent par le décrément conditionnel, jamais par
// cette route.
func SetStock(c *gin.Context) {
	id, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var input struct {
		Size  string `json:"size" binding:"required"`
		Stock *int   `json:"stock" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || *input.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	existing, err := products.FindByID(c.Request.Context(), id.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	if err := products.SetStock(c.Request.Context(), id, input.Size, *input.Stock); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour stock"})
		return
	}

	cache.InvalidateProduct(c.Request.Context(), id.String())
	log.Printf("📦 Stock %s/%s fixé à %d", id, input.Size, *input.Stock)
	c.JSON(http.StatusOK, gin.H{"message": "Stock mis à jour"})
}
