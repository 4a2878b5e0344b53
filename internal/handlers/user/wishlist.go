package user

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"sideways_back_end/internal/cache"
	"sideways_back_end/internal/models"
	"sideways_back_end/internal/store"
)

var wishlist = store.NewScyllaWishlistStore()

//
// --- HANDLERS WISHLIST ---
// La taille est optionnelle. Re-ajouter un couple (produit, taille) écrase
// l'entrée existante : on garde la plus récente.
//

// 🟢 GET /api/wishlist
func GetWishlist(c *gin.Context) {
	userID := c.GetString("user_id")

	if items, ok := cache.GetWishlist(c.Request.Context(), userID); ok {
		c.JSON(http.StatusOK, gin.H{"items": items})
		return
	}

	items, err := wishlist.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture wishlist"})
		return
	}
	if items == nil {
		items = []models.WishlistItem{}
	}
	cache.SetWishlist(c.Request.Context(), userID, items)
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// 🟢 POST /api/wishlist
func AddToWishlist(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		ProductID string `json:"productId" binding:"required"`
		Size      string `json:"size"`
		Note      string `json:"note" binding:"max=200"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	product, err := productStore.FindByID(c.Request.Context(), input.ProductID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
		return
	}
	if product == nil || !product.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	size := strings.TrimSpace(input.Size)
	if size != "" && product.FindSize(size) == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Taille invalide pour ce produit"})
		return
	}

	item := &models.WishlistItem{
		UserID:    userID,
		ProductID: product.ID,
		Size:      size,
		Note:      input.Note,
	}
	if err := wishlist.Add(c.Request.Context(), item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ajout wishlist"})
		return
	}
	cache.InvalidateWishlist(c.Request.Context(), userID)
	c.JSON(http.StatusCreated, item)
}

// 🔴 DELETE /api/wishlist/:productId?size=...
func RemoveFromWishlist(c *gin.Context) {
	userID := c.GetString("user_id")

	pid, err := gocql.ParseUUID(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	size := strings.TrimSpace(c.Query("size"))
	if err := wishlist.Remove(c.Request.Context(), userID, pid, size); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression wishlist"})
		return
	}
	cache.InvalidateWishlist(c.Request.Context(), userID)
	c.JSON(http.StatusOK, gin.H{"message": "Retiré de la wishlist"})
}

// 🟢 POST /api/wishlist/:productId/move-to-cart?size=...
// Bascule l'entrée vers le panier (quantité 1) puis la retire de la wishlist.
func MoveToCart(c *gin.Context) {
	userID := c.GetString("user_id")

	pid, err := gocql.ParseUUID(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}
	size := strings.TrimSpace(c.Query("size"))

	product, err := productStore.FindByID(c.Request.Context(), pid.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
		return
	}
	if product == nil || !product.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	// Sans taille mémorisée il en faut une pour entrer au panier.
	ps := product.FindSize(size)
	if ps == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Taille requise pour ajouter au panier"})
		return
	}
	if ps.Stock <= 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Plus de stock pour cette taille"})
		return
	}

	cart, err := cartStore.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}
	cart.Upsert(models.CartItem{
		ProductID: pid.String(),
		Size:      ps.Size,
		Quantity:  1,
		Name:      product.Name,
		Price:     product.Price,
		ImageURL:  product.ImageURL,
	})
	if err := cartStore.Save(c.Request.Context(), cart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
		return
	}

	if err := wishlist.Remove(c.Request.Context(), userID, pid, size); err != nil {
		log.Printf("⚠️ Erreur retrait wishlist après bascule: %v", err)
	}
	cache.InvalidateWishlist(c.Request.Context(), userID)

	c.JSON(http.StatusOK, gin.H{"items": cart.Items})
}
