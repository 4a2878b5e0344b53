package user

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"sideways_back_end/internal/models"
	"sideways_back_end/internal/store"
)

var (
	cartStore    = store.NewDefaultCartStore()
	productStore = store.NewScyllaProductStore()
)

//
// --- HANDLERS PANIER ---
// Un panier par utilisateur dans Redis, items identifiés par (produit, taille).
//

// 🟢 GET /api/cart
func GetCart(c *gin.Context) {
	userID := c.GetString("user_id")

	cart, err := cartStore.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}

	if pruneDeadLines(c.Request.Context(), cart) {
		if err := cartStore.Save(c.Request.Context(), cart); err != nil {
			log.Printf("⚠️ Erreur sauvegarde panier après purge: %v", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"items": cart.Items})
}

// pruneDeadLines retire les lignes dont le produit a disparu, a été désactivé
// ou n'a plus de stock pour la taille. En cas d'erreur de lecture la ligne est
// conservée : on ne purge jamais sur un doute.
func pruneDeadLines(ctx context.Context, cart *models.Cart) bool {
	changed := false
	kept := cart.Items[:0]
	for _, it := range cart.Items {
		product, err := productStore.FindByID(ctx, it.ProductID)
		if err != nil {
			kept = append(kept, it)
			continue
		}
		var ps *models.ProductSize
		if product != nil && product.IsActive {
			ps = product.FindSize(it.Size)
		}
		if ps == nil || ps.Stock <= 0 {
			changed = true
			continue
		}
		kept = append(kept, it)
	}
	cart.Items = kept
	return changed
}

// 🟢 POST /api/cart/prepare — payload de checkout : prix serveur, quantités
// bornées au stock courant. Purement indicatif, la vraie garde est la
// décrémentation atomique au moment du paiement.
func PrepareOrder(c *gin.Context) {
	userID := c.GetString("user_id")

	cart, err := cartStore.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}
	if len(cart.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Panier vide"})
		return
	}

	type line struct {
		ProductID string  `json:"productId"`
		Name      string  `json:"name"`
		Size      string  `json:"size"`
		Quantity  int     `json:"quantity"`
		Price     float64 `json:"price"`
	}
	var (
		lines []line
		total float64
	)
	for _, it := range cart.Items {
		product, err := productStore.FindByID(c.Request.Context(), it.ProductID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
			return
		}
		if product == nil || !product.IsActive {
			continue
		}
		ps := product.FindSize(it.Size)
		if ps == nil || ps.Stock <= 0 {
			continue
		}
		qty := it.Quantity
		if qty > ps.Stock {
			qty = ps.Stock
		}
		lines = append(lines, line{
			ProductID: it.ProductID,
			Name:      product.Name,
			Size:      ps.Size,
			Quantity:  qty,
			Price:     product.Price,
		})
		total += product.Price * float64(qty)
	}
	if len(lines) == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Plus rien de disponible dans le panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": lines, "total": total})
}

// 🟢 POST /api/cart
func AddToCart(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		ProductID string `json:"productId" binding:"required"`
		Size      string `json:"size" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	// Instantané produit : nom/prix/image figés dans la ligne de panier.
	product, err := productStore.FindByID(c.Request.Context(), input.ProductID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
		return
	}
	if product == nil || !product.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	ps := product.FindSize(input.Size)
	if ps == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Taille invalide pour ce produit"})
		return
	}
	if ps.Stock <= 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Plus de stock pour cette taille"})
		return
	}
	// Quantité bornée au stock courant, sans erreur : le checkout revalidera.
	qty := input.Quantity
	if qty > ps.Stock {
		qty = ps.Stock
	}

	cart, err := cartStore.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}

	cart.Upsert(models.CartItem{
		ProductID: input.ProductID,
		Size:      input.Size,
		Quantity:  qty,
		Name:      product.Name,
		Price:     product.Price,
		ImageURL:  product.ImageURL,
	})

	if err := cartStore.Save(c.Request.Context(), cart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": cart.Items})
}

// 🟡 PUT /api/cart/item — fixe la quantité exacte; 0 retire la ligne.
func UpdateCartItem(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		ProductID string `json:"productId" binding:"required"`
		Size      string `json:"size" binding:"required"`
		Quantity  *int   `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	cart, err := cartStore.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}

	cart.SetQuantity(models.ItemKey{ProductID: input.ProductID, Size: input.Size}, *input.Quantity)

	if err := cartStore.Save(c.Request.Context(), cart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": cart.Items})
}

// 🔴 DELETE /api/cart/item
func RemoveCartItem(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		ProductID string `json:"productId" binding:"required"`
		Size      string `json:"size" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	cart, err := cartStore.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}

	if !cart.Remove(models.ItemKey{ProductID: input.ProductID, Size: input.Size}) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article absent du panier"})
		return
	}

	if err := cartStore.Save(c.Request.Context(), cart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": cart.Items})
}

// 🔴 DELETE /api/cart
func ClearCart(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := cartStore.Clear(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression panier"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Panier vidé"})
}
