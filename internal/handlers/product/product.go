package product

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"sideways_back_end/internal/cache"
	"sideways_back_end/internal/models"
	"sideways_back_end/internal/services"
	"sideways_back_end/internal/store"
	"sideways_back_end/internal/utils"
)

var products = store.NewScyllaProductStore()

//
// --- HANDLERS CATALOGUE ---
//

// 🟢 GET /api/products
func ListProducts(c *gin.Context) {
	results, err := products.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture catalogue"})
		return
	}
	if results == nil {
		results = []models.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"products": results})
}

// 🟢 GET /api/products/:id
func GetProduct(c *gin.Context) {
	id := c.Param("id")

	if p, ok := cache.GetProduct(c.Request.Context(), id); ok {
		c.JSON(http.StatusOK, p)
		return
	}

	p, err := products.FindByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
		return
	}
	if p == nil || !p.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	cache.SetProduct(c.Request.Context(), p)
	c.JSON(http.StatusOK, p)
}

// 🟢 GET /api/products/slug/:slug
func GetProductBySlug(c *gin.Context) {
	p, err := products.FindBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
		return
	}
	if p == nil || !p.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// 🟢 POST /api/admin/products (admin)
func CreateProduct(c *gin.Context) {
	var input struct {
		Name        string               `json:"name" binding:"required"`
		Description string               `json:"description"`
		Price       float64              `json:"price" binding:"required,gt=0"`
		Category    string               `json:"category" binding:"required"`
		ImageURL    string               `json:"imageUrl"`
		Sizes       []models.ProductSize `json:"sizes" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	for _, s := range input.Sizes {
		if s.Size == "" || s.Stock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Taille ou stock invalide"})
			return
		}
	}

	p := &models.Product{
		Name:        input.Name,
		Slug:        utils.Slugify(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		ImageURL:    input.ImageURL,
		Sizes:       input.Sizes,
		IsActive:    true,
	}

	created, err := products.Create(c.Request.Context(), p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit"})
		return
	}
	if !created {
		c.JSON(http.StatusConflict, gin.H{"error": "Un produit avec ce nom existe déjà"})
		return
	}

	services.IndexProduct(*p)
	log.Printf("✅ Produit créé: %s (%s)", p.Name, p.Slug)
	c.JSON(http.StatusCreated, p)
}

// 🟡 PUT /api/admin/products/:id (admin)
func UpdateProduct(c *gin.Context) {
	existing, err := products.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	var input struct {
		Name        string  `json:"name" binding:"required"`
		Description string  `json:"description"`
		Price       float64 `json:"price" binding:"required,gt=0"`
		Category    string  `json:"category" binding:"required"`
		ImageURL    string  `json:"imageUrl"`
		IsActive    *bool   `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	existing.Name = input.Name
	existing.Description = input.Description
	existing.Price = input.Price
	existing.Category = input.Category
	if input.ImageURL != "" {
		existing.ImageURL = input.ImageURL
	}
	if input.IsActive != nil {
		existing.IsActive = *input.IsActive
	}

	if err := products.Update(c.Request.Context(), existing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	cache.InvalidateProduct(c.Request.Context(), existing.ID.String())
	services.IndexProduct(*existing)
	c.JSON(http.StatusOK, existing)
}

// 🔴 DELETE /api/admin/products/:id (admin) — désactive, ne supprime jamais :
// les commandes existantes gardent leurs références.
func DeleteProduct(c *gin.Context) {
	id, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	if err := products.Deactivate(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur désactivation produit"})
		return
	}

	cache.InvalidateProduct(c.Request.Context(), id.String())
	services.RemoveProductFromIndex(id.String())
	log.Printf("🗑️ Produit désactivé: %s", id)
	c.JSON(http.StatusOK, gin.H{"message": "Produit retiré du catalogue"})
}
