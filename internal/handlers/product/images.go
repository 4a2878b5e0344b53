package product

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"sideways_back_end/internal/services"
)

// Taille max d'une image produit.
const maxImageSize = 5 << 20 // 5 MB

// 🟢 POST /api/admin/products/images (admin) — multipart "image".
func UploadProductImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier image requis"})
		return
	}
	if file.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image trop lourde (max 5 MB)"})
		return
	}

	contentType := file.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" && contentType != "image/webp" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format d'image non supporté"})
		return
	}

	url, err := services.UploadProductImage(c.Request.Context(), file)
	if err != nil {
		log.Printf("❌ Erreur upload image: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload image"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}
