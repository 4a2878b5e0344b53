package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"sideways_back_end/internal/models"
	"sideways_back_end/internal/store"
)

var addresses = store.NewScyllaAddressStore()

//
// --- HANDLERS ADRESSES ---
//

// 🟢 GET /api/addresses
func ListMyAddresses(c *gin.Context) {
	userID := c.GetString("user_id")

	results, err := addresses.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture adresses"})
		return
	}
	if results == nil {
		results = []models.Address{}
	}
	c.JSON(http.StatusOK, gin.H{"addresses": results})
}

// 🟢 POST /api/addresses
func CreateAddress(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		Name         string `json:"name" binding:"required"`
		Street       string `json:"street" binding:"required"`
		ExtNumber    string `json:"extNumber" binding:"required"`
		IntNumber    string `json:"intNumber"`
		Phone        string `json:"phone" binding:"required"`
		PostalCode   string `json:"postalCode" binding:"required,len=5"`
		Neighborhood string `json:"neighborhood" binding:"required"`
		Municipality string `json:"municipality" binding:"required"`
		State        string `json:"state" binding:"required"`
		IsDefault    bool   `json:"isDefault"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	a := &models.Address{
		UserID:       userID,
		Name:         input.Name,
		Street:       input.Street,
		ExtNumber:    input.ExtNumber,
		IntNumber:    input.IntNumber,
		Phone:        input.Phone,
		PostalCode:   input.PostalCode,
		Neighborhood: input.Neighborhood,
		Municipality: input.Municipality,
		State:        input.State,
		IsDefault:    input.IsDefault,
	}

	if err := addresses.Create(c.Request.Context(), a); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création adresse"})
		return
	}
	c.JSON(http.StatusCreated, a)
}

// 🟡 PUT /api/addresses/:id
func UpdateAddress(c *gin.Context) {
	userID := c.GetString("user_id")

	existing, err := addresses.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture adresse"})
		return
	}
	if existing == nil || existing.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Adresse introuvable"})
		return
	}

	var input models.Address
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	input.ID = existing.ID
	input.UserID = userID
	input.CreatedAt = existing.CreatedAt

	if err := addresses.Update(c.Request.Context(), &input); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour adresse"})
		return
	}
	c.JSON(http.StatusOK, input)
}

// 🔴 DELETE /api/addresses/:id
func DeleteAddress(c *gin.Context) {
	userID := c.GetString("user_id")

	existing, err := addresses.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture adresse"})
		return
	}
	if existing == nil || existing.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Adresse introuvable"})
		return
	}

	id, _ := gocql.ParseUUID(c.Param("id"))
	if err := addresses.Delete(c.Request.Context(), userID, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression adresse"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Adresse supprimée"})
}
