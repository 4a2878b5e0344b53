package user

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"sideways_back_end/internal/models"
	"sideways_back_end/internal/store"
)

var cards = store.NewScyllaCardStore()

//
// --- HANDLERS CARTES ---
// Le numéro complet et le CVV sont validés à la volée puis jetés : seules les
// métadonnées (brand, last4, expiration) descendent en base.
//

// 🟢 GET /api/cards
func ListMyCards(c *gin.Context) {
	userID := c.GetString("user_id")

	results, err := cards.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture cartes"})
		return
	}
	if results == nil {
		results = []models.Card{}
	}
	c.JSON(http.StatusOK, gin.H{"cards": results})
}

// 🟢 POST /api/cards
func AddCard(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		Number    string `json:"number" binding:"required"`
		CVV       string `json:"cvv" binding:"required,min=3,max=4"`
		ExpMonth  int    `json:"expMonth" binding:"required,min=1,max=12"`
		ExpYear   int    `json:"expYear" binding:"required"`
		FirstName string `json:"firstName" binding:"required"`
		LastName  string `json:"lastName" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	number := strings.ReplaceAll(strings.ReplaceAll(input.Number, " ", ""), "-", "")
	if !luhnValid(number) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Numéro de carte invalide"})
		return
	}

	now := time.Now()
	if input.ExpYear < now.Year() || (input.ExpYear == now.Year() && input.ExpMonth < int(now.Month())) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Carte expirée"})
		return
	}

	last4 := number[len(number)-4:]

	// Même last4 + même expiration = carte déjà enregistrée.
	existing, err := cards.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture cartes"})
		return
	}
	for _, cc := range existing {
		if cc.Last4 == last4 && cc.ExpMonth == input.ExpMonth && cc.ExpYear == input.ExpYear {
			c.JSON(http.StatusConflict, gin.H{"error": "Cette carte est déjà enregistrée"})
			return
		}
	}

	card := &models.Card{
		UserID:    userID,
		Brand:     cardBrand(number),
		Last4:     last4,
		ExpMonth:  input.ExpMonth,
		ExpYear:   input.ExpYear,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	}

	if err := cards.Create(c.Request.Context(), card); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement carte"})
		return
	}
	c.JSON(http.StatusCreated, card)
}

// 🔴 DELETE /api/cards/:id
func DeleteCard(c *gin.Context) {
	userID := c.GetString("user_id")

	existing, err := cards.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture carte"})
		return
	}
	if existing == nil || existing.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Carte introuvable"})
		return
	}

	id, _ := gocql.ParseUUID(c.Param("id"))
	if err := cards.Delete(c.Request.Context(), userID, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression carte"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Carte supprimée"})
}

// luhnValid vérifie la somme de Luhn du numéro de carte.
func luhnValid(number string) bool {
	if len(number) < 12 || len(number) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := number[i]
		if d < '0' || d > '9' {
			return false
		}
		n := int(d - '0')
		if double {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		double = !double
	}
	return sum%10 == 0
}

func cardBrand(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return "visa"
	case strings.HasPrefix(number, "5"), strings.HasPrefix(number, "2"):
		return "mastercard"
	case strings.HasPrefix(number, "34"), strings.HasPrefix(number, "37"):
		return "amex"
	default:
		return "carte"
	}
}
