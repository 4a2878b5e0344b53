package user

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"

	"sideways_back_end/internal/models"
)

type ctxKey string

// ProviderKey porte le nom du provider dans le contexte de la requête, pour
// que gothic le retrouve depuis son résolveur.
const ProviderKey ctxKey = "provider"

// 🟢 GET /api/auth/:provider
func BeginAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucun provider spécifié"})
		return
	}

	c.Request = c.Request.WithContext(
		context.WithValue(c.Request.Context(), ProviderKey, provider),
	)

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// 🟢 GET /api/auth/:provider/callback
// Retrouve ou crée le compte local lié au profil du provider, puis émet les
// mêmes tokens que le login classique.
func CallbackAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucun provider spécifié"})
		return
	}

	c.Request = c.Request.WithContext(
		context.WithValue(c.Request.Context(), ProviderKey, provider),
	)

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(gothUser.Email))
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le provider n'a pas fourni d'email"})
		return
	}

	u, err := users.FindByEmail(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	if u == nil {
		// L'email du provider est considéré vérifié : pas de mail de confirmation.
		u = &models.User{
			Email:      email,
			Role:       "customer",
			Provider:   provider,
			ProviderID: gothUser.UserID,
			IsVerified: true,
		}
		created, err := users.Create(c.Request.Context(), u)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
			return
		}
		if !created {
			// Course perdue sur l'email : on relit le compte gagnant.
			u, err = users.FindByEmail(c.Request.Context(), email)
			if err != nil || u == nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
				return
			}
		} else {
			log.Printf("✅ Compte créé via %s: %s", provider, email)
		}
	} else if u.Provider == "local" {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte existe déjà avec cet email, connectez-vous avec votre mot de passe"})
		return
	}

	issueTokens(c, u)
}
