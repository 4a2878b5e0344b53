package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"sideways_back_end/internal/cache"
	"sideways_back_end/internal/database"
	"sideways_back_end/internal/models"
	"sideways_back_end/internal/store"
	"sideways_back_end/internal/utils"
)

var (
	users  = store.NewScyllaUserStore()
	mailer = utils.NewMailer()
)

// Verrou anti brute-force au niveau du compte, en plus du rate limit par IP :
// après maxLoginFailures mots de passe faux, lock_until est posé en base.
const (
	maxLoginFailures = 5
	accountLockTime  = 15 * time.Minute
)

// accountLocked dit si le verrou du compte est encore actif.
func accountLocked(u *models.User, now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

// registerLoginFailure compte les échecs de mot de passe (compteur Redis
// aligné sur la durée du verrou) et pose lock_until au-delà du seuil.
func registerLoginFailure(ctx context.Context, u *models.User) {
	key := "login_failures:" + u.ID
	failures, err := database.Redis.Incr(ctx, key).Result()
	if err != nil {
		return
	}
	database.Redis.Expire(ctx, key, accountLockTime)

	if failures < maxLoginFailures {
		return
	}
	if err := users.SetLockUntil(ctx, u.ID, time.Now().Add(accountLockTime)); err != nil {
		log.Printf("⚠️ Erreur pose du verrou sur %s: %v", u.Email, err)
		return
	}
	database.Redis.Del(ctx, key)
	cache.InvalidateUser(ctx, u.ID)
	log.Printf("🔒 Compte bloqué %v après %d échecs: %s", accountLockTime, failures, u.Email)
}

func clearLoginFailures(ctx context.Context, userID string) {
	database.Redis.Del(ctx, "login_failures:"+userID)
}

// ================== AUTH LOCALE ==================

// 🟢 POST /api/auth/register
func Register(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	token := randomToken()
	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	u := &models.User{
		Email:             strings.ToLower(strings.TrimSpace(input.Email)),
		Password:          hashed,
		Role:              "customer",
		Provider:          "local",
		VerificationToken: token,
	}

	created, err := users.Create(c.Request.Context(), u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}
	if !created {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte avec cet email existe déjà"})
		return
	}

	// Mail de vérification non bloquant
	go func(email, token string) {
		if err := mailer.VerificationEmail(email, token); err != nil {
			log.Printf("⚠️ Erreur envoi mail de vérification à %s: %v", email, err)
		}
	}(u.Email, token)

	c.JSON(http.StatusCreated, gin.H{
		"userId":  u.ID,
		"email":   u.Email,
		"message": "Compte créé. Vérifiez votre boîte mail pour activer votre compte",
	})
}

// 🟢 GET /api/auth/verify?token=...&email=...
func VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	email := c.Query("email")
	if token == "" || email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token ou email manquant"})
		return
	}

	u, err := users.FindByEmail(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vérification"})
		return
	}
	if u == nil || u.VerificationToken == "" || u.VerificationToken != token {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token de vérification invalide"})
		return
	}

	if err := users.SetVerified(c.Request.Context(), u.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vérification"})
		return
	}
	cache.InvalidateUser(c.Request.Context(), u.ID)

	// Petite page HTML de confirmation, le front n'est pas requis ici.
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, `<!DOCTYPE html>
<html lang="es"><body style="font-family: Arial, sans-serif; text-align: center; padding: 60px;">
<h2>✅ Cuenta verificada</h2>
<p>Ya puedes iniciar sesión en Sideways.</p>
</body></html>`)
}

// 🟢 POST /api/auth/login
func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	u, err := users.FindByEmail(c.Request.Context(), input.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion"})
		return
	}
	if u == nil || u.Provider != "local" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	if accountLocked(u, time.Now()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Compte temporairement bloqué. Réessayez plus tard"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, u.Password)
	if err != nil || !ok {
		registerLoginFailure(c.Request.Context(), u)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	if !u.IsVerified {
		c.JSON(http.StatusForbidden, gin.H{"error": "Compte non vérifié. Vérifiez votre boîte mail"})
		return
	}

	clearLoginFailures(c.Request.Context(), u.ID)
	issueTokens(c, u)
}

// 🟢 POST /api/auth/refresh — le refresh token vit en cookie httpOnly.
func Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie("refresh_token")
	if err != nil || refreshToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token manquant"})
		return
	}

	claims, err := utils.ParseToken(refreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token invalide"})
		return
	}
	if t, _ := claims["type"].(string); t != "refresh" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token invalide"})
		return
	}

	userID, _ := claims["user_id"].(string)
	u, err := users.FindByID(c.Request.Context(), userID)
	if err != nil || u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	issueTokens(c, u)
}

// 🟢 POST /api/auth/logout
func Logout(c *gin.Context) {
	c.SetCookie("refresh_token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Déconnecté"})
}

// 🟢 GET /api/me
func Me(c *gin.Context) {
	userID := c.GetString("user_id")

	if u, ok := cache.GetUser(c.Request.Context(), userID); ok {
		c.JSON(http.StatusOK, u)
		return
	}

	u, err := users.FindByID(c.Request.Context(), userID)
	if err != nil || u == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}
	cache.SetUser(c.Request.Context(), u)
	c.JSON(http.StatusOK, u)
}

// 🔴 DELETE /api/me — suppression du compte connecté.
func DeleteAccount(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		ConfirmDeletion bool `json:"confirmDeletion"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || !input.ConfirmDeletion {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Confirmation explicite requise"})
		return
	}

	u, err := users.FindByID(c.Request.Context(), userID)
	if err != nil || u == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	if err := users.Delete(c.Request.Context(), u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression compte"})
		return
	}
	cache.InvalidateUser(c.Request.Context(), userID)

	log.Printf("🗑️ Compte supprimé: %s", u.Email)
	c.JSON(http.StatusOK, gin.H{"message": "Compte supprimé"})
}

// 🔴 DELETE /api/admin/users (admin) — suppression d'un compte par email.
func DeleteUserByEmail(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email invalide"})
		return
	}

	u, err := users.FindByEmail(c.Request.Context(), input.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	if err := users.Delete(c.Request.Context(), u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression compte"})
		return
	}
	cache.InvalidateUser(c.Request.Context(), u.ID)

	log.Printf("🗑️ Compte supprimé par un admin: %s", u.Email)
	c.JSON(http.StatusOK, gin.H{"message": "Compte supprimé"})
}

func issueTokens(c *gin.Context, u *models.User) {
	token, err := utils.GenerateJWT(*u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}
	refresh, err := utils.GenerateRefreshToken(*u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	c.SetCookie("refresh_token", refresh, int((7 * 24 * time.Hour).Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"userId": u.ID,
		"email":  u.Email,
		"role":   u.Role,
	})
}

func randomToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand indisponible: " + err.Error())
	}
	return hex.EncodeToString(b)
}
