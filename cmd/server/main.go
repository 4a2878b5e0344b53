package main

import (
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/facebook"
	"github.com/markbates/goth/providers/google"
	"github.com/stripe/stripe-go/v83"

	"sideways_back_end/internal/config"
	"sideways_back_end/internal/database"
	"sideways_back_end/internal/handlers/order"
	"sideways_back_end/internal/handlers/user"
	"sideways_back_end/internal/orders"
	"sideways_back_end/internal/payment"
	"sideways_back_end/internal/routes"
	"sideways_back_end/internal/store"
	"sideways_back_end/internal/utils"
)

func main() {
	config.Load()

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	if stripe.Key == "" {
		log.Fatal("❌ Impossible d'initialiser Stripe : clé manquante")
	}
	log.Println("✅ Stripe initialisé")

	database.ConnectDatabases()
	database.InitPreparedStatements()

	initOAuthProviders()

	orderHandler := buildOrderHandler()

	r := gin.Default()
	routes.RegisterRoutes(r, orderHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Serveur Sideways lancé sur le port", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("❌ Serveur arrêté:", err)
	}
}

// buildOrderHandler câble le workflow de commande : tous les collaborateurs
// sont injectés, rien n'est résolu via des globals dans le service lui-même.
func buildOrderHandler() *order.Handler {
	products := store.NewScyllaProductStore()
	addresses := store.NewScyllaAddressStore()
	cards := store.NewScyllaCardStore()
	orderStore := store.NewScyllaOrderStore()
	cart := store.NewDefaultCartStore()
	guard := store.NewDefaultCardGuard()
	gateway := payment.NewStripeGateway()
	mailer := utils.NewMailer()
	users := store.NewScyllaUserStore()
	refunds := store.NewScyllaRefundStore()

	svc := orders.NewService(products, addresses, cards, orderStore, cart, guard, gateway, mailer, users)
	return order.NewHandler(svc, orderStore, refunds, products, gateway)
}

func initOAuthProviders() {
	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		log.Fatal("❌ SESSION_SECRET manquant dans .env")
	}

	cookieStore := sessions.NewCookieStore([]byte(sessionSecret))
	cookieStore.MaxAge(86400 * 30)
	cookieStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   os.Getenv("GIN_MODE") == "release",
		SameSite: http.SameSiteLaxMode,
	}
	gothic.Store = cookieStore

	// Nos routes passent le provider en paramètre d'URL et les handlers le
	// déposent dans le contexte; gothic a besoin de ce résolveur pour le lire.
	gothic.GetProviderName = func(req *http.Request) (string, error) {
		if provider, ok := req.Context().Value(user.ProviderKey).(string); ok && provider != "" {
			return provider, nil
		}
		if provider := req.URL.Query().Get("provider"); provider != "" {
			return provider, nil
		}
		if provider := req.FormValue("provider"); provider != "" {
			return provider, nil
		}
		return "", errors.New("provider not found")
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	var providers []goth.Provider

	if id, secret := os.Getenv("GOOGLE_CLIENT_ID"), os.Getenv("GOOGLE_CLIENT_SECRET"); id != "" && secret != "" {
		providers = append(providers, google.New(id, secret, baseURL+"/api/auth/google/callback"))
		log.Println("✅ Google OAuth activé")
	}
	if id, secret := os.Getenv("FACEBOOK_CLIENT_ID"), os.Getenv("FACEBOOK_CLIENT_SECRET"); id != "" && secret != "" {
		providers = append(providers, facebook.New(id, secret, baseURL+"/api/auth/facebook/callback"))
		log.Println("✅ Facebook OAuth activé")
	}

	if len(providers) == 0 {
		log.Println("⚠️ Aucun provider OAuth configuré")
		return
	}

	goth.UseProviders(providers...)
	log.Printf("✅ %d OAuth provider(s) initialisé(s)", len(providers))
}
