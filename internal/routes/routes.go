package routes

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"sideways_back_end/internal/handlers/order"
	"sideways_back_end/internal/handlers/product"
	"sideways_back_end/internal/handlers/user"
	"sideways_back_end/internal/middleware"
)

// RegisterRoutes monte toutes les routes de l'API. Les handlers de commande
// arrivent déjà câblés (service + stores injectés), le reste du site utilise
// les stores du paquet.
func RegisterRoutes(r *gin.Engine, orderHandler *order.Handler) {
	r.Use(corsConfig())
	r.Use(middleware.APIRateLimit())

	api := r.Group("/api")

	// --- Public ---
	auth := api.Group("/auth")
	{
		auth.POST("/register", middleware.RegisterRateLimit(), user.Register)
		auth.POST("/login", middleware.LoginRateLimit(), user.Login)
		auth.GET("/verify", user.VerifyEmail)
		auth.POST("/refresh", user.Refresh)
		auth.POST("/logout", user.Logout)

		// OAuth (Google, Facebook)
		auth.GET("/:provider", user.BeginAuth)
		auth.GET("/:provider/callback", user.CallbackAuth)
	}

	products := api.Group("/products")
	{
		products.GET("", product.ListProducts)
		products.GET("/search", middleware.SearchRateLimit(), product.SearchProducts)
		products.GET("/slug/:slug", product.GetProductBySlug)
		products.GET("/:id", product.GetProduct)
	}

	// --- Connecté ---
	authed := api.Group("")
	authed.Use(middleware.AuthRequired())
	{
		authed.GET("/me", user.Me)
		authed.DELETE("/me", user.DeleteAccount)

		cart := authed.Group("/cart", middleware.CartRateLimit())
		{
			cart.GET("", user.GetCart)
			cart.POST("", user.AddToCart)
			cart.POST("/prepare", user.PrepareOrder)
			cart.PUT("/item", user.UpdateCartItem)
			cart.DELETE("/item", user.RemoveCartItem)
			cart.DELETE("", user.ClearCart)
		}

		wishlist := authed.Group("/wishlist")
		{
			wishlist.GET("", user.GetWishlist)
			wishlist.POST("", user.AddToWishlist)
			wishlist.POST("/:productId/move-to-cart", user.MoveToCart)
			wishlist.DELETE("/:productId", user.RemoveFromWishlist)
		}

		addresses := authed.Group("/addresses")
		{
			addresses.GET("", user.ListMyAddresses)
			addresses.POST("", user.CreateAddress)
			addresses.PUT("/:id", user.UpdateAddress)
			addresses.DELETE("/:id", user.DeleteAddress)
		}

		cards := authed.Group("/cards")
		{
			cards.GET("", user.ListMyCards)
			cards.POST("", user.AddCard)
			cards.DELETE("/:id", user.DeleteCard)
		}

		ordersGroup := authed.Group("/orders")
		{
			ordersGroup.GET("", user.ListMyOrders)
			ordersGroup.GET("/:id", user.GetMyOrder)
			ordersGroup.POST("", middleware.CheckoutRateLimit(), orderHandler.Checkout)
			ordersGroup.POST("/:id/refund", orderHandler.RequestRefund)
		}
	}

	// --- Admin ---
	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.RequireAdmin)
	{
		admin.POST("/products", product.CreateProduct)
		admin.PUT("/products/:id", product.UpdateProduct)
		admin.DELETE("/products/:id", product.DeleteProduct)
		admin.PUT("/products/:id/stock", product.SetStock)
		admin.POST("/products/images", product.UploadProductImage)

		admin.DELETE("/users", user.DeleteUserByEmail)

		admin.PUT("/orders/:id/status", orderHandler.UpdateStatus)
		admin.DELETE("/orders/:id", orderHandler.Purge)
		admin.PUT("/refunds/:id", orderHandler.ProcessRefund)
	}
}

func corsConfig() gin.HandlerFunc {
	origins := []string{"http://localhost:3000"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
