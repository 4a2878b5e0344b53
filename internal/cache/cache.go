package cache

import (
	"context"
	"encoding/json"
	"time"

	"sideways_back_end/internal/database"
	"sideways_back_end/internal/models"
)

const (
	UserCacheTTL     = 5 * time.Minute
	ProductCacheTTL  = 10 * time.Minute
	WishlistCacheTTL = 5 * time.Minute
)

// GetUser lit le cache utilisateur, (nil, false) en cas de miss.
func GetUser(ctx context.Context, userID string) (*models.User, bool) {
	data, err := database.Redis.Get(ctx, "user:"+userID).Result()
	if err != nil {
		return nil, false
	}
	var user models.User
	if json.Unmarshal([]byte(data), &user) != nil {
		return nil, false
	}
	return &user, true
}

// SetUser met l'utilisateur en cache. Échec silencieux : le cache est un
// raccourci, jamais une source de vérité.
func SetUser(ctx context.Context, user *models.User) {
	jsonData, err := json.Marshal(user)
	if err != nil {
		return
	}
	database.Redis.Set(ctx, "user:"+user.ID, jsonData, UserCacheTTL)
}

// InvalidateUser purge le cache après une mise à jour du compte.
func InvalidateUser(ctx context.Context, userID string) {
	database.Redis.Del(ctx, "user:"+userID)
}

// GetProduct lit le cache produit, (nil, false) en cas de miss.
func GetProduct(ctx context.Context, productID string) (*models.Product, bool) {
	data, err := database.Redis.Get(ctx, "product:"+productID).Result()
	if err != nil {
		return nil, false
	}
	var product models.Product
	if json.Unmarshal([]byte(data), &product) != nil {
		return nil, false
	}
	return &product, true
}

// SetProduct met le produit en cache, tailles et stock compris : toute vente
// passe par InvalidateProduct.
func SetProduct(ctx context.Context, product *models.Product) {
	jsonData, err := json.Marshal(product)
	if err != nil {
		return
	}
	database.Redis.Set(ctx, "product:"+product.ID.String(), jsonData, ProductCacheTTL)
}

// InvalidateProduct purge le cache après une vente ou une édition.
func InvalidateProduct(ctx context.Context, productID string) {
	database.Redis.Del(ctx, "product:"+productID)
}

// GetWishlist lit le cache wishlist, (nil, false) en cas de miss.
func GetWishlist(ctx context.Context, userID string) ([]models.WishlistItem, bool) {
	data, err := database.Redis.Get(ctx, "wishlist:"+userID).Result()
	if err != nil {
		return nil, false
	}
	var items []models.WishlistItem
	if json.Unmarshal([]byte(data), &items) != nil {
		return nil, false
	}
	return items, true
}

func SetWishlist(ctx context.Context, userID string, items []models.WishlistItem) {
	jsonData, err := json.Marshal(items)
	if err != nil {
		return
	}
	database.Redis.Set(ctx, "wishlist:"+userID, jsonData, WishlistCacheTTL)
}

// InvalidateWishlist purge le cache après un ajout ou un retrait.
func InvalidateWishlist(ctx context.Context, userID string) {
	database.Redis.Del(ctx, "wishlist:"+userID)
}
