package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sideways_back_end/internal/database"
	"sideways_back_end/internal/models"
)

// Le panier est un document JSON par utilisateur, expiré au bout de 30 jours
// d'inactivité (le TTL est rafraîchi à chaque écriture).
const cartTTL = 30 * 24 * time.Hour

func cartKey(userID string) string {
	return "cart:" + userID
}

// RedisCartStore stocke un panier par utilisateur dans Redis.
type RedisCartStore struct {
	client *redis.Client
}

func NewRedisCartStore(client *redis.Client) *RedisCartStore {
	return &RedisCartStore{client: client}
}

// NewDefaultCartStore utilise la connexion Redis globale.
func NewDefaultCartStore() *RedisCartStore {
	return &RedisCartStore{client: database.Redis}
}

// Get retourne le panier, vide si la clé n'existe pas. Le panier est
// normalisé (fusion des doublons) à chaque lecture.
func (s *RedisCartStore) Get(ctx context.Context, userID string) (*models.Cart, error) {
	raw, err := s.client.Get(ctx, cartKey(userID)).Result()
	if err == redis.Nil {
		return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lecture panier %s: %w", userID, err)
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("désérialisation panier %s: %w", userID, err)
	}
	cart.UserID = userID
	cart.Normalize()
	return &cart, nil
}

// Save réécrit le panier entier et rafraîchit le TTL. Un panier vide est
// simplement supprimé.
func (s *RedisCartStore) Save(ctx context.Context, cart *models.Cart) error {
	cart.Normalize()
	if len(cart.Items) == 0 {
		return s.Clear(ctx, cart.UserID)
	}

	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("sérialisation panier %s: %w", cart.UserID, err)
	}
	if err := s.client.Set(ctx, cartKey(cart.UserID), raw, cartTTL).Err(); err != nil {
		return fmt.Errorf("écriture panier %s: %w", cart.UserID, err)
	}
	return nil
}

// RemoveItems retire exactement les couples (produit, taille) passés — les
// items ajoutés entre temps survivent.
func (s *RedisCartStore) RemoveItems(ctx context.Context, userID string, keys []models.ItemKey) error {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	cart.RemoveAll(keys)
	return s.Save(ctx, cart)
}

// Clear supprime le panier.
func (s *RedisCartStore) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("suppression panier %s: %w", userID, err)
	}
	return nil
}
