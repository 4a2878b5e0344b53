package store

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"sideways_back_end/internal/database"
	"sideways_back_end/internal/models"
)

// ScyllaWishlistStore persiste la wishlist dans ks_users. La clé primaire
// (user_id, product_id, size) donne la règle "on garde le plus récent" : un
// second ajout du même couple écrase simplement la ligne.
type ScyllaWishlistStore struct{}

func NewScyllaWishlistStore() *ScyllaWishlistStore {
	return &ScyllaWishlistStore{}
}

// Add insère ou écrase l'entrée (produit, taille).
func (s *ScyllaWishlistStore) Add(ctx context.Context, item *models.WishlistItem) error {
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}
	item.AddedAt = time.Now()
	return session.Query(`INSERT INTO wishlist (user_id, product_id, size, note, added_at)
		VALUES (?, ?, ?, ?, ?)`,
		item.UserID, item.ProductID, item.Size, item.Note, item.AddedAt).
		WithContext(ctx).Exec()
}

// List retourne la wishlist de l'utilisateur.
func (s *ScyllaWishlistStore) List(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query("SELECT product_id, size, note, added_at FROM wishlist WHERE user_id = ?", userID).
		WithContext(ctx).Iter()

	var out []models.WishlistItem
	var it models.WishlistItem
	it.UserID = userID
	for iter.Scan(&it.ProductID, &it.Size, &it.Note, &it.AddedAt) {
		out = append(out, it)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("listing wishlist de %s: %w", userID, err)
	}
	return out, nil
}

// Remove supprime l'entrée (produit, taille).
func (s *ScyllaWishlistStore) Remove(ctx context.Context, userID string, productID gocql.UUID, size string) error {
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}
	return session.Query("DELETE FROM wishlist WHERE user_id = ? AND product_id = ? AND size = ?",
		userID, productID, size).WithContext(ctx).Exec()
}
