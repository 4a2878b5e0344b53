package models

import (
	"time"

	"github.com/gocql/gocql"
)

// WishlistItem : la taille est optionnelle (chaîne vide = non précisée).
// La clé primaire Scylla (user_id, product_id, size) donne naturellement la
// sémantique "on garde le plus récent" : un INSERT sur la même clé écrase.
type WishlistItem struct {
	UserID    string     `json:"user_id" db:"user_id"`
	ProductID gocql.UUID `json:"product_id" db:"product_id"`
	Size      string     `json:"size,omitempty" db:"size"`
	Note      string     `json:"note,omitempty" db:"note"`
	AddedAt   time.Time  `json:"added_at" db:"added_at"`
}

type Wishlist struct {
	UserID string         `json:"user_id"`
	Items  []WishlistItem `json:"items"`
}
