package models

import (
	"strings"
	"time"
)

// Cart est stocké en JSON dans Redis sous la clé cart:<userID> (un panier par
// utilisateur). Les items sont identifiés par le couple (product_id, size).
type Cart struct {
	UserID string     `json:"user_id"`
	Items  []CartItem `json:"items"`
}

type CartItem struct {
	ProductID string    `json:"product_id"`
	Size      string    `json:"size"`
	Quantity  int       `json:"quantity"`
	Name      string    `json:"name,omitempty"`
	Price     float64   `json:"price,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	AddedAt   time.Time `json:"added_at"`
}

// ItemKey identifie un item de panier/commande.
type ItemKey struct {
	ProductID string
	Size      string
}

func (k ItemKey) normalized() ItemKey {
	k.Size = strings.TrimSpace(k.Size)
	return k
}

// Normalize déduplique les items par (product_id, size) en sommant les
// quantités, et supprime toute ligne dont la quantité résultante est <= 0.
func (c *Cart) Normalize() {
	merged := make([]CartItem, 0, len(c.Items))
	index := make(map[ItemKey]int)

	for _, it := range c.Items {
		it.Size = strings.TrimSpace(it.Size)
		key := ItemKey{ProductID: it.ProductID, Size: it.Size}
		if i, ok := index[key]; ok {
			merged[i].Quantity += it.Quantity
			continue
		}
		index[key] = len(merged)
		merged = append(merged, it)
	}

	kept := merged[:0]
	for _, it := range merged {
		if it.Quantity > 0 {
			kept = append(kept, it)
		}
	}
	c.Items = kept
}

// Upsert ajoute une quantité à l'item (product, size), en le créant au besoin.
func (c *Cart) Upsert(item CartItem) {
	item.Size = strings.TrimSpace(item.Size)
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now()
	}
	c.Items = append(c.Items, item)
	c.Normalize()
}

// SetQuantity fixe la quantité exacte d'un item; <= 0 le supprime.
func (c *Cart) SetQuantity(key ItemKey, quantity int) {
	key = key.normalized()
	for i := range c.Items {
		if c.Items[i].ProductID == key.ProductID && c.Items[i].Size == key.Size {
			c.Items[i].Quantity = quantity
			break
		}
	}
	c.Normalize()
}

// Remove supprime l'item (product, size). Retourne true si quelque chose a été enlevé.
func (c *Cart) Remove(key ItemKey) bool {
	key = key.normalized()
	before := len(c.Items)
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.ProductID == key.ProductID && strings.TrimSpace(it.Size) == key.Size {
			continue
		}
		kept = append(kept, it)
	}
	c.Items = kept
	return len(c.Items) != before
}

// RemoveAll retire exactement les couples (product, size) achetés — pas le
// panier entier, les items ajoutés entre temps survivent.
func (c *Cart) RemoveAll(keys []ItemKey) {
	purchased := make(map[ItemKey]bool, len(keys))
	for _, k := range keys {
		purchased[k.normalized()] = true
	}
	kept := c.Items[:0]
	for _, it := range c.Items {
		if purchased[ItemKey{ProductID: it.ProductID, Size: strings.TrimSpace(it.Size)}] {
			continue
		}
		kept = append(kept, it)
	}
	c.Items = kept
}
