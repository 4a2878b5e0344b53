package models

import (
	"strings"
	"time"

	"github.com/gocql/gocql"
)

type Product struct {
	ID          gocql.UUID    `json:"id" db:"product_id"`
	Name        string        `json:"name" db:"name"`
	Slug        string        `json:"slug" db:"slug"`
	Description string        `json:"description" db:"description"`
	Price       float64       `json:"price" db:"price"`
	Category    string        `json:"category" db:"category"`
	ImageURL    string        `json:"image_url" db:"image_url"`
	Sizes       []ProductSize `json:"sizes"`
	IsActive    bool          `json:"is_active" db:"is_active"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// ProductSize est le compteur de stock pour une taille donnée.
// Une ligne par (product_id, size) dans ks_products.product_sizes.
type ProductSize struct {
	Size  string `json:"size" db:"size"`
	Stock int    `json:"stock" db:"stock"`
}

// FindSize cherche une taille par correspondance exacte (après trim).
func (p *Product) FindSize(size string) *ProductSize {
	want := strings.TrimSpace(size)
	for i := range p.Sizes {
		if p.Sizes[i].Size == want {
			return &p.Sizes[i]
		}
	}
	return nil
}
