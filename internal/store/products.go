package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gocql/gocql"

	"sideways_back_end/internal/database"
	"sideways_back_end/internal/models"
)

// Nombre de tentatives CAS avant d'abandonner un décrément contesté.
const maxStockCASRetries = 5

// ScyllaProductStore lit le catalogue dans ks_products. Le stock vit dans une
// table dédiée product_sizes (une ligne par couple produit/taille) pour que le
// décrément conditionnel LWT ne touche qu'une seule ligne.
type ScyllaProductStore struct{}

func NewScyllaProductStore() *ScyllaProductStore {
	return &ScyllaProductStore{}
}

// FindByID retourne le produit avec ses tailles, ou (nil, nil) s'il n'existe pas.
func (s *ScyllaProductStore) FindByID(ctx context.Context, id string) (*models.Product, error) {
	pid, err := gocql.ParseUUID(id)
	if err != nil {
		return nil, nil
	}

	session, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}

	var p models.Product
	p.ID = pid
	err = session.Query(`SELECT name, slug, description, price, category, image_url, is_active, created_at, updated_at
		FROM products WHERE product_id = ?`, pid).WithContext(ctx).
		Scan(&p.Name, &p.Slug, &p.Description, &p.Price, &p.Category, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err == gocql.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lecture produit %s: %w", id, err)
	}

	sizes, err := s.loadSizes(ctx, session, pid)
	if err != nil {
		return nil, err
	}
	p.Sizes = sizes
	return &p, nil
}

// FindBySlug passe par la table de lookup products_by_slug.
func (s *ScyllaProductStore) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	session, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}

	var pid gocql.UUID
	err = session.Query("SELECT product_id FROM products_by_slug WHERE slug = ?", slug).
		WithContext(ctx).Scan(&pid)
	if err == gocql.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup slug %s: %w", slug, err)
	}
	return s.FindByID(ctx, pid.String())
}

// List retourne tous les produits actifs (catalogue de petite taille, un full
// scan du keyspace produits est acceptable ici).
func (s *ScyllaProductStore) List(ctx context.Context) ([]models.Product, error) {
	session, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT product_id, name, slug, description, price, category, image_url, is_active, created_at, updated_at
		FROM products`).WithContext(ctx).Iter()

	var out []models.Product
	var p models.Product
	for iter.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Category, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt) {
		if !p.IsActive {
			continue
		}
		sizes, err := s.loadSizes(ctx, session, p.ID)
		if err != nil {
			iter.Close()
			return nil, err
		}
		p.Sizes = sizes
		out = append(out, p)
		p = models.Product{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("scan produits: %w", err)
	}
	return out, nil
}

// Create insère le produit et réserve son slug via LWT. Retourne false si le
// slug est déjà pris.
func (s *ScyllaProductStore) Create(ctx context.Context, p *models.Product) (bool, error) {
	session, err := database.GetProductsSession()
	if err != nil {
		return false, err
	}

	if p.ID == (gocql.UUID{}) {
		p.ID = gocql.TimeUUID()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	// Réservation du slug d'abord : c'est elle qui garantit l'unicité.
	applied, err := session.Query("INSERT INTO products_by_slug (slug, product_id) VALUES (?, ?) IF NOT EXISTS",
		p.Slug, p.ID).WithContext(ctx).ScanCAS()
	if err != nil {
		return false, fmt.Errorf("réservation slug %s: %w", p.Slug, err)
	}
	if !applied {
		return false, nil
	}

	err = session.Query(`INSERT INTO products (product_id, name, slug, description, price, category, image_url, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Slug, p.Description, p.Price, p.Category, p.ImageURL, p.IsActive, p.CreatedAt, p.UpdatedAt).
		WithContext(ctx).Exec()
	if err != nil {
		return false, fmt.Errorf("insertion produit: %w", err)
	}

	for _, size := range p.Sizes {
		if err := s.SetStock(ctx, p.ID, size.Size, size.Stock); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Update réécrit les champs éditables du produit (pas le slug, pas le stock).
func (s *ScyllaProductStore) Update(ctx context.Context, p *models.Product) error {
	session, err := database.GetProductsSession()
	if err != nil {
		return err
	}
	p.UpdatedAt = time.Now()
	return session.Query(`UPDATE products SET name = ?, description = ?, price = ?, category = ?, image_url = ?, is_active = ?, updated_at = ?
		WHERE product_id = ?`,
		p.Name, p.Description, p.Price, p.Category, p.ImageURL, p.IsActive, p.UpdatedAt, p.ID).
		WithContext(ctx).Exec()
}

// Deactivate retire le produit du catalogue sans effacer l'historique des
// commandes qui le référencent.
func (s *ScyllaProductStore) Deactivate(ctx context.Context, id gocql.UUID) error {
	session, err := database.GetProductsSession()
	if err != nil {
		return err
	}
	return session.Query("UPDATE products SET is_active = false, updated_at = ? WHERE product_id = ?",
		time.Now(), id).WithContext(ctx).Exec()
}

// SetStock fixe le stock absolu d'une taille (réassort admin).
func (s *ScyllaProductStore) SetStock(ctx context.Context, productID gocql.UUID, size string, stock int) error {
	session, err := database.GetProductsSession()
	if err != nil {
		return err
	}
	return session.Query("INSERT INTO product_sizes (product_id, size, stock) VALUES (?, ?, ?)",
		productID, size, stock).WithContext(ctx).Exec()
}

// DecrementStock retire qty unités du stock (produit, taille) de façon
// atomique : lecture puis UPDATE ... IF stock = valeur_lue, réessayé quelques
// fois en cas de course. Retourne false si le stock restant est insuffisant.
func (s *ScyllaProductStore) DecrementStock(ctx context.Context, productID, size string, qty int) (bool, error) {
	pid, err := gocql.ParseUUID(productID)
	if err != nil {
		return false, nil
	}

	session, err := database.GetProductsSession()
	if err != nil {
		return false, err
	}

	for attempt := 0; attempt < maxStockCASRetries; attempt++ {
		var current int
		err := session.Query("SELECT stock FROM product_sizes WHERE product_id = ? AND size = ?",
			pid, size).WithContext(ctx).Scan(&current)
		if err == gocql.ErrNotFound {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("lecture stock %s/%s: %w", productID, size, err)
		}
		if current < qty {
			return false, nil
		}

		applied, err := session.Query("UPDATE product_sizes SET stock = ? WHERE product_id = ? AND size = ? IF stock = ?",
			current-qty, pid, size, current).WithContext(ctx).ScanCAS(&current)
		if err != nil {
			return false, fmt.Errorf("décrément stock %s/%s: %w", productID, size, err)
		}
		if applied {
			return true, nil
		}
		// Quelqu'un est passé avant nous, on relit et on retente.
	}

	log.Printf("⚠️ Décrément stock abandonné après %d tentatives: %s/%s", maxStockCASRetries, productID, size)
	return false, nil
}

// RestoreStock ré-ajoute des unités (annulation admin, remboursement accepté).
// Même boucle CAS que le décrément, dans l'autre sens.
func (s *ScyllaProductStore) RestoreStock(ctx context.Context, productID, size string, qty int) error {
	pid, err := gocql.ParseUUID(productID)
	if err != nil {
		return fmt.Errorf("product_id invalide: %s", productID)
	}

	session, err := database.GetProductsSession()
	if err != nil {
		return err
	}

	for attempt := 0; attempt < maxStockCASRetries; attempt++ {
		var current int
		err := session.Query("SELECT stock FROM product_sizes WHERE product_id = ? AND size = ?",
			pid, size).WithContext(ctx).Scan(&current)
		if err != nil {
			return fmt.Errorf("lecture stock %s/%s: %w", productID, size, err)
		}

		applied, err := session.Query("UPDATE product_sizes SET stock = ? WHERE product_id = ? AND size = ? IF stock = ?",
			current+qty, pid, size, current).WithContext(ctx).ScanCAS(&current)
		if err != nil {
			return fmt.Errorf("restauration stock %s/%s: %w", productID, size, err)
		}
		if applied {
			return nil
		}
	}
	return fmt.Errorf("restauration stock %s/%s: contention persistante", productID, size)
}

func (s *ScyllaProductStore) loadSizes(ctx context.Context, session *gocql.Session, pid gocql.UUID) ([]models.ProductSize, error) {
	iter := session.Query("SELECT size, stock FROM product_sizes WHERE product_id = ?", pid).
		WithContext(ctx).Iter()

	var sizes []models.ProductSize
	var sz models.ProductSize
	for iter.Scan(&sz.Size, &sz.Stock) {
		sizes = append(sizes, sz)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture tailles %s: %w", pid, err)
	}
	return sizes, nil
}
