package store

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"sideways_back_end/internal/database"
	"sideways_back_end/internal/models"
)

// ScyllaAddressStore persiste les adresses dans ks_users. Deux tables :
// addresses (par address_id) et addresses_by_user (index des ids par
// utilisateur) pour le listing.
type ScyllaAddressStore struct{}

func NewScyllaAddressStore() *ScyllaAddressStore {
	return &ScyllaAddressStore{}
}

// FindByID retourne (nil, nil) si l'adresse n'existe pas. Le contrôle de
// propriété se fait chez l'appelant via UserID.
func (s *ScyllaAddressStore) FindByID(ctx context.Context, id string) (*models.Address, error) {
	aid, err := gocql.ParseUUID(id)
	if err != nil {
		return nil, nil
	}

	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	var a models.Address
	a.ID = aid
	err = session.Query(`SELECT user_id, name, street, ext_number, int_number, phone, postal_code, neighborhood, municipality, state, is_default, created_at
		FROM addresses WHERE address_id = ?`, aid).WithContext(ctx).
		Scan(&a.UserID, &a.Name, &a.Street, &a.ExtNumber, &a.IntNumber, &a.Phone, &a.PostalCode, &a.Neighborhood, &a.Municipality, &a.State, &a.IsDefault, &a.CreatedAt)
	if err == gocql.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lecture adresse %s: %w", id, err)
	}
	return &a, nil
}

// ListByUser retourne les adresses de l'utilisateur.
func (s *ScyllaAddressStore) ListByUser(ctx context.Context, userID string) ([]models.Address, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query("SELECT address_id FROM addresses_by_user WHERE user_id = ?", userID).
		WithContext(ctx).Iter()

	var ids []gocql.UUID
	var id gocql.UUID
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("listing adresses de %s: %w", userID, err)
	}

	out := make([]models.Address, 0, len(ids))
	for _, id := range ids {
		a, err := s.FindByID(ctx, id.String())
		if err != nil {
			return nil, err
		}
		if a != nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

// Create insère l'adresse. Si is_default, les autres adresses du user sont
// repassées à false.
func (s *ScyllaAddressStore) Create(ctx context.Context, a *models.Address) error {
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}

	if a.ID == (gocql.UUID{}) {
		a.ID = gocql.TimeUUID()
	}
	a.CreatedAt = time.Now()

	if a.IsDefault {
		if err := s.clearDefault(ctx, a.UserID); err != nil {
			return err
		}
	}

	err = session.Query(`INSERT INTO addresses (address_id, user_id, name, street, ext_number, int_number, phone, postal_code, neighborhood, municipality, state, is_default, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Name, a.Street, a.ExtNumber, a.IntNumber, a.Phone, a.PostalCode, a.Neighborhood, a.Municipality, a.State, a.IsDefault, a.CreatedAt).
		WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("insertion adresse: %w", err)
	}

	return session.Query("INSERT INTO addresses_by_user (user_id, address_id) VALUES (?, ?)",
		a.UserID, a.ID).WithContext(ctx).Exec()
}

// Update réécrit les champs éditables de l'adresse.
func (s *ScyllaAddressStore) Update(ctx context.Context, a *models.Address) error {
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}

	if a.IsDefault {
		if err := s.clearDefault(ctx, a.UserID); err != nil {
			return err
		}
	}

	return session.Query(`UPDATE addresses SET name = ?, street = ?, ext_number = ?, int_number = ?, phone = ?, postal_code = ?, neighborhood = ?, municipality = ?, state = ?, is_default = ?
		WHERE address_id = ?`,
		a.Name, a.Street, a.ExtNumber, a.IntNumber, a.Phone, a.PostalCode, a.Neighborhood, a.Municipality, a.State, a.IsDefault, a.ID).
		WithContext(ctx).Exec()
}

// Delete supprime l'adresse et son entrée d'index.
func (s *ScyllaAddressStore) Delete(ctx context.Context, userID string, id gocql.UUID) error {
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}
	if err := session.Query("DELETE FROM addresses WHERE address_id = ?", id).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("suppression adresse %s: %w", id, err)
	}
	return session.Query("DELETE FROM addresses_by_user WHERE user_id = ? AND address_id = ?",
		userID, id).WithContext(ctx).Exec()
}

func (s *ScyllaAddressStore) clearDefault(ctx context.Context, userID string) error {
	existing, err := s.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}
	for _, a := range existing {
		if !a.IsDefault {
			continue
		}
		if err := session.Query("UPDATE addresses SET is_default = false WHERE address_id = ?", a.ID).
			WithContext(ctx).Exec(); err != nil {
			return err
		}
	}
	return nil
}
