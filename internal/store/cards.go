package store

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"sideways_back_end/internal/database"
	"sideways_back_end/internal/models"
)

// ScyllaCardStore persiste les cartes tokenisées (brand/last4/expiration
// uniquement, jamais le PAN ni le CVV) dans ks_users.
type ScyllaCardStore struct{}

func NewScyllaCardStore() *ScyllaCardStore {
	return &ScyllaCardStore{}
}

// FindByID retourne (nil, nil) si la carte n'existe pas.
func (s *ScyllaCardStore) FindByID(ctx context.Context, id string) (*models.Card, error) {
	cid, err := gocql.ParseUUID(id)
	if err != nil {
		return nil, nil
	}

	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	var c models.Card
	c.ID = cid
	err = session.Query(`SELECT user_id, brand, last4, exp_month, exp_year, first_name, last_name, created_at
		FROM cards WHERE card_id = ?`, cid).WithContext(ctx).
		Scan(&c.UserID, &c.Brand, &c.Last4, &c.ExpMonth, &c.ExpYear, &c.FirstName, &c.LastName, &c.CreatedAt)
	if err == gocql.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lecture carte %s: %w", id, err)
	}
	return &c, nil
}

// ListByUser retourne les cartes enregistrées de l'utilisateur.
func (s *ScyllaCardStore) ListByUser(ctx context.Context, userID string) ([]models.Card, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query("SELECT card_id FROM cards_by_user WHERE user_id = ?", userID).
		WithContext(ctx).Iter()

	var ids []gocql.UUID
	var id gocql.UUID
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("listing cartes de %s: %w", userID, err)
	}

	out := make([]models.Card, 0, len(ids))
	for _, id := range ids {
		c, err := s.FindByID(ctx, id.String())
		if err != nil {
			return nil, err
		}
		if c != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

// Create insère la carte déjà réduite à ses métadonnées.
func (s *ScyllaCardStore) Create(ctx context.Context, c *models.Card) error {
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}

	if c.ID == (gocql.UUID{}) {
		c.ID = gocql.TimeUUID()
	}
	c.CreatedAt = time.Now()

	err = session.Query(`INSERT INTO cards (card_id, user_id, brand, last4, exp_month, exp_year, first_name, last_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Brand, c.Last4, c.ExpMonth, c.ExpYear, c.FirstName, c.LastName, c.CreatedAt).
		WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("insertion carte: %w", err)
	}

	return session.Query("INSERT INTO cards_by_user (user_id, card_id) VALUES (?, ?)",
		c.UserID, c.ID).WithContext(ctx).Exec()
}

// Delete supprime la carte et son entrée d'index.
func (s *ScyllaCardStore) Delete(ctx context.Context, userID string, id gocql.UUID) error {
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}
	if err := session.Query("DELETE FROM cards WHERE card_id = ?", id).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("suppression carte %s: %w", id, err)
	}
	return session.Query("DELETE FROM cards_by_user WHERE user_id = ? AND card_id = ?",
		userID, id).WithContext(ctx).Exec()
}
