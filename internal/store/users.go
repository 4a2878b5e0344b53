package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"sideways_back_end/internal/database"
	"sideways_back_end/internal/models"
)

// ScyllaUserStore persiste les comptes dans ks_users. L'unicité d'email est
// portée par la table de lookup users_by_email (INSERT ... IF NOT EXISTS).
type ScyllaUserStore struct{}

func NewScyllaUserStore() *ScyllaUserStore {
	return &ScyllaUserStore{}
}

// Create réserve l'email puis écrit le compte. Retourne false si l'email est
// déjà pris.
func (s *ScyllaUserStore) Create(ctx context.Context, u *models.User) (bool, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt = time.Now()

	claim, err := database.GetPreparedInsertUserByEmail()
	if err != nil {
		return false, err
	}
	applied, err := claim.Bind(u.Email, u.ID).WithContext(ctx).ScanCAS()
	if err != nil {
		return false, fmt.Errorf("réservation email %s: %w", u.Email, err)
	}
	if !applied {
		return false, nil
	}

	insert, err := database.GetPreparedInsertUser()
	if err != nil {
		return false, err
	}
	err = insert.Bind(u.ID, u.Email, u.Password, u.Role, u.Provider, u.ProviderID, u.IsVerified, u.VerificationToken, u.CreatedAt).
		WithContext(ctx).Exec()
	if err != nil {
		return false, fmt.Errorf("insertion utilisateur: %w", err)
	}
	return true, nil
}

// FindByID retourne (nil, nil) si le compte n'existe pas.
func (s *ScyllaUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	q, err := database.GetPreparedGetUserByID()
	if err != nil {
		return nil, err
	}

	var u models.User
	var lockUntil time.Time
	u.ID = id
	err = q.Bind(id).WithContext(ctx).
		Scan(&u.Email, &u.Password, &u.Role, &u.Provider, &u.ProviderID, &u.IsVerified, &u.VerificationToken, &lockUntil, &u.CreatedAt)
	if err == gocql.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lecture utilisateur %s: %w", id, err)
	}
	if !lockUntil.IsZero() {
		u.LockUntil = &lockUntil
	}
	return &u, nil
}

// FindByEmail passe par la table de lookup.
func (s *ScyllaUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	q, err := database.GetPreparedGetUserByEmail()
	if err != nil {
		return nil, err
	}

	var id string
	err = q.Bind(strings.ToLower(strings.TrimSpace(email))).WithContext(ctx).Scan(&id)
	if err == gocql.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	return s.FindByID(ctx, id)
}

// FindEmail résout l'adresse mail d'un utilisateur (envoi de notifications).
func (s *ScyllaUserStore) FindEmail(ctx context.Context, userID string) (string, error) {
	u, err := s.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", fmt.Errorf("utilisateur inconnu: %s", userID)
	}
	return u.Email, nil
}

// SetVerified marque le compte vérifié et invalide le token.
func (s *ScyllaUserStore) SetVerified(ctx context.Context, userID string) error {
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}
	return session.Query("UPDATE users SET is_verified = true, verification_token = '' WHERE user_id = ?",
		userID).WithContext(ctx).Exec()
}

// SetLockUntil pose (ou lève, avec le zéro) le verrou anti brute-force.
func (s *ScyllaUserStore) SetLockUntil(ctx context.Context, userID string, until time.Time) error {
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}
	return session.Query("UPDATE users SET lock_until = ? WHERE user_id = ?",
		until, userID).WithContext(ctx).Exec()
}

// Delete efface le compte et son entrée de lookup.
func (s *ScyllaUserStore) Delete(ctx context.Context, u *models.User) error {
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}
	if err := session.Query("DELETE FROM users_by_email WHERE email = ?", u.Email).
		WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("suppression lookup email: %w", err)
	}
	return session.Query("DELETE FROM users WHERE user_id = ?", u.ID).WithContext(ctx).Exec()
}
