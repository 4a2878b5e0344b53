package store

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"sideways_back_end/internal/database"
	"sideways_back_end/internal/models"
)

// ScyllaRefundStore persiste les demandes de remboursement dans ks_orders.
type ScyllaRefundStore struct{}

func NewScyllaRefundStore() *ScyllaRefundStore {
	return &ScyllaRefundStore{}
}

func (s *ScyllaRefundStore) Create(ctx context.Context, r *models.Refund) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	if r.ID == (gocql.UUID{}) {
		r.ID = gocql.TimeUUID()
	}
	r.CreatedAt = time.Now()
	if r.Status == "" {
		r.Status = "pending"
	}

	err = session.Query(`INSERT INTO refunds (refund_id, order_id, user_id, reason, status, refund_amount, stripe_refund_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.OrderID, r.UserID, r.Reason, r.Status, r.RefundAmount, r.StripeRefundID, r.CreatedAt).
		WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("insertion demande de remboursement: %w", err)
	}

	return session.Query("INSERT INTO refunds_by_order (order_id, refund_id) VALUES (?, ?)",
		r.OrderID, r.ID).WithContext(ctx).Exec()
}

// FindByID retourne (nil, nil) si la demande n'existe pas.
func (s *ScyllaRefundStore) FindByID(ctx context.Context, id string) (*models.Refund, error) {
	rid, err := gocql.ParseUUID(id)
	if err != nil {
		return nil, nil
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var r models.Refund
	var updatedAt time.Time
	r.ID = rid
	err = session.Query(`SELECT order_id, user_id, reason, status, refund_amount, stripe_refund_id, created_at, updated_at
		FROM refunds WHERE refund_id = ?`, rid).WithContext(ctx).
		Scan(&r.OrderID, &r.UserID, &r.Reason, &r.Status, &r.RefundAmount, &r.StripeRefundID, &r.CreatedAt, &updatedAt)
	if err == gocql.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lecture remboursement %s: %w", id, err)
	}
	if !updatedAt.IsZero() {
		r.UpdatedAt = &updatedAt
	}
	return &r, nil
}

// FindByOrder retourne la demande rattachée à la commande, s'il y en a une.
func (s *ScyllaRefundStore) FindByOrder(ctx context.Context, orderID gocql.UUID) (*models.Refund, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var rid gocql.UUID
	err = session.Query("SELECT refund_id FROM refunds_by_order WHERE order_id = ? LIMIT 1", orderID).
		WithContext(ctx).Scan(&rid)
	if err == gocql.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup remboursement commande %s: %w", orderID, err)
	}
	return s.FindByID(ctx, rid.String())
}

// UpdateStatus fait avancer la demande (pending → completed/rejected).
func (s *ScyllaRefundStore) UpdateStatus(ctx context.Context, r *models.Refund) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}
	now := time.Now()
	r.UpdatedAt = &now
	return session.Query("UPDATE refunds SET status = ?, stripe_refund_id = ?, updated_at = ? WHERE refund_id = ?",
		r.Status, r.StripeRefundID, now, r.ID).WithContext(ctx).Exec()
}
