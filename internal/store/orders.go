package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"sideways_back_end/internal/database"
	"sideways_back_end/internal/models"
	"sideways_back_end/internal/orders"
)

// ScyllaOrderStore persiste les commandes dans ks_orders. Trois tables :
// orders (par order_id), orders_by_number (réservation LWT du numéro, c'est
// elle qui garantit l'unicité) et orders_by_user (listing trié par date).
// Les lignes d'achat et le journal de statuts sont stockés en JSON.
type ScyllaOrderStore struct{}

func NewScyllaOrderStore() *ScyllaOrderStore {
	return &ScyllaOrderStore{}
}

// Create réserve le numéro de commande via INSERT ... IF NOT EXISTS puis écrit
// la commande. Un numéro déjà pris remonte ErrDuplicateOrderNumber sans rien
// écrire d'autre.
func (s *ScyllaOrderStore) Create(ctx context.Context, order *models.Order) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	if order.ID == (gocql.UUID{}) {
		order.ID = gocql.TimeUUID()
	}

	applied, err := session.Query("INSERT INTO orders_by_number (order_number, order_id) VALUES (?, ?) IF NOT EXISTS",
		order.OrderNumber, order.ID).WithContext(ctx).ScanCAS()
	if err != nil {
		return fmt.Errorf("réservation numéro %s: %w", order.OrderNumber, err)
	}
	if !applied {
		return orders.ErrDuplicateOrderNumber
	}

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("sérialisation items: %w", err)
	}
	historyJSON, err := json.Marshal(order.StatusHistory)
	if err != nil {
		return fmt.Errorf("sérialisation historique: %w", err)
	}

	err = session.Query(`INSERT INTO orders (order_id, order_number, user_id, address_id, card_id, items, total_amount, status, status_history, is_cancelled, is_refunded, cancel_reason, processed_at, payment_intent_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.OrderNumber, order.UserID, order.AddressID, order.CardID,
		string(itemsJSON), order.TotalAmount, order.Status, string(historyJSON),
		order.IsCancelled, order.IsRefunded, order.CancelReason, processedAtOrZero(order),
		order.PaymentIntentID, order.CreatedAt).
		WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("insertion commande %s: %w", order.OrderNumber, err)
	}

	return session.Query("INSERT INTO orders_by_user (user_id, created_at, order_id) VALUES (?, ?, ?)",
		order.UserID, order.CreatedAt, order.ID).WithContext(ctx).Exec()
}

// FindByID retourne (nil, nil) si la commande n'existe pas.
func (s *ScyllaOrderStore) FindByID(ctx context.Context, id string) (*models.Order, error) {
	oid, err := gocql.ParseUUID(id)
	if err != nil {
		return nil, nil
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}
	return s.scanOrder(ctx, session, oid)
}

// FindByNumber résout le numéro via la table de lookup.
func (s *ScyllaOrderStore) FindByNumber(ctx context.Context, number string) (*models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var oid gocql.UUID
	err = session.Query("SELECT order_id FROM orders_by_number WHERE order_number = ?", number).
		WithContext(ctx).Scan(&oid)
	if err == gocql.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup numéro %s: %w", number, err)
	}
	return s.scanOrder(ctx, session, oid)
}

// ListByUser retourne les commandes de l'utilisateur, les plus récentes en
// premier (ordre de clustering de orders_by_user).
func (s *ScyllaOrderStore) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query("SELECT order_id FROM orders_by_user WHERE user_id = ?", userID).
		WithContext(ctx).Iter()

	var ids []gocql.UUID
	var id gocql.UUID
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("listing commandes de %s: %w", userID, err)
	}

	out := make([]models.Order, 0, len(ids))
	for _, id := range ids {
		o, err := s.scanOrder(ctx, session, id)
		if err != nil {
			return nil, err
		}
		if o != nil {
			out = append(out, *o)
		}
	}
	return out, nil
}

// Update réécrit les champs mutables : statut, journal, drapeaux, dates.
func (s *ScyllaOrderStore) Update(ctx context.Context, order *models.Order) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	historyJSON, err := json.Marshal(order.StatusHistory)
	if err != nil {
		return fmt.Errorf("sérialisation historique: %w", err)
	}

	return session.Query(`UPDATE orders SET status = ?, status_history = ?, is_cancelled = ?, is_refunded = ?, cancel_reason = ?, processed_at = ?
		WHERE order_id = ?`,
		order.Status, string(historyJSON), order.IsCancelled, order.IsRefunded,
		order.CancelReason, processedAtOrZero(order), order.ID).
		WithContext(ctx).Exec()
}

// processedAtOrZero évite de passer un pointeur nil au driver : la valeur zéro
// tient lieu de "jamais traité" côté stockage.
func processedAtOrZero(order *models.Order) time.Time {
	if order.ProcessedAt == nil {
		return time.Time{}
	}
	return *order.ProcessedAt
}

// Delete efface la commande et ses entrées de lookup. Réservé à la purge
// admin : les transitions de statut normales ne suppriment jamais rien.
func (s *ScyllaOrderStore) Delete(ctx context.Context, id string) error {
	oid, err := gocql.ParseUUID(id)
	if err != nil {
		return fmt.Errorf("order_id invalide: %s", id)
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	order, err := s.scanOrder(ctx, session, oid)
	if err != nil {
		return err
	}
	if order == nil {
		return nil
	}

	if err := session.Query("DELETE FROM orders_by_number WHERE order_number = ?", order.OrderNumber).
		WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("suppression lookup numéro %s: %w", order.OrderNumber, err)
	}
	if err := session.Query("DELETE FROM orders_by_user WHERE user_id = ? AND created_at = ? AND order_id = ?",
		order.UserID, order.CreatedAt, oid).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("suppression index utilisateur: %w", err)
	}
	return session.Query("DELETE FROM orders WHERE order_id = ?", oid).WithContext(ctx).Exec()
}

func (s *ScyllaOrderStore) scanOrder(ctx context.Context, session *gocql.Session, oid gocql.UUID) (*models.Order, error) {
	var o models.Order
	var itemsJSON, historyJSON string
	var processedAt time.Time
	o.ID = oid

	err := session.Query(`SELECT order_number, user_id, address_id, card_id, items, total_amount, status, status_history, is_cancelled, is_refunded, cancel_reason, processed_at, payment_intent_id, created_at
		FROM orders WHERE order_id = ?`, oid).WithContext(ctx).
		Scan(&o.OrderNumber, &o.UserID, &o.AddressID, &o.CardID, &itemsJSON, &o.TotalAmount,
			&o.Status, &historyJSON, &o.IsCancelled, &o.IsRefunded, &o.CancelReason,
			&processedAt, &o.PaymentIntentID, &o.CreatedAt)
	if err == gocql.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lecture commande %s: %w", oid, err)
	}
	if !processedAt.IsZero() {
		o.ProcessedAt = &processedAt
	}

	if itemsJSON != "" {
		if err := json.Unmarshal([]byte(itemsJSON), &o.Items); err != nil {
			return nil, fmt.Errorf("désérialisation items %s: %w", oid, err)
		}
	}
	if historyJSON != "" {
		if err := json.Unmarshal([]byte(historyJSON), &o.StatusHistory); err != nil {
			return nil, fmt.Errorf("désérialisation historique %s: %w", oid, err)
		}
	}
	return &o, nil
}
