package orders

import (
	"context"
	"log"
	"time"

	"sideways_back_end/internal/models"
)

// Actor is the caller of an administrative operation.
type Actor struct {
	UserID string
	Admin  bool
}

// UpdateStatus moves an order through its lifecycle. Only transitions in the
// lifecycle table are accepted; a same-status call is an idempotent no-op
// (the history gets no duplicate entry). Every applied transition appends to
// the append-only status history — entries are never edited or removed.
func (s *Service) UpdateStatus(ctx context.Context, orderID, newStatus string, actor Actor) (*models.Order, error) {
	if !actor.Admin {
		return nil, newError(KindForbidden, "accès réservé aux administrateurs")
	}

	status, ok := ParseStatus(newStatus)
	if !ok {
		return nil, newError(KindInvalidRequest, "statut invalide : %s", newStatus)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, wrapError(KindInternal, err, "erreur lecture commande")
	}
	if order == nil {
		return nil, newError(KindNotFound, "commande introuvable")
	}

	current := Status(order.Status)
	if current == status {
		// Déjà dans cet état : on renvoie la commande telle quelle.
		return order, nil
	}

	if !CanTransition(current, status) {
		return nil, newError(KindInvalidRequest, "transition non autorisée : %s → %s", current, status)
	}

	order.Status = string(status)
	switch status {
	case StatusPaid:
		now := time.Now()
		order.ProcessedAt = &now
		order.IsCancelled = false
	case StatusCancelled:
		order.IsCancelled = true
	}
	order.StatusHistory = append(order.StatusHistory, models.StatusEntry{
		Status:    string(status),
		Timestamp: time.Now(),
	})

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, wrapError(KindInternal, err, "erreur mise à jour commande")
	}

	log.Printf("✅ Commande %s : %s → %s (par %s)", order.OrderNumber, current, status, actor.UserID)

	// E-mail de statut, non bloquant.
	go func(order models.Order) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		email, err := s.users.FindEmail(ctx, order.UserID)
		if err != nil || email == "" {
			return
		}
		if err := s.notifier.StatusChanged(ctx, &order, email); err != nil {
			log.Printf("⚠️ Erreur envoi e-mail statut %s: %v", order.OrderNumber, err)
		}
	}(*order)

	return order, nil
}

// PurgeResult is the confirmation payload returned before destruction.
type PurgeResult struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
}

// Purge deletes a terminal order from the store. Destruction is kept out of
// UpdateStatus on purpose: marking Delivered retains the record, removal is
// this separate, admin-only, irreversible operation. A second call for the
// same order returns NotFound.
func (s *Service) Purge(ctx context.Context, orderID string, actor Actor) (*PurgeResult, error) {
	if !actor.Admin {
		return nil, newError(KindForbidden, "accès réservé aux administrateurs")
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, wrapError(KindInternal, err, "erreur lecture commande")
	}
	if order == nil {
		return nil, newError(KindNotFound, "commande introuvable")
	}

	current := Status(order.Status)
	if current != StatusDelivered && current != StatusCancelled {
		return nil, newError(KindInvalidRequest, "seule une commande livrée ou annulée peut être purgée")
	}

	if err := s.orders.Delete(ctx, orderID); err != nil {
		return nil, wrapError(KindInternal, err, "erreur suppression commande")
	}

	log.Printf("🗑️ Commande %s purgée par %s", order.OrderNumber, actor.UserID)
	return &PurgeResult{OrderID: orderID, OrderNumber: order.OrderNumber}, nil
}
