package orders

import (
	"context"
	"log"
	"math"
	"strings"
	"time"

	"sideways_back_end/internal/models"
)

// Collaborator contracts. Stores return (nil, nil) when the entity does not
// exist so the workflow can distinguish "absent" from a store failure.
type ProductStore interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
	// DecrementStock atomically takes qty units from the (product, size)
	// stock bucket. It returns false when the bucket no longer holds qty
	// units; this is the sole overselling gate, the earlier read in the
	// validation pass is advisory only.
	DecrementStock(ctx context.Context, productID, size string, qty int) (bool, error)
}

type AddressStore interface {
	FindByID(ctx context.Context, id string) (*models.Address, error)
}

type CardStore interface {
	FindByID(ctx context.Context, id string) (*models.Card, error)
}

type OrderStore interface {
	// Create persists the order and claims its order number; a duplicate
	// number must fail with ErrDuplicateOrderNumber.
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id string) error
}

type CartStore interface {
	RemoveItems(ctx context.Context, userID string, keys []models.ItemKey) error
}

// CardGuard is the coarse anti-replay check: a card that completed a
// checkout in the last minute is refused, whoever the user is.
type CardGuard interface {
	RecentlyUsed(ctx context.Context, cardID string) (bool, error)
	MarkUsed(ctx context.Context, cardID string) error
}

// Gateway charges and refunds through the external payment processor.
type Gateway interface {
	Charge(ctx context.Context, params ChargeParams) (*ChargeResult, error)
	Refund(ctx context.Context, transactionID string, amountMinor int64) error
}

type ChargeParams struct {
	AmountMinor    int64 // centavos
	Currency       string
	IdempotencyKey string
	PaymentMethod  string
	Metadata       map[string]string
}

type ChargeResult struct {
	Status        string // "succeeded" or any other terminal state
	TransactionID string
	FailureReason string
}

// Notifier dispatches e-mails. Every call is best-effort from the
// workflow's point of view: failures are logged, never surfaced.
type Notifier interface {
	OrderReceipt(ctx context.Context, order *models.Order, email string) error
	NewOrderAlert(ctx context.Context, order *models.Order) error
	StatusChanged(ctx context.Context, order *models.Order, email string) error
}

type UserStore interface {
	FindEmail(ctx context.Context, userID string) (string, error)
}

const (
	// Paiement serveur en mode test : méthode fixe non soumise au 3DS,
	// jamais un token fourni par le client.
	defaultPaymentMethod = "pm_card_visa"
	currency             = "mxn"
)

// Service orchestrates checkout and order status administration. All
// collaborators are injected once at process start so tests can substitute
// fakes without touching process globals.
type Service struct {
	products  ProductStore
	addresses AddressStore
	cards     CardStore
	orders    OrderStore
	cart      CartStore
	guard     CardGuard
	gateway   Gateway
	notifier  Notifier
	users     UserStore
}

func NewService(
	products ProductStore,
	addresses AddressStore,
	cards CardStore,
	orders OrderStore,
	cart CartStore,
	guard CardGuard,
	gateway Gateway,
	notifier Notifier,
	users UserStore,
) *Service {
	return &Service{
		products:  products,
		addresses: addresses,
		cards:     cards,
		orders:    orders,
		cart:      cart,
		guard:     guard,
		gateway:   gateway,
		notifier:  notifier,
		users:     users,
	}
}

type LineItem struct {
	ProductID string `json:"productId" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type CreateOrderInput struct {
	UserID    string
	UserEmail string
	AddressID string
	CardID    string
	Items     []LineItem
}

// CreateOrder runs the full checkout: validation, synchronous payment
// capture, persistence, stock decrement, cart pruning and notifications.
// All validation happens before any mutation. Once the charge has been
// captured, any persistence or stock failure triggers compensation (the
// charge is refunded) instead of leaving paid-but-broken state behind.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, newError(KindInvalidRequest, "le panier est vide")
	}

	// Garde anti-réutilisation de la même carte (60s), lecture seule ici.
	used, err := s.guard.RecentlyUsed(ctx, in.CardID)
	if err != nil {
		return nil, wrapError(KindInternal, err, "erreur vérification carte")
	}
	if used {
		return nil, newError(KindRateLimited, "attendez un instant avant de réutiliser cette carte")
	}

	address, err := s.addresses.FindByID(ctx, in.AddressID)
	if err != nil {
		return nil, wrapError(KindInternal, err, "erreur lecture adresse")
	}
	if address == nil || address.UserID != in.UserID {
		return nil, newError(KindForbidden, "adresse invalide ou non autorisée")
	}

	card, err := s.cards.FindByID(ctx, in.CardID)
	if err != nil {
		return nil, wrapError(KindInternal, err, "erreur lecture carte")
	}
	if card == nil || card.UserID != in.UserID {
		return nil, newError(KindForbidden, "carte invalide ou non autorisée")
	}

	var totalAmount float64
	items := make([]models.OrderItem, 0, len(in.Items))
	keys := make([]models.ItemKey, 0, len(in.Items))

	for _, line := range in.Items {
		size := strings.TrimSpace(line.Size)

		product, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			return nil, wrapError(KindInternal, err, "erreur lecture produit")
		}
		if product == nil || !product.IsActive {
			return nil, newError(KindNotFound, "produit indisponible : %s", line.ProductID)
		}

		sizeInfo := product.FindSize(size)
		if sizeInfo == nil {
			return nil, newError(KindInvalidRequest, "taille invalide pour %s : %s", product.Name, size)
		}
		// Lecture consultative : le garde-fou réel est le décrément
		// conditionnel plus bas.
		if sizeInfo.Stock < line.Quantity {
			return nil, newError(KindInsufficientStock, "stock insuffisant pour %s - taille %s", product.Name, size)
		}

		totalAmount += product.Price * float64(line.Quantity)
		items = append(items, models.OrderItem{
			ProductID:       line.ProductID,
			ProductName:     product.Name,
			Size:            size,
			Quantity:        line.Quantity,
			PriceAtPurchase: product.Price,
		})
		keys = append(keys, models.ItemKey{ProductID: line.ProductID, Size: size})
	}

	orderNumber := NewOrderNumber()
	amountMinor := int64(math.Round(totalAmount * 100))

	result, err := s.gateway.Charge(ctx, ChargeParams{
		AmountMinor:    amountMinor,
		Currency:       currency,
		IdempotencyKey: IdempotencyKey(orderNumber, in.UserID),
		PaymentMethod:  defaultPaymentMethod,
		Metadata: map[string]string{
			"order_number": orderNumber,
			"user_id":      in.UserID,
		},
	})
	if err != nil {
		return nil, wrapError(KindPaymentFailed, err, "erreur lors du paiement")
	}
	if result.Status != "succeeded" {
		log.Printf("❌ Paiement refusé: status=%s reason=%s", result.Status, result.FailureReason)
		return nil, newError(KindPaymentFailed, "erreur lors du paiement : %s", result.Status)
	}

	order := &models.Order{
		OrderNumber:     orderNumber,
		UserID:          in.UserID,
		AddressID:       address.ID,
		CardID:          card.ID,
		Items:           items,
		TotalAmount:     totalAmount,
		Status:          string(StatusPaid),
		StatusHistory:   []models.StatusEntry{{Status: string(StatusPaid), Timestamp: time.Now()}},
		PaymentIntentID: result.TransactionID,
		CreatedAt:       time.Now(),
	}

	if err := s.orders.Create(ctx, order); err != nil {
		s.refund(ctx, result.TransactionID, amountMinor, "order persist failed")
		if err == ErrDuplicateOrderNumber {
			return nil, wrapError(KindConflict, err, "numéro de commande dupliqué")
		}
		return nil, wrapError(KindInternal, err, "erreur sauvegarde commande")
	}

	// Décrément atomique par (produit, taille). En cas d'échec (course sur
	// la dernière unité), on rembourse et on annule l'ordre au lieu de
	// laisser un paiement orphelin.
	for _, line := range in.Items {
		size := strings.TrimSpace(line.Size)
		ok, err := s.products.DecrementStock(ctx, line.ProductID, size, line.Quantity)
		if err != nil {
			s.compensate(ctx, order, amountMinor, "stock update failed")
			return nil, wrapError(KindInternal, err, "erreur mise à jour stock")
		}
		if !ok {
			s.compensate(ctx, order, amountMinor, "stock gate refused")
			return nil, newError(KindInsufficientStock, "stock insuffisant pour %s - taille %s", line.ProductID, size)
		}
	}

	// Nettoyage du panier : uniquement les couples achetés. Échec avalé.
	if err := s.cart.RemoveItems(ctx, in.UserID, keys); err != nil {
		log.Printf("⚠️ Erreur nettoyage panier de %s: %v", in.UserID, err)
	}

	if err := s.guard.MarkUsed(ctx, in.CardID); err != nil {
		log.Printf("⚠️ Erreur marquage carte %s: %v", in.CardID, err)
	}

	// Mails non bloquants : reçu client + alerte interne.
	go func(order models.Order, email string) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.notifier.OrderReceipt(ctx, &order, email); err != nil {
			log.Printf("⚠️ Erreur envoi reçu commande %s: %v", order.OrderNumber, err)
		}
		if err := s.notifier.NewOrderAlert(ctx, &order); err != nil {
			log.Printf("⚠️ Erreur envoi alerte commande %s: %v", order.OrderNumber, err)
		}
	}(*order, in.UserEmail)

	log.Printf("✅ Commande créée : %s (%.2f MXN) pour %s", orderNumber, totalAmount, in.UserID)
	return order, nil
}

// refund voids a captured charge when nothing durable was persisted yet.
func (s *Service) refund(ctx context.Context, transactionID string, amountMinor int64, cause string) {
	if err := s.gateway.Refund(ctx, transactionID, amountMinor); err != nil {
		// Remboursement impossible : divergence à réconcilier manuellement.
		log.Printf("❌ Compensation échouée (%s) pour %s: %v", cause, transactionID, err)
		return
	}
	log.Printf("💰 Paiement %s remboursé (%s)", transactionID, cause)
}

// compensate refunds the charge and flags the already-persisted order as
// cancelled+refunded so operators see the aborted checkout.
func (s *Service) compensate(ctx context.Context, order *models.Order, amountMinor int64, cause string) {
	s.refund(ctx, order.PaymentIntentID, amountMinor, cause)

	order.Status = string(StatusCancelled)
	order.IsCancelled = true
	order.IsRefunded = true
	order.CancelReason = cause
	order.StatusHistory = append(order.StatusHistory, models.StatusEntry{
		Status:    string(StatusCancelled),
		Timestamp: time.Now(),
	})
	if err := s.orders.Update(ctx, order); err != nil {
		log.Printf("❌ Erreur annulation commande %s: %v", order.OrderNumber, err)
	}
}
