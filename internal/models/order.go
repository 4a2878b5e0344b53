package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Order struct {
	ID              gocql.UUID    `json:"id" db:"order_id"`
	OrderNumber     string        `json:"orderNumber" db:"order_number"`
	UserID          string        `json:"userId" db:"user_id"`
	AddressID       gocql.UUID    `json:"addressId" db:"address_id"`
	CardID          gocql.UUID    `json:"cardId" db:"card_id"`
	Items           []OrderItem   `json:"items"`
	TotalAmount     float64       `json:"totalAmount" db:"total_amount"`
	Status          string        `json:"status" db:"status"`
	StatusHistory   []StatusEntry `json:"statusHistory"`
	IsCancelled     bool          `json:"isCancelled" db:"is_cancelled"`
	IsRefunded      bool          `json:"isRefunded" db:"is_refunded"`
	CancelReason    string        `json:"cancelReason,omitempty" db:"cancel_reason"`
	ProcessedAt     *time.Time    `json:"processedAt,omitempty" db:"processed_at"`
	PaymentIntentID string        `json:"paymentIntentId,omitempty" db:"payment_intent_id"`
	CreatedAt       time.Time     `json:"createdAt" db:"created_at"`
}

// OrderItem est un instantané de ligne d'achat : le prix est celui côté
// serveur au moment de la validation, jamais celui envoyé par le client.
type OrderItem struct {
	ProductID       string  `json:"product_id"`
	ProductName     string  `json:"product_name,omitempty"`
	Size            string  `json:"size"`
	Quantity        int     `json:"quantity"`
	PriceAtPurchase float64 `json:"price_at_purchase"`
}

// StatusEntry est une entrée du journal de statuts, en append uniquement.
type StatusEntry struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
