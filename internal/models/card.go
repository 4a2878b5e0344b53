package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Card ne conserve jamais le numéro complet ni le CVV : ils sont validés à la
// création puis jetés, seuls brand/last4/expiration sont persistés.
type Card struct {
	ID        gocql.UUID `json:"id" db:"card_id"`
	UserID    string     `json:"userId" db:"user_id"`
	Brand     string     `json:"brand" db:"brand"`
	Last4     string     `json:"last4" db:"last4"`
	ExpMonth  int        `json:"expMonth" db:"exp_month"`
	ExpYear   int        `json:"expYear" db:"exp_year"`
	FirstName string     `json:"firstName" db:"first_name"`
	LastName  string     `json:"lastName" db:"last_name"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}
