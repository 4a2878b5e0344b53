package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Address struct {
	ID           gocql.UUID `json:"id" db:"address_id"`
	UserID       string     `json:"userId" db:"user_id"`
	Name         string     `json:"name" db:"name"`
	Street       string     `json:"street" db:"street"`
	ExtNumber    string     `json:"extNumber" db:"ext_number"`
	IntNumber    string     `json:"intNumber" db:"int_number"`
	Phone        string     `json:"phone" db:"phone"`
	PostalCode   string     `json:"postalCode" db:"postal_code"`
	Neighborhood string     `json:"neighborhood" db:"neighborhood"`
	Municipality string     `json:"municipality" db:"municipality"`
	State        string     `json:"state" db:"state"`
	IsDefault    bool       `json:"isDefault" db:"is_default"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
}
