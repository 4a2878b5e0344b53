package models

import "time"

type User struct {
	ID                string     `json:"user_id"`
	Email             string     `json:"email"`
	Password          string     `json:"-"`
	Role              string     `json:"role,omitempty"`
	Provider          string     `json:"provider,omitempty"`
	ProviderID        string     `json:"-"`
	IsVerified        bool       `json:"isVerified"`
	VerificationToken string     `json:"-"`
	CreatedAt         time.Time  `json:"createdAt"`
	LockUntil         *time.Time `json:"-"`
}
