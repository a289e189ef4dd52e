package models

import "time"

type User struct {
	ID                     string     `json:"id"`
	Email                  string     `json:"email"`
	PasswordHash           *string    `json:"-"`
	EmailConfirmed         bool       `json:"email_confirmed"`
	EmailConfirmationToken *string    `json:"-"`
	EmailConfirmedAt       *time.Time `json:"email_confirmed_at,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
}
