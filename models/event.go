package models

import "time"

// Event представляет спортивное событие.
type Event struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	SportType   SportType `json:"sport_type" db:"sport_type"`
	Date        string    `json:"date" db:"date"`
	Time        string    `json:"time" db:"time"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	BannerKey   *string   `json:"-" db:"banner_key"`
	BannerURL   *string   `json:"banner_url,omitempty" db:"-"`

	// Связанные площадки (не мапятся напрямую)
	Venues []Venue `json:"venues" db:"-"`
}
