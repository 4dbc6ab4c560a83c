package entity

import "time"

// Account is the persisted profile record for a user. One record exists
// per email; the row is created on first login and never deleted here.
// Username doubles as the public route key (/profile/:username) but is
// not enforced unique at the data layer.
type Account struct {
	ID          string    `json:"docId"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Description string    `json:"description"`
	ThumbURL    string    `json:"thumbUrl"`
	Locale      string    `json:"locale"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}
