package models

import "time"

// Place is a rental listing. OwnerID is set at creation time and is the only
// identity allowed to mutate the record; there is no delete operation.
type Place struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner"`

	Title       string   `json:"title"`
	Address     string   `json:"address"`
	Photos      []string `json:"photos"`
	Description string   `json:"description"`
	Perks       []string `json:"perks"`
	ExtraInfo   string   `json:"extraInfo"`
	CheckIn     string   `json:"checkIn"`
	CheckOut    string   `json:"checkOut"`
	MaxGuests   int      `json:"maxGuests"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlaceFields are the mutable fields of a Place. Updates replace all of them
// at once; partial updates are not supported.
type PlaceFields struct {
	Title       string
	Address     string
	Photos      []string
	Description string
	Perks       []string
	ExtraInfo   string
	CheckIn     string
	CheckOut    string
	MaxGuests   int
}
