// Package resources holds the property-management domain the agent's tools
// operate on: properties, guests, and bookings, all scoped to an owner.
package resources

import (
	"time"

	"github.com/google/uuid"
)

// Property types accepted by PropertyInput.Type.
const (
	PropertyTypeVilla      = "villa"
	PropertyTypeHotel      = "hotel"
	PropertyTypeGuesthouse = "guesthouse"
)

// Booking statuses.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Property is a villa, hotel, or guesthouse managed by an owner.
type Property struct {
	ID            uuid.UUID `json:"id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	Name          string    `json:"name"`
	Type          string    `json:"property_type"`
	Location      string    `json:"location,omitempty"`
	MaxGuests     int       `json:"max_guests,omitempty"`
	PricePerNight float64   `json:"base_price_per_night,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// PropertyInput is the payload for creating a property.
type PropertyInput struct {
	Name          string  `json:"name"`
	Type          string  `json:"property_type"`
	Location      string  `json:"location,omitempty"`
	MaxGuests     int     `json:"max_guests,omitempty"`
	PricePerNight float64 `json:"base_price_per_night,omitempty"`
}

// Guest is a visitor who books stays at an owner's properties. Email is
// unique per owner.
type Guest struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// GuestInput is the payload for creating a guest.
type GuestInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Booking reserves a property for a guest over a date range. Dates are
// calendar days in YYYY-MM-DD form; check-out day is exclusive.
type Booking struct {
	ID         uuid.UUID `json:"id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	PropertyID uuid.UUID `json:"property_id"`
	GuestID    uuid.UUID `json:"guest_id"`
	CheckIn    string    `json:"check_in"`
	CheckOut   string    `json:"check_out"`
	NumGuests  int       `json:"num_guests"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// BookingInput is the payload for creating a booking.
type BookingInput struct {
	PropertyID uuid.UUID `json:"property_id"`
	GuestID    uuid.UUID `json:"guest_id"`
	CheckIn    string    `json:"check_in"`
	CheckOut   string    `json:"check_out"`
	NumGuests  int       `json:"num_guests,omitempty"`
}

// BookingFilter narrows a booking search. Zero values match everything.
type BookingFilter struct {
	PropertyID uuid.UUID
	GuestID    uuid.UUID
	From       string
	To         string
}
