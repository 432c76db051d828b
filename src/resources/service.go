package resources

import (
	"context"

	"github.com/google/uuid"
)

// PropertyService manages an owner's properties.
type PropertyService interface {
	ListProperties(ctx context.Context, ownerID uuid.UUID) ([]Property, error)
	CreateProperty(ctx context.Context, ownerID uuid.UUID, input PropertyInput) (*Property, error)
	DeleteProperty(ctx context.Context, ownerID, propertyID uuid.UUID) error
}

// GuestService manages an owner's guest directory.
type GuestService interface {
	LookupGuests(ctx context.Context, ownerID uuid.UUID, query string) ([]Guest, error)
	CreateGuest(ctx context.Context, ownerID uuid.UUID, input GuestInput) (*Guest, error)
	DeleteGuest(ctx context.Context, ownerID, guestID uuid.UUID) error
}

// BookingService manages reservations across an owner's properties.
type BookingService interface {
	SearchBookings(ctx context.Context, ownerID uuid.UUID, filter BookingFilter) ([]Booking, error)
	CreateBooking(ctx context.Context, ownerID uuid.UUID, input BookingInput) (*Booking, error)
}

// Store bundles the three services a fully wired agent needs.
type Store interface {
	PropertyService
	GuestService
	BookingService
}
