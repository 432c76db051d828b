package tool_booking

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/villaops/villaops/src/agent"
	"github.com/villaops/villaops/src/opsagent/tools/toolsutil"
	"github.com/villaops/villaops/src/resources"
)

// Tool name constants
const (
	SearchName = "booking_search"
	CreateName = "booking_create"
)

const searchPrompt = `Search bookings across the current user's properties. All filters are optional; dates are YYYY-MM-DD and bound the stay period.`

const createPrompt = `Create a booking for a guest at a property. Requires property and guest UUIDs, never names; dates are YYYY-MM-DD with an exclusive check-out day.`

// SearchInput represents the parameters for booking_search
type SearchInput struct {
	PropertyID string `json:"property_id,omitempty" description:"Restrict to one property, by UUID"`
	GuestID    string `json:"guest_id,omitempty" description:"Restrict to one guest, by UUID"`
	From       string `json:"from,omitempty" description:"Earliest stay date to include, YYYY-MM-DD"`
	To         string `json:"to,omitempty" description:"Latest stay date to include, YYYY-MM-DD"`
}

// SearchOutput represents the response from booking_search
type SearchOutput struct {
	Bookings []resources.Booking `json:"bookings"`
	Count    int                 `json:"count"`
}

// SearchTool returns the booking_search tool definition using GenericTool
func SearchTool(svc resources.BookingService) (agent.Tool, error) {
	return agent.NewGenericTool(SearchName, searchPrompt, makeSearchHandler(svc))
}

func makeSearchHandler(svc resources.BookingService) func(ctx context.Context, input SearchInput) (SearchOutput, error) {
	return func(ctx context.Context, input SearchInput) (SearchOutput, error) {
		id, err := toolsutil.RequireIdentity(ctx)
		if err != nil {
			return SearchOutput{}, err
		}

		filter := resources.BookingFilter{From: input.From, To: input.To}
		if input.PropertyID != "" {
			if filter.PropertyID, err = uuid.Parse(input.PropertyID); err != nil {
				return SearchOutput{}, fmt.Errorf("%w: property_id must be a UUID", resources.ErrInvalidInput)
			}
		}
		if input.GuestID != "" {
			if filter.GuestID, err = uuid.Parse(input.GuestID); err != nil {
				return SearchOutput{}, fmt.Errorf("%w: guest_id must be a UUID", resources.ErrInvalidInput)
			}
		}

		bookings, err := svc.SearchBookings(ctx, id.UserID, filter)
		if err != nil {
			return SearchOutput{}, err
		}
		return SearchOutput{Bookings: bookings, Count: len(bookings)}, nil
	}
}

// CreateInput represents the parameters for booking_create
type CreateInput struct {
	PropertyID string `json:"property_id" required:"true" description:"UUID of the property"`
	GuestID    string `json:"guest_id" required:"true" description:"UUID of the guest"`
	CheckIn    string `json:"check_in" required:"true" description:"Check-in date, YYYY-MM-DD"`
	CheckOut   string `json:"check_out" required:"true" description:"Check-out date, YYYY-MM-DD, exclusive"`
	NumGuests  int    `json:"num_guests,omitempty" description:"Party size, defaults to 1"`
}

// CreateTool returns the booking_create tool definition using GenericTool
func CreateTool(svc resources.BookingService) (agent.Tool, error) {
	return agent.NewGenericTool(CreateName, createPrompt, makeCreateHandler(svc))
}

func makeCreateHandler(svc resources.BookingService) func(ctx context.Context, input CreateInput) (resources.Booking, error) {
	return func(ctx context.Context, input CreateInput) (resources.Booking, error) {
		id, err := toolsutil.RequireIdentity(ctx)
		if err != nil {
			return resources.Booking{}, err
		}

		propertyID, err := uuid.Parse(input.PropertyID)
		if err != nil {
			return resources.Booking{}, fmt.Errorf("%w: property_id must be a UUID", resources.ErrInvalidInput)
		}
		guestID, err := uuid.Parse(input.GuestID)
		if err != nil {
			return resources.Booking{}, fmt.Errorf("%w: guest_id must be a UUID", resources.ErrInvalidInput)
		}

		toolsutil.GetLogger().Info("creating booking", "property_id", propertyID, "guest_id", guestID, "check_in", input.CheckIn)

		booking, err := svc.CreateBooking(ctx, id.UserID, resources.BookingInput{
			PropertyID: propertyID,
			GuestID:    guestID,
			CheckIn:    input.CheckIn,
			CheckOut:   input.CheckOut,
			NumGuests:  input.NumGuests,
		})
		if err != nil {
			return resources.Booking{}, err
		}
		return *booking, nil
	}
}
