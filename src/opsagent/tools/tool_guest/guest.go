package tool_guest

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
	LookupName = "guest_lookup"
	CreateName = "guest_create"
	DeleteName = "guest_delete"
)

const lookupPrompt = `Find guests by name, email, or phone. Partial matches work; an empty query returns every guest.`

const createPrompt = `Add a guest to the directory. Requires a name and an email; email must be unique per account.`

const deletePrompt = `Permanently delete a guest and all of their bookings. This cannot be undone.`

// LookupInput represents the parameters for guest_lookup
type LookupInput struct {
	Query string `json:"query,omitempty" description:"Name, email, or phone fragment to search for"`
}

// LookupOutput represents the response from guest_lookup
type LookupOutput struct {
	Guests []resources.Guest `json:"guests"`
	Count  int               `json:"count"`
}

// LookupTool returns the guest_lookup tool definition using GenericTool
func LookupTool(svc resources.GuestService) (agent.Tool, error) {
	return agent.NewGenericTool(LookupName, lookupPrompt, makeLookupHandler(svc))
}

func makeLookupHandler(svc resources.GuestService) func(ctx context.Context, input LookupInput) (LookupOutput, error) {
	return func(ctx context.Context, input LookupInput) (LookupOutput, error) {
		id, err := toolsutil.RequireIdentity(ctx)
		if err != nil {
			return LookupOutput{}, err
		}

		guests, err := svc.LookupGuests(ctx, id.UserID, input.Query)
		if err != nil {
			return LookupOutput{}, err
		}
		return LookupOutput{Guests: guests, Count: len(guests)}, nil
	}
}

// CreateInput represents the parameters for guest_create
type CreateInput struct {
	Name  string `json:"name" required:"true" description:"Guest full name"`
	Email string `json:"email" required:"true" description:"Guest email, unique per account"`
	Phone string `json:"phone,omitempty" description:"Guest phone number"`
}

// CreateTool returns the guest_create tool definition using GenericTool
func CreateTool(svc resources.GuestService) (agent.Tool, error) {
	return agent.NewGenericTool(CreateName, createPrompt, makeCreateHandler(svc))
}

func makeCreateHandler(svc resources.GuestService) func(ctx context.Context, input CreateInput) (resources.Guest, error) {
	return func(ctx context.Context, input CreateInput) (resources.Guest, error) {
		id, err := toolsutil.RequireIdentity(ctx)
		if err != nil {
			return resources.Guest{}, err
		}

		toolsutil.GetLogger().Info("creating guest", "name", input.Name)

		guest, err := svc.CreateGuest(ctx, id.UserID, resources.GuestInput{
			Name:  input.Name,
			Email: input.Email,
			Phone: input.Phone,
		})
		if err != nil {
			return resources.Guest{}, err
		}
		return *guest, nil
	}
}

// DeleteInput represents the parameters for guest_delete
type DeleteInput struct {
	GuestID string `json:"guest_id" required:"true" description:"UUID of the guest to delete"`
}

// DeleteOutput represents the response from guest_delete
type DeleteOutput struct {
	GuestID string `json:"guest_id" description:"The id that was deleted"`
	Deleted bool   `json:"deleted" description:"Whether the guest was deleted"`
}

// DeleteTool returns the guest_delete tool definition using GenericTool
func DeleteTool(svc resources.GuestService) (agent.Tool, error) {
	return agent.NewGenericTool(DeleteName, deletePrompt, makeDeleteHandler(svc))
}

func makeDeleteHandler(svc resources.GuestService) func(ctx context.Context, input DeleteInput) (DeleteOutput, error) {
	return func(ctx context.Context, input DeleteInput) (DeleteOutput, error) {
		id, err := toolsutil.RequireIdentity(ctx)
		if err != nil {
			return DeleteOutput{}, err
		}

		guestID, err := uuid.Parse(input.GuestID)
		if err != nil {
			return DeleteOutput{}, fmt.Errorf("%w: guest_id must be a UUID", resources.ErrInvalidInput)
		}

		toolsutil.GetLogger().Info("deleting guest", "guest_id", guestID)

		if err := svc.DeleteGuest(ctx, id.UserID, guestID); err != nil {
			return DeleteOutput{}, err
		}
		return DeleteOutput{GuestID: input.GuestID, Deleted: true}, nil
	}
}
