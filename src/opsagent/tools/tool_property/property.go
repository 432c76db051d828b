package tool_property

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	jsonschema "github.com/swaggest/jsonschema-go"

	"github.com/villaops/villaops/src/agent"
	"github.com/villaops/villaops/src/aisdk"
	"github.com/villaops/villaops/src/opsagent/tools/toolsutil"
	"github.com/villaops/villaops/src/resources"
	"github.com/villaops/villaops/src/schema"
)

// Tool name constants
const (
	ListName   = "property_list"
	CreateName = "property_create"
	DeleteName = "property_delete"
)

const listPrompt = `List all properties the current user manages, with their ids, types, locations, and nightly rates.`

const createPrompt = `Create a new property. Requires a name and a property type (villa, hotel, or guesthouse); location, max guests, and nightly rate are optional.`

const deletePrompt = `Permanently delete a property and all of its bookings. This cannot be undone.`

// ListInput represents the parameters for property_list
type ListInput struct{}

// ListOutput represents the response from property_list
type ListOutput struct {
	Properties []resources.Property `json:"properties"`
	Count      int                  `json:"count"`
}

// ListTool returns the property_list tool definition using GenericTool
func ListTool(svc resources.PropertyService) (agent.Tool, error) {
	return agent.NewGenericTool(ListName, listPrompt, makeListHandler(svc))
}

func makeListHandler(svc resources.PropertyService) func(ctx context.Context, input ListInput) (ListOutput, error) {
	return func(ctx context.Context, input ListInput) (ListOutput, error) {
		id, err := toolsutil.RequireIdentity(ctx)
		if err != nil {
			return ListOutput{}, err
		}

		properties, err := svc.ListProperties(ctx, id.UserID)
		if err != nil {
			return ListOutput{}, err
		}
		return ListOutput{Properties: properties, Count: len(properties)}, nil
	}
}

// CreateTool returns the property_create tool definition. The schema is built
// by hand so property_type can be declared as an enum.
func CreateTool(svc resources.PropertyService) agent.Tool {
	params := schema.CreateObjectSchema(map[string]*jsonschema.Schema{
		"name":                 schema.CreateStringSchema("Property name"),
		"property_type":        schema.CreateStringSchemaEnum("Kind of property", []string{resources.PropertyTypeVilla, resources.PropertyTypeHotel, resources.PropertyTypeGuesthouse}),
		"location":             schema.CreateStringSchema("City or area of the property"),
		"max_guests":           schema.CreateIntegerSchema("Maximum number of guests the property sleeps"),
		"base_price_per_night": schema.CreateNumberSchema("Nightly rate in USD"),
	}, []string{"name", "property_type"})

	return &agent.FuncTool{
		Type: "function",
		Function: aisdk.ToolFunction{
			Name:        CreateName,
			Description: createPrompt,
			Parameters:  params,
		},
		Executor: makeCreateHandler(svc),
	}
}

func makeCreateHandler(svc resources.PropertyService) aisdk.ToolExecutor {
	return func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
		id, err := toolsutil.RequireIdentity(ctx)
		if err != nil {
			return toolsutil.ErrorResponse(err.Error()), nil
		}

		var input resources.PropertyInput
		if err := toolsutil.DecodeStrict(call.Function.Arguments, &input); err != nil {
			return toolsutil.ErrorResponse("failed to parse input: " + err.Error()), nil
		}

		toolsutil.GetLogger().Info("creating property", "name", input.Name, "type", input.Type)

		property, err := svc.CreateProperty(ctx, id.UserID, input)
		if err != nil {
			return toolsutil.ErrorResponse(err.Error()), nil
		}
		return toolsutil.SuccessResponse(property)
	}
}

// DeleteInput represents the parameters for property_delete
type DeleteInput struct {
	PropertyID string `json:"property_id" required:"true" description:"UUID of the property to delete"`
}

// DeleteOutput represents the response from property_delete
type DeleteOutput struct {
	PropertyID string `json:"property_id" description:"The id that was deleted"`
	Deleted    bool   `json:"deleted" description:"Whether the property was deleted"`
}

// DeleteTool returns the property_delete tool definition using GenericTool
func DeleteTool(svc resources.PropertyService) (agent.Tool, error) {
	return agent.NewGenericTool(DeleteName, deletePrompt, makeDeleteHandler(svc))
}

func makeDeleteHandler(svc resources.PropertyService) func(ctx context.Context, input DeleteInput) (DeleteOutput, error) {
	return func(ctx context.Context, input DeleteInput) (DeleteOutput, error) {
		id, err := toolsutil.RequireIdentity(ctx)
		if err != nil {
			return DeleteOutput{}, err
		}

		propertyID, err := uuid.Parse(input.PropertyID)
		if err != nil {
			return DeleteOutput{}, fmt.Errorf("%w: property_id must be a UUID", resources.ErrInvalidInput)
		}

		toolsutil.GetLogger().Info("deleting property", "property_id", propertyID)

		if err := svc.DeleteProperty(ctx, id.UserID, propertyID); err != nil {
			return DeleteOutput{}, err
		}
		return DeleteOutput{PropertyID: input.PropertyID, Deleted: true}, nil
	}
}
