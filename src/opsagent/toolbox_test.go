package opsagent

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villaops/villaops/src/agent"
	"github.com/villaops/villaops/src/aisdk"
	"github.com/villaops/villaops/src/opsagent/tools/tool_booking"
	"github.com/villaops/villaops/src/opsagent/tools/tool_guest"
	"github.com/villaops/villaops/src/opsagent/tools/tool_property"
	"github.com/villaops/villaops/src/resources"
)

type toolFixture struct {
	store   *resources.MemoryStore
	toolbox *agent.Toolbox
	ctx     context.Context
	ownerID uuid.UUID
}

func newToolFixture(t *testing.T) *toolFixture {
	t.Helper()
	store := resources.NewMemoryStore()
	toolbox, err := NewToolbox(store, nil)
	require.NoError(t, err)

	ownerID := uuid.New()
	return &toolFixture{
		store:   store,
		toolbox: toolbox,
		ctx:     agent.WithIdentity(context.Background(), agent.Identity{UserID: ownerID}),
		ownerID: ownerID,
	}
}

func (f *toolFixture) execute(t *testing.T, name, args string) *aisdk.ToolResponse {
	t.Helper()
	resp, err := f.toolbox.ExecuteTool(f.ctx, &aisdk.ToolCall{
		ID:       "call_test",
		Type:     "function",
		Function: aisdk.FunctionCall{Name: name, Arguments: json.RawMessage(args)},
	})
	require.NoError(t, err)
	return resp
}

func TestNewToolboxRegistersFullSurface(t *testing.T) {
	f := newToolFixture(t)

	for _, name := range []string{
		tool_property.ListName, tool_property.CreateName, tool_property.DeleteName,
		tool_guest.LookupName, tool_guest.CreateName, tool_guest.DeleteName,
		tool_booking.SearchName, tool_booking.CreateName,
	} {
		assert.True(t, f.toolbox.HasTool(name), "tool %s", name)
	}
	assert.Len(t, f.toolbox.Tools(), 8)
}

func TestDestructiveToolsAreDeletions(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{tool_property.DeleteName, tool_guest.DeleteName},
		DestructiveTools())
}

func TestPropertyCreateAndList(t *testing.T) {
	f := newToolFixture(t)

	resp := f.execute(t, tool_property.CreateName,
		`{"name":"Villa Sunset","property_type":"villa","location":"Canggu","max_guests":4,"base_price_per_night":250}`)
	require.False(t, resp.IsError, string(resp.Content))

	var created resources.Property
	require.NoError(t, json.Unmarshal(resp.Content, &created))
	assert.Equal(t, f.ownerID, created.OwnerID)
	assert.Equal(t, "Villa Sunset", created.Name)

	resp = f.execute(t, tool_property.ListName, `{}`)
	require.False(t, resp.IsError)
	var listed tool_property.ListOutput
	require.NoError(t, json.Unmarshal(resp.Content, &listed))
	assert.Equal(t, 1, listed.Count)
}

func TestPropertyCreateRejectsUndeclaredFields(t *testing.T) {
	f := newToolFixture(t)

	resp := f.execute(t, tool_property.CreateName,
		`{"name":"Villa Sunset","property_type":"villa","pool":true}`)
	assert.True(t, resp.IsError)
	assert.Contains(t, string(resp.Content), `unknown field "pool"`)
}

func TestPropertyCreateRejectsUnknownType(t *testing.T) {
	f := newToolFixture(t)

	resp := f.execute(t, tool_property.CreateName, `{"name":"Castle","property_type":"castle"}`)
	assert.True(t, resp.IsError)
	assert.Contains(t, string(resp.Content), "property_type")
}

func TestPropertyCreateSchemaDeclaresEnum(t *testing.T) {
	f := newToolFixture(t)

	tool, ok := f.toolbox.GetTool(tool_property.CreateName)
	require.True(t, ok)
	params := tool.GetParameters()
	require.NotNil(t, params)

	typeSchema, ok := params.Properties["property_type"]
	require.True(t, ok)
	require.NotNil(t, typeSchema.TypeObject)
	assert.Len(t, typeSchema.TypeObject.Enum, 3)
	assert.Contains(t, params.Required, "name")
	assert.Contains(t, params.Required, "property_type")
}

func TestPropertyDeleteValidatesUUID(t *testing.T) {
	f := newToolFixture(t)

	resp := f.execute(t, tool_property.DeleteName, `{"property_id":"not-a-uuid"}`)
	assert.True(t, resp.IsError)
	assert.Contains(t, string(resp.Content), "UUID")

	// Missing required field is caught before the handler runs.
	resp = f.execute(t, tool_property.DeleteName, `{}`)
	assert.True(t, resp.IsError)
	assert.Contains(t, string(resp.Content), "property_id")
}

func TestGuestLifecycle(t *testing.T) {
	f := newToolFixture(t)

	resp := f.execute(t, tool_guest.CreateName, `{"name":"Ana Silva","email":"ana@example.com"}`)
	require.False(t, resp.IsError, string(resp.Content))
	var guest resources.Guest
	require.NoError(t, json.Unmarshal(resp.Content, &guest))

	// Duplicate email surfaces as a readable error response.
	resp = f.execute(t, tool_guest.CreateName, `{"name":"Ana B","email":"ana@example.com"}`)
	assert.True(t, resp.IsError)
	assert.Contains(t, string(resp.Content), "already exists")

	resp = f.execute(t, tool_guest.LookupName, `{"query":"ana"}`)
	require.False(t, resp.IsError)
	var lookup tool_guest.LookupOutput
	require.NoError(t, json.Unmarshal(resp.Content, &lookup))
	assert.Equal(t, 1, lookup.Count)

	resp = f.execute(t, tool_guest.DeleteName, fmt.Sprintf(`{"guest_id":"%s"}`, guest.ID))
	require.False(t, resp.IsError, string(resp.Content))

	resp = f.execute(t, tool_guest.LookupName, `{}`)
	require.False(t, resp.IsError)
	require.NoError(t, json.Unmarshal(resp.Content, &lookup))
	assert.Zero(t, lookup.Count)
}

func TestBookingCreateAndSearch(t *testing.T) {
	f := newToolFixture(t)

	property, err := f.store.CreateProperty(f.ctx, f.ownerID, resources.PropertyInput{
		Name: "Villa Sunset", Type: resources.PropertyTypeVilla, MaxGuests: 4,
	})
	require.NoError(t, err)
	guest, err := f.store.CreateGuest(f.ctx, f.ownerID, resources.GuestInput{
		Name: "Ana", Email: "ana@example.com",
	})
	require.NoError(t, err)

	resp := f.execute(t, tool_booking.CreateName, fmt.Sprintf(
		`{"property_id":"%s","guest_id":"%s","check_in":"2026-07-01","check_out":"2026-07-08","num_guests":2}`,
		property.ID, guest.ID))
	require.False(t, resp.IsError, string(resp.Content))

	var booking resources.Booking
	require.NoError(t, json.Unmarshal(resp.Content, &booking))
	assert.Equal(t, resources.BookingStatusConfirmed, booking.Status)

	// Double booking comes back as an error response for the model.
	resp = f.execute(t, tool_booking.CreateName, fmt.Sprintf(
		`{"property_id":"%s","guest_id":"%s","check_in":"2026-07-03","check_out":"2026-07-05"}`,
		property.ID, guest.ID))
	assert.True(t, resp.IsError)
	assert.Contains(t, string(resp.Content), "already booked")

	resp = f.execute(t, tool_booking.SearchName, fmt.Sprintf(`{"property_id":"%s"}`, property.ID))
	require.False(t, resp.IsError)
	var search tool_booking.SearchOutput
	require.NoError(t, json.Unmarshal(resp.Content, &search))
	assert.Equal(t, 1, search.Count)

	resp = f.execute(t, tool_booking.SearchName, `{"property_id":"nope"}`)
	assert.True(t, resp.IsError)
}

func TestToolsRequireIdentity(t *testing.T) {
	f := newToolFixture(t)

	// No identity on the context: executors answer with an error response.
	resp, err := f.toolbox.ExecuteTool(context.Background(), &aisdk.ToolCall{
		Function: aisdk.FunctionCall{Name: tool_property.ListName, Arguments: json.RawMessage(`{}`)},
	})
	require.NoError(t, err)
	assert.True(t, resp.IsError)
	assert.Contains(t, string(resp.Content), "identity")
}
