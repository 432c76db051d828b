package resources

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProperty(t *testing.T, store *MemoryStore, ownerID uuid.UUID, name string, maxGuests int) *Property {
	t.Helper()
	p, err := store.CreateProperty(context.Background(), ownerID, PropertyInput{
		Name:      name,
		Type:      PropertyTypeVilla,
		MaxGuests: maxGuests,
	})
	require.NoError(t, err)
	return p
}

func seedGuest(t *testing.T, store *MemoryStore, ownerID uuid.UUID, name, email string) *Guest {
	t.Helper()
	g, err := store.CreateGuest(context.Background(), ownerID, GuestInput{Name: name, Email: email})
	require.NoError(t, err)
	return g
}

func TestCreatePropertyValidation(t *testing.T) {
	store := NewMemoryStore()
	ownerID := uuid.New()

	tests := []struct {
		name    string
		input   PropertyInput
		wantErr error
	}{
		{name: "valid villa", input: PropertyInput{Name: "Villa Sunset", Type: PropertyTypeVilla}},
		{name: "valid hotel", input: PropertyInput{Name: "Grand Hotel", Type: PropertyTypeHotel}},
		{name: "missing name", input: PropertyInput{Type: PropertyTypeVilla}, wantErr: ErrInvalidInput},
		{name: "blank name", input: PropertyInput{Name: "   ", Type: PropertyTypeVilla}, wantErr: ErrInvalidInput},
		{name: "unknown type", input: PropertyInput{Name: "x", Type: "castle"}, wantErr: ErrInvalidInput},
		{name: "negative guests", input: PropertyInput{Name: "x", Type: PropertyTypeVilla, MaxGuests: -1}, wantErr: ErrInvalidInput},
		{name: "negative price", input: PropertyInput{Name: "x", Type: PropertyTypeVilla, PricePerNight: -10}, wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := store.CreateProperty(context.Background(), ownerID, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, p.ID)
			assert.Equal(t, ownerID, p.OwnerID)
		})
	}
}

func TestListPropertiesOwnerScoped(t *testing.T) {
	store := NewMemoryStore()
	ownerID := uuid.New()

	seedProperty(t, store, ownerID, "Zinnia", 4)
	seedProperty(t, store, ownerID, "Aster", 2)
	seedProperty(t, store, uuid.New(), "Other Owner Villa", 2)

	props, err := store.ListProperties(context.Background(), ownerID)
	require.NoError(t, err)
	require.Len(t, props, 2)
	// Sorted by name.
	assert.Equal(t, "Aster", props[0].Name)
	assert.Equal(t, "Zinnia", props[1].Name)
}

func TestDeletePropertyCascadesBookings(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	ownerID := uuid.New()
	p := seedProperty(t, store, ownerID, "Villa Sunset", 4)
	g := seedGuest(t, store, ownerID, "Ana", "ana@example.com")

	_, err := store.CreateBooking(ctx, ownerID, BookingInput{
		PropertyID: p.ID, GuestID: g.ID, CheckIn: "2026-07-01", CheckOut: "2026-07-08",
	})
	require.NoError(t, err)

	// Another owner cannot delete it.
	err = store.DeleteProperty(ctx, uuid.New(), p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.DeleteProperty(ctx, ownerID, p.ID))

	bookings, err := store.SearchBookings(ctx, ownerID, BookingFilter{})
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestCreateGuestEmailUniquePerOwner(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	ownerID := uuid.New()

	seedGuest(t, store, ownerID, "Ana", "ana@example.com")

	// Same email, case-insensitive, conflicts for the same owner.
	_, err := store.CreateGuest(ctx, ownerID, GuestInput{Name: "Ana B", Email: "Ana@Example.com"})
	assert.ErrorIs(t, err, ErrConflict)

	// A different owner may register the same email.
	_, err = store.CreateGuest(ctx, uuid.New(), GuestInput{Name: "Ana", Email: "ana@example.com"})
	assert.NoError(t, err)

	// Validation.
	_, err = store.CreateGuest(ctx, ownerID, GuestInput{Name: "", Email: "x@y.com"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = store.CreateGuest(ctx, ownerID, GuestInput{Name: "Bo", Email: "not-an-email"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLookupGuests(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	ownerID := uuid.New()

	seedGuest(t, store, ownerID, "Ana Silva", "ana@example.com")
	seedGuest(t, store, ownerID, "Bo Chen", "bo@example.com")
	seedGuest(t, store, uuid.New(), "Ana Other", "ana@other.com")

	// Empty query returns all of the owner's guests, sorted by name.
	all, err := store.LookupGuests(ctx, ownerID, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Ana Silva", all[0].Name)

	// Name match is case-insensitive.
	got, err := store.LookupGuests(ctx, ownerID, "ana")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ana@example.com", got[0].Email)

	// Email substring matches too.
	got, err = store.LookupGuests(ctx, ownerID, "bo@")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Bo Chen", got[0].Name)
}

func TestDeleteGuestCascadesBookings(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	ownerID := uuid.New()
	p := seedProperty(t, store, ownerID, "Villa Sunset", 4)
	g := seedGuest(t, store, ownerID, "Ana", "ana@example.com")

	_, err := store.CreateBooking(ctx, ownerID, BookingInput{
		PropertyID: p.ID, GuestID: g.ID, CheckIn: "2026-07-01", CheckOut: "2026-07-08",
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteGuest(ctx, ownerID, g.ID))

	bookings, err := store.SearchBookings(ctx, ownerID, BookingFilter{})
	require.NoError(t, err)
	assert.Empty(t, bookings)

	err = store.DeleteGuest(ctx, ownerID, g.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateBookingValidation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	ownerID := uuid.New()
	p := seedProperty(t, store, ownerID, "Villa Sunset", 4)
	g := seedGuest(t, store, ownerID, "Ana", "ana@example.com")

	tests := []struct {
		name    string
		input   BookingInput
		wantErr error
	}{
		{
			name:  "valid",
			input: BookingInput{PropertyID: p.ID, GuestID: g.ID, CheckIn: "2026-07-01", CheckOut: "2026-07-08"},
		},
		{
			name:    "bad check_in",
			input:   BookingInput{PropertyID: p.ID, GuestID: g.ID, CheckIn: "July 1st", CheckOut: "2026-07-08"},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "check_out not after check_in",
			input:   BookingInput{PropertyID: p.ID, GuestID: g.ID, CheckIn: "2026-08-08", CheckOut: "2026-08-08"},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown property",
			input:   BookingInput{PropertyID: uuid.New(), GuestID: g.ID, CheckIn: "2026-08-01", CheckOut: "2026-08-08"},
			wantErr: ErrNotFound,
		},
		{
			name:    "unknown guest",
			input:   BookingInput{PropertyID: p.ID, GuestID: uuid.New(), CheckIn: "2026-08-01", CheckOut: "2026-08-08"},
			wantErr: ErrNotFound,
		},
		{
			name:    "too many guests",
			input:   BookingInput{PropertyID: p.ID, GuestID: g.ID, CheckIn: "2026-08-01", CheckOut: "2026-08-08", NumGuests: 9},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := store.CreateBooking(ctx, ownerID, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, BookingStatusConfirmed, b.Status)
			assert.Equal(t, 1, b.NumGuests) // defaulted
		})
	}
}

func TestCreateBookingOverlap(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	ownerID := uuid.New()
	p := seedProperty(t, store, ownerID, "Villa Sunset", 4)
	other := seedProperty(t, store, ownerID, "Villa Dawn", 4)
	g := seedGuest(t, store, ownerID, "Ana", "ana@example.com")

	_, err := store.CreateBooking(ctx, ownerID, BookingInput{
		PropertyID: p.ID, GuestID: g.ID, CheckIn: "2026-07-10", CheckOut: "2026-07-20",
	})
	require.NoError(t, err)

	// Any overlap with the stay conflicts.
	for _, dates := range [][2]string{
		{"2026-07-15", "2026-07-25"},
		{"2026-07-05", "2026-07-11"},
		{"2026-07-12", "2026-07-14"},
		{"2026-07-01", "2026-07-30"},
	} {
		_, err := store.CreateBooking(ctx, ownerID, BookingInput{
			PropertyID: p.ID, GuestID: g.ID, CheckIn: dates[0], CheckOut: dates[1],
		})
		assert.ErrorIs(t, err, ErrConflict, "dates %v", dates)
	}

	// Check-out day is exclusive: a back-to-back stay is fine.
	_, err = store.CreateBooking(ctx, ownerID, BookingInput{
		PropertyID: p.ID, GuestID: g.ID, CheckIn: "2026-07-20", CheckOut: "2026-07-25",
	})
	assert.NoError(t, err)

	// A different property never conflicts.
	_, err = store.CreateBooking(ctx, ownerID, BookingInput{
		PropertyID: other.ID, GuestID: g.ID, CheckIn: "2026-07-12", CheckOut: "2026-07-14",
	})
	assert.NoError(t, err)
}

func TestSearchBookings(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	ownerID := uuid.New()
	p1 := seedProperty(t, store, ownerID, "Villa Sunset", 4)
	p2 := seedProperty(t, store, ownerID, "Villa Dawn", 4)
	g := seedGuest(t, store, ownerID, "Ana", "ana@example.com")

	mustBook := func(propertyID uuid.UUID, in, out string) {
		t.Helper()
		_, err := store.CreateBooking(ctx, ownerID, BookingInput{
			PropertyID: propertyID, GuestID: g.ID, CheckIn: in, CheckOut: out,
		})
		require.NoError(t, err)
	}
	mustBook(p1.ID, "2026-07-01", "2026-07-08")
	mustBook(p1.ID, "2026-09-01", "2026-09-08")
	mustBook(p2.ID, "2026-07-03", "2026-07-05")

	all, err := store.SearchBookings(ctx, ownerID, BookingFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byProperty, err := store.SearchBookings(ctx, ownerID, BookingFilter{PropertyID: p2.ID})
	require.NoError(t, err)
	require.Len(t, byProperty, 1)
	assert.Equal(t, p2.ID, byProperty[0].PropertyID)

	// A date window keeps only stays that intersect it.
	july, err := store.SearchBookings(ctx, ownerID, BookingFilter{From: "2026-07-01", To: "2026-08-01"})
	require.NoError(t, err)
	assert.Len(t, july, 2)

	_, err = store.SearchBookings(ctx, ownerID, BookingFilter{From: "soon"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	// Another owner sees nothing.
	none, err := store.SearchBookings(ctx, uuid.New(), BookingFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)
}
