package resources

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

var propertyTypes = map[string]struct{}{
	PropertyTypeVilla:      {},
	PropertyTypeHotel:      {},
	PropertyTypeGuesthouse: {},
}

// MemoryStore is an in-process Store implementation. It is safe for
// concurrent use and is the default backend for development and tests.
type MemoryStore struct {
	mu         sync.RWMutex
	properties map[uuid.UUID]Property
	guests     map[uuid.UUID]Guest
	bookings   map[uuid.UUID]Booking
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		properties: make(map[uuid.UUID]Property),
		guests:     make(map[uuid.UUID]Guest),
		bookings:   make(map[uuid.UUID]Booking),
	}
}

func (s *MemoryStore) ListProperties(ctx context.Context, ownerID uuid.UUID) ([]Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Property
	for _, p := range s.properties {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) CreateProperty(ctx context.Context, ownerID uuid.UUID, input PropertyInput) (*Property, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: property name is required", ErrInvalidInput)
	}
	if _, ok := propertyTypes[input.Type]; !ok {
		return nil, fmt.Errorf("%w: property_type must be villa, hotel, or guesthouse", ErrInvalidInput)
	}
	if input.MaxGuests < 0 {
		return nil, fmt.Errorf("%w: max_guests must not be negative", ErrInvalidInput)
	}
	if input.PricePerNight < 0 {
		return nil, fmt.Errorf("%w: base_price_per_night must not be negative", ErrInvalidInput)
	}

	p := Property{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		Name:          strings.TrimSpace(input.Name),
		Type:          input.Type,
		Location:      strings.TrimSpace(input.Location),
		MaxGuests:     input.MaxGuests,
		PricePerNight: input.PricePerNight,
		CreatedAt:     time.Now().UTC(),
	}

	s.mu.Lock()
	s.properties[p.ID] = p
	s.mu.Unlock()
	return &p, nil
}

// DeleteProperty removes a property and its bookings.
func (s *MemoryStore) DeleteProperty(ctx context.Context, ownerID, propertyID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.properties[propertyID]
	if !ok || p.OwnerID != ownerID {
		return fmt.Errorf("%w: property %s", ErrNotFound, propertyID)
	}
	delete(s.properties, propertyID)
	for id, b := range s.bookings {
		if b.PropertyID == propertyID {
			delete(s.bookings, id)
		}
	}
	return nil
}

func (s *MemoryStore) LookupGuests(ctx context.Context, ownerID uuid.UUID, query string) ([]Guest, error) {
	needle := strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Guest
	for _, g := range s.guests {
		if g.OwnerID != ownerID {
			continue
		}
		if needle == "" ||
			strings.Contains(strings.ToLower(g.Name), needle) ||
			strings.Contains(strings.ToLower(g.Email), needle) ||
			strings.Contains(g.Phone, needle) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) CreateGuest(ctx context.Context, ownerID uuid.UUID, input GuestInput) (*Guest, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: guest name is required", ErrInvalidInput)
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid guest email is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Email is unique per owner.
	for _, g := range s.guests {
		if g.OwnerID == ownerID && g.Email == email {
			return nil, fmt.Errorf("%w: guest with email %s already exists", ErrConflict, email)
		}
	}

	g := Guest{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(input.Name),
		Email:     email,
		Phone:     strings.TrimSpace(input.Phone),
		CreatedAt: time.Now().UTC(),
	}
	s.guests[g.ID] = g
	return &g, nil
}

// DeleteGuest removes a guest and their bookings.
func (s *MemoryStore) DeleteGuest(ctx context.Context, ownerID, guestID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.guests[guestID]
	if !ok || g.OwnerID != ownerID {
		return fmt.Errorf("%w: guest %s", ErrNotFound, guestID)
	}
	delete(s.guests, guestID)
	for id, b := range s.bookings {
		if b.GuestID == guestID {
			delete(s.bookings, id)
		}
	}
	return nil
}

func (s *MemoryStore) SearchBookings(ctx context.Context, ownerID uuid.UUID, filter BookingFilter) ([]Booking, error) {
	from, to, err := parseRange(filter.From, filter.To)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Booking
	for _, b := range s.bookings {
		if b.OwnerID != ownerID {
			continue
		}
		if filter.PropertyID != uuid.Nil && b.PropertyID != filter.PropertyID {
			continue
		}
		if filter.GuestID != uuid.Nil && b.GuestID != filter.GuestID {
			continue
		}
		in, _ := time.Parse(dateLayout, b.CheckIn)
		outD, _ := time.Parse(dateLayout, b.CheckOut)
		if !from.IsZero() && !outD.After(from) {
			continue
		}
		if !to.IsZero() && !in.Before(to) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckIn < out[j].CheckIn })
	return out, nil
}

func (s *MemoryStore) CreateBooking(ctx context.Context, ownerID uuid.UUID, input BookingInput) (*Booking, error) {
	checkIn, err := time.Parse(dateLayout, input.CheckIn)
	if err != nil {
		return nil, fmt.Errorf("%w: check_in must be a YYYY-MM-DD date", ErrInvalidInput)
	}
	checkOut, err := time.Parse(dateLayout, input.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("%w: check_out must be a YYYY-MM-DD date", ErrInvalidInput)
	}
	if !checkOut.After(checkIn) {
		return nil, fmt.Errorf("%w: check_out must be after check_in", ErrInvalidInput)
	}
	numGuests := input.NumGuests
	if numGuests == 0 {
		numGuests = 1
	}
	if numGuests < 1 {
		return nil, fmt.Errorf("%w: num_guests must be at least 1", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.properties[input.PropertyID]
	if !ok || p.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: property %s", ErrNotFound, input.PropertyID)
	}
	g, ok := s.guests[input.GuestID]
	if !ok || g.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: guest %s", ErrNotFound, input.GuestID)
	}
	if p.MaxGuests > 0 && numGuests > p.MaxGuests {
		return nil, fmt.Errorf("%w: %s sleeps at most %d guests", ErrInvalidInput, p.Name, p.MaxGuests)
	}

	// Check-out day is exclusive, so back-to-back stays do not overlap.
	for _, b := range s.bookings {
		if b.PropertyID != input.PropertyID || b.Status == BookingStatusCancelled {
			continue
		}
		in, _ := time.Parse(dateLayout, b.CheckIn)
		out, _ := time.Parse(dateLayout, b.CheckOut)
		if checkIn.Before(out) && in.Before(checkOut) {
			return nil, fmt.Errorf("%w: %s is already booked %s to %s", ErrConflict, p.Name, b.CheckIn, b.CheckOut)
		}
	}

	b := Booking{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		PropertyID: input.PropertyID,
		GuestID:    input.GuestID,
		CheckIn:    input.CheckIn,
		CheckOut:   input.CheckOut,
		NumGuests:  numGuests,
		Status:     BookingStatusConfirmed,
		CreatedAt:  time.Now().UTC(),
	}
	s.bookings[b.ID] = b
	return &b, nil
}

func parseRange(from, to string) (time.Time, time.Time, error) {
	var f, t time.Time
	var err error
	if from != "" {
		if f, err = time.Parse(dateLayout, from); err != nil {
			return f, t, fmt.Errorf("%w: from must be a YYYY-MM-DD date", ErrInvalidInput)
		}
	}
	if to != "" {
		if t, err = time.Parse(dateLayout, to); err != nil {
			return f, t, fmt.Errorf("%w: to must be a YYYY-MM-DD date", ErrInvalidInput)
		}
	}
	return f, t, nil
}
