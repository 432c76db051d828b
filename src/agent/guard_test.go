package agent

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResumeGuardSingleFlight(t *testing.T) {
	guard := NewResumeGuard()
	convID := uuid.New()

	release, err := guard.Acquire(convID)
	require.NoError(t, err)

	_, err = guard.Acquire(convID)
	assert.ErrorIs(t, err, ErrResumeInFlight)

	// A different conversation is unaffected.
	otherRelease, err := guard.Acquire(uuid.New())
	require.NoError(t, err)
	otherRelease()

	release()
	release2, err := guard.Acquire(convID)
	require.NoError(t, err)
	release2()
}

func TestResumeGuardReleaseIdempotent(t *testing.T) {
	guard := NewResumeGuard()
	convID := uuid.New()

	release, err := guard.Acquire(convID)
	require.NoError(t, err)
	release()
	release()

	// A double release must not free a claim held by someone else.
	second, err := guard.Acquire(convID)
	require.NoError(t, err)
	release()
	_, err = guard.Acquire(convID)
	assert.ErrorIs(t, err, ErrResumeInFlight)
	second()
}

func TestResumeGuardConcurrentAcquire(t *testing.T) {
	guard := NewResumeGuard()
	convID := uuid.New()

	const workers = 16
	var wg sync.WaitGroup
	wins := make(chan func(), workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if release, err := guard.Acquire(convID); err == nil {
				wins <- release
			}
		}()
	}
	wg.Wait()
	close(wins)

	var releases []func()
	for r := range wins {
		releases = append(releases, r)
	}
	require.Len(t, releases, 1)
	releases[0]()
}

func TestGateRequires(t *testing.T) {
	gate := NewGate("property_delete", "guest_delete")

	assert.True(t, gate.Requires("property_delete"))
	assert.True(t, gate.Requires("guest_delete"))
	assert.False(t, gate.Requires("property_list"))

	// A nil gate gates nothing.
	var none *Gate
	assert.False(t, none.Requires("property_delete"))
}

func TestIdentityRoundTrip(t *testing.T) {
	id := Identity{UserID: uuid.New()}
	ctx := WithIdentity(context.Background(), id)

	got, ok := IdentityFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = IdentityFrom(context.Background())
	assert.False(t, ok)
}
