package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory_ConcurrentInsertsYieldUniqueIDs(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	const workers = 16
	const perWorker = 50

	ids := make(chan string, workers*perWorker*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				app, err := s.CreateApplication(ctx, sampleApplication("Same"))
				assert.NoError(t, err)
				ids <- app.ID

				c, err := s.CreateContact(ctx, sampleContact("Same"))
				assert.NoError(t, err)
				ids <- c.ID

				_, _ = s.ListApplications(ctx)
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{})
	for id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, workers*perWorker*2)

	apps, err := s.ListApplications(ctx)
	require.NoError(t, err)
	assert.Len(t, apps, workers*perWorker)
}

func TestInMemory_ReturnedRecordsAreCopies(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	created, err := s.CreateContact(ctx, sampleContact("Jane"))
	require.NoError(t, err)
	created.Message = "tampered"

	got, err := s.GetContact(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Message)

	list, err := s.ListContacts(ctx)
	require.NoError(t, err)
	list[0].Name = "tampered"

	again, err := s.GetContact(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", again.Name)
}
