package game

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"htmx-tictactoe/models"
	"htmx-tictactoe/view"
)

// newRedisClient starts a throwaway redis container for the test.
func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	if err = pool.Client.Ping(); err != nil {
		t.Skipf("docker not available: %v", err)
	}

	resource, err := pool.Run("redis", "7-alpine", nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("could not purge redis container: %v", err)
		}
	})

	addr := fmt.Sprintf("localhost:%s", resource.GetPort("6379/tcp"))

	var client *redis.Client
	err = pool.Retry(func() error {
		var connErr error
		client, connErr = ConnectRedis(context.Background(), addr, "", 0)
		return connErr
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestRedisStore(t *testing.T) {
	client := newRedisClient(t)
	ctx := context.Background()
	store := NewRedisStore(client, time.Minute)

	t.Run("Create and Get", func(t *testing.T) {
		session := NewSession(view.Initial())

		require.NoError(t, store.Create(ctx, session))
		require.Error(t, store.Create(ctx, session), "duplicate create must fail")

		found, err := store.Get(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, session.ID, found.ID)
		assert.Equal(t, session.State, found.State)
		assert.Equal(t, session.View, found.View)

		ttl, err := client.TTL(ctx, sessionKey(session.ID)).Result()
		require.NoError(t, err)
		assert.Positive(t, ttl)
	})

	t.Run("Get NotFound", func(t *testing.T) {
		_, err := store.Get(ctx, "9999999")

		require.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("Update", func(t *testing.T) {
		session := NewSession(view.Initial())
		require.NoError(t, store.Create(ctx, session))

		updated, err := store.Update(ctx, session.ID, func(s *models.Session) error {
			var effects []models.Effect
			s.State, effects = Move(s.State, 0)
			return view.Apply(&s.View, effects)
		})
		require.NoError(t, err)
		assert.Equal(t, models.CellCross, updated.State.Board[0])
		assert.Equal(t, "cross", updated.View.Cells[0])
		assert.Equal(t, int64(1), updated.Version)

		found, err := store.Get(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, updated.State, found.State)
		assert.Equal(t, updated.Version, found.Version)
	})

	t.Run("Concurrent updates do not lose moves", func(t *testing.T) {
		session := NewSession(view.Initial())
		require.NoError(t, store.Create(ctx, session))

		cells := []int{0, 1, 2, 4, 3, 5, 7, 6}

		var wg sync.WaitGroup
		for _, index := range cells {
			wg.Add(1)
			go func(index int) {
				defer wg.Done()
				_, err := store.Update(ctx, session.ID, func(s *models.Session) error {
					s.State.Board[index] = models.CellCross
					return nil
				})
				assert.NoError(t, err)
			}(index)
		}
		wg.Wait()

		found, err := store.Get(ctx, session.ID)
		require.NoError(t, err)
		for _, index := range cells {
			assert.Equal(t, models.CellCross, found.State.Board[index], "cell %d", index)
		}
		assert.Equal(t, int64(len(cells)), found.Version)
	})

	t.Run("Delete", func(t *testing.T) {
		session := NewSession(view.Initial())
		require.NoError(t, store.Create(ctx, session))

		require.NoError(t, store.Delete(ctx, session.ID))
		require.ErrorIs(t, store.Delete(ctx, session.ID), ErrSessionNotFound)

		_, err := store.Get(ctx, session.ID)
		require.ErrorIs(t, err, ErrSessionNotFound)
	})
}
