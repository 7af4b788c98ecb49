package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcnwokike/API-Commander/apicmd/request"
	"github.com/gcnwokike/API-Commander/apicmd/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(storage.NewMemStorage(), 60)
	require.NoError(t, err)
	return store
}

func TestStore(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	t.Run("empty_store_has_no_active", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		assert.Empty(t, store.ActiveKey())
		_, ok := store.Active()
		assert.False(t, ok)
		assert.Empty(t, store.ListAll())
	})

	t.Run("create_activates_and_names", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		sess, err := store.Create(nil, now)
		require.NoError(t, err)

		assert.Equal(t, sess.Key, store.ActiveKey())
		assert.Equal(t, "POST: [No URL] | just now", sess.Name)
		assert.Equal(t, now.UnixMilli(), sess.Timestamp)
		require.NotNil(t, sess.State)
		assert.Equal(t, request.MethodPost, sess.State.Method)
	})

	t.Run("save_active_updates_name_and_timestamp", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		sess, err := store.Create(nil, now)
		require.NoError(t, err)

		state := request.DefaultSpec()
		state.Method = request.MethodGet
		state.URL = "https://api.example.com/v1"
		later := now.Add(time.Minute)
		require.NoError(t, store.SaveActive(state, later))

		loaded, ok := store.Get(sess.Key)
		require.True(t, ok)
		assert.Equal(t, "GET: https://api.example.com/v1 | just now", loaded.Name)
		assert.Equal(t, later.UnixMilli(), loaded.Timestamp)
		assert.Equal(t, "https://api.example.com/v1", loaded.State.URL)
	})

	t.Run("save_without_active_is_noop", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		require.NoError(t, store.SaveActive(request.DefaultSpec(), now))
		assert.Empty(t, store.ListAll())
	})

	t.Run("switch", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		first, err := store.Create(nil, now)
		require.NoError(t, err)
		second, err := store.Create(nil, now.Add(time.Second))
		require.NoError(t, err)
		require.Equal(t, second.Key, store.ActiveKey())

		switched, err := store.Switch(first.Key)
		require.NoError(t, err)
		assert.Equal(t, first.Key, switched.Key)
		assert.Equal(t, first.Key, store.ActiveKey())

		_, err = store.Switch("session_0_missing")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("list_sorted_most_recent_first", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		oldest, err := store.Create(nil, now)
		require.NoError(t, err)
		newest, err := store.Create(nil, now.Add(2*time.Second))
		require.NoError(t, err)
		middle, err := store.Create(nil, now.Add(time.Second))
		require.NoError(t, err)

		sessions := store.ListAll()
		require.Len(t, sessions, 3)
		assert.Equal(t, newest.Key, sessions[0].Key)
		assert.Equal(t, middle.Key, sessions[1].Key)
		assert.Equal(t, oldest.Key, sessions[2].Key)
	})

	t.Run("delete_inactive_keeps_active", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		first, err := store.Create(nil, now)
		require.NoError(t, err)
		second, err := store.Create(nil, now.Add(time.Second))
		require.NoError(t, err)

		require.NoError(t, store.Delete(first.Key))
		assert.Equal(t, second.Key, store.ActiveKey())
		assert.Len(t, store.ListAll(), 1)
	})

	t.Run("delete_active_promotes_most_recent", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		oldest, err := store.Create(nil, now)
		require.NoError(t, err)
		middle, err := store.Create(nil, now.Add(time.Second))
		require.NoError(t, err)
		newest, err := store.Create(nil, now.Add(2*time.Second))
		require.NoError(t, err)
		_ = oldest

		require.NoError(t, store.Delete(newest.Key))
		assert.Equal(t, middle.Key, store.ActiveKey())
	})

	t.Run("delete_last_session_clears_active", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		sess, err := store.Create(nil, now)
		require.NoError(t, err)

		require.NoError(t, store.Delete(sess.Key))
		assert.Empty(t, store.ActiveKey())
		assert.Empty(t, store.ListAll())
		// deleting everything must not auto-create a replacement
		assert.Empty(t, store.ListAll())
	})

	t.Run("delete_missing", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		assert.ErrorIs(t, store.Delete("session_0_missing"), ErrSessionNotFound)
	})

	t.Run("active_survives_reopen", func(t *testing.T) {
		t.Parallel()

		backend := storage.NewMemStorage()
		store, err := NewStore(backend, 60)
		require.NoError(t, err)
		first, err := store.Create(nil, now)
		require.NoError(t, err)
		_, err = store.Create(nil, now.Add(time.Second))
		require.NoError(t, err)
		_, err = store.Switch(first.Key)
		require.NoError(t, err)

		reopened, err := NewStore(backend, 60)
		require.NoError(t, err)
		assert.Equal(t, first.Key, reopened.ActiveKey())
	})

	t.Run("dangling_active_marker_cleared", func(t *testing.T) {
		t.Parallel()

		backend := storage.NewMemStorage()
		store, err := NewStore(backend, 60)
		require.NoError(t, err)
		sess, err := store.Create(nil, now)
		require.NoError(t, err)
		require.NoError(t, backend.Remove(sess.Key))

		reopened, err := NewStore(backend, 60)
		require.NoError(t, err)
		assert.Empty(t, reopened.ActiveKey())
	})

	t.Run("corrupt_record_skipped_in_list", func(t *testing.T) {
		t.Parallel()

		backend := storage.NewMemStorage()
		store, err := NewStore(backend, 60)
		require.NoError(t, err)
		sess, err := store.Create(nil, now)
		require.NoError(t, err)
		require.NoError(t, backend.Set("session_0_corrupt", []byte("not msgpack")))

		sessions := store.ListAll()
		require.Len(t, sessions, 1)
		assert.Equal(t, sess.Key, sessions[0].Key)
	})

	t.Run("concurrent_access", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		_, err := store.Create(nil, now)
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				state := request.DefaultSpec()
				state.URL = "https://api.example.com/v1"
				assert.NoError(t, store.SaveActive(state, now.Add(time.Duration(i)*time.Millisecond)))
				store.ListAll()
				store.Active()
			}(i)
		}
		wg.Wait()
		assert.Len(t, store.ListAll(), 1)
	})
}

func TestDebouncer(t *testing.T) {
	t.Parallel()

	t.Run("burst_coalesced_to_one_call", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		debouncer := NewDebouncer(20*time.Millisecond, func() { calls.Add(1) })

		for i := 0; i < 5; i++ {
			debouncer.Trigger()
		}
		assert.Eventually(t, func() bool {
			return calls.Load() == 1
		}, time.Second, 5*time.Millisecond)
		time.Sleep(40 * time.Millisecond) // no further calls after the window
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("coalesced_write_carries_latest_state", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var pending *request.Spec
		var saved []string

		debouncer := NewDebouncer(20*time.Millisecond, func() {
			mu.Lock()
			defer mu.Unlock()
			saved = append(saved, pending.URL)
		})

		urls := []string{
			"https://api.example.com/v1",
			"https://api.example.com/v2",
			"https://api.example.com/v3",
		}
		for _, url := range urls {
			state := request.DefaultSpec()
			state.URL = url
			mu.Lock()
			pending = state
			mu.Unlock()
			debouncer.Trigger()
		}

		assert.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(saved) == 1
		}, time.Second, 5*time.Millisecond)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []string{"https://api.example.com/v3"}, saved)
	})

	t.Run("flush_runs_pending_immediately", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		debouncer := NewDebouncer(time.Hour, func() { calls.Add(1) })

		debouncer.Trigger()
		debouncer.Flush()
		assert.Equal(t, int32(1), calls.Load())

		debouncer.Flush() // nothing pending
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("stop_cancels_pending", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		debouncer := NewDebouncer(10*time.Millisecond, func() { calls.Add(1) })

		debouncer.Trigger()
		debouncer.Stop()
		time.Sleep(30 * time.Millisecond)
		assert.Equal(t, int32(0), calls.Load())
	})
}
