package store_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/noc-desk/internal/model"
	"github.com/nhle/noc-desk/internal/store"
	"github.com/nhle/noc-desk/tests/testutil"
)

// markStores returns one fresh instance of every backend that can run
// without external services.
func markStores(t *testing.T) map[string]store.MarkStore {
	t.Helper()

	fs, err := store.NewFileStore(filepath.Join(t.TempDir(), "marks.json"))
	require.NoError(t, err)

	return map[string]store.MarkStore{
		"sqlite": testutil.NewTestStore(t),
		"memory": store.NewMemoryStore(),
		"file":   fs,
	}
}

func TestMarkStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, ms := range markStores(t) {
		t.Run(name, func(t *testing.T) {
			empty, err := ms.LoadMarks(ctx, "dismissed:u1")
			require.NoError(t, err)
			assert.Empty(t, empty)

			require.NoError(t, ms.UpsertMark(ctx, "dismissed:u1", "a", 100))
			require.NoError(t, ms.UpsertMark(ctx, "dismissed:u1", "a", 250))
			require.NoError(t, ms.UpsertMarks(ctx, "dismissed:u1", map[string]int64{"b": 300, "c": 400}))
			require.NoError(t, ms.UpsertMark(ctx, "read:u1", "a", 1))

			got, err := ms.LoadMarks(ctx, "dismissed:u1")
			require.NoError(t, err)
			assert.Equal(t, map[string]int64{"a": 250, "b": 300, "c": 400}, got)

			require.NoError(t, ms.ResetMarks(ctx, "dismissed:u1"))
			got, err = ms.LoadMarks(ctx, "dismissed:u1")
			require.NoError(t, err)
			assert.Empty(t, got)

			other, err := ms.LoadMarks(ctx, "read:u1")
			require.NoError(t, err)
			assert.Equal(t, map[string]int64{"a": 1}, other, "buckets are independent")
		})
	}
}

func TestMarkStoreConcurrentWritersKeepEveryKey(t *testing.T) {
	ctx := context.Background()
	for name, ms := range markStores(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					id := string(rune('a' + i))
					assert.NoError(t, ms.UpsertMark(ctx, "b", id, int64(i)))
				}(i)
			}
			wg.Wait()

			got, err := ms.LoadMarks(ctx, "b")
			require.NoError(t, err)
			assert.Len(t, got, 20)
		})
	}
}

func TestLoadMarksReturnsCopy(t *testing.T) {
	ctx := context.Background()
	for name, ms := range markStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, ms.UpsertMark(ctx, "b", "x", 1))
			got, err := ms.LoadMarks(ctx, "b")
			require.NoError(t, err)
			got["y"] = 2

			again, err := ms.LoadMarks(ctx, "b")
			require.NoError(t, err)
			assert.Equal(t, map[string]int64{"x": 1}, again)
		})
	}
}

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "marks.json")

	fs, err := store.NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, fs.UpsertMark(ctx, "dismissed:u1", "n1", 42))

	reopened, err := store.NewFileStore(path)
	require.NoError(t, err)
	got, err := reopened.LoadMarks(ctx, "dismissed:u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"n1": 42}, got)
}

func TestFileStoreSetsCorruptFileAside(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "marks.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := store.Open(model.PersistenceConfig{Driver: model.DriverFile, Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	marks, err := s.LoadMarks(ctx, "dismissed:u1")
	require.NoError(t, err)
	assert.Empty(t, marks)

	aside, err := os.ReadFile(path + ".corrupt")
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(aside))

	require.NoError(t, s.UpsertMark(ctx, "dismissed:u1", "n1", 7))
	reopened, err := store.NewFileStore(path)
	require.NoError(t, err)
	got, err := reopened.LoadMarks(ctx, "dismissed:u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"n1": 7}, got)
}

func TestTicketCacheReplacesSnapshot(t *testing.T) {
	ctx := context.Background()
	caches := map[string]store.TicketCache{
		"sqlite": testutil.NewTestStore(t),
		"memory": store.NewMemoryStore(),
	}

	day := func(d int) time.Time { return time.Date(2024, 3, d, 9, 0, 0, 0, time.UTC) }

	for name, c := range caches {
		t.Run(name, func(t *testing.T) {
			first := []model.Ticket{
				{ID: "s1", Status: model.StatusUnassigned, Volume: "10", Date: day(1)},
				{ID: "s2", Status: model.StatusAssigned, AssignedTo: "u1", Volume: "20", Date: day(3)},
			}
			require.NoError(t, c.ReplaceTickets(ctx, model.KindSMS, first))
			require.NoError(t, c.ReplaceTickets(ctx, model.KindVoice, []model.Ticket{{ID: "v1", Date: day(2)}}))

			got, err := c.GetTickets(ctx, model.KindSMS)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "s2", got[0].ID, "newest first")
			assert.Equal(t, model.KindSMS, got[0].Kind)
			assert.Equal(t, "u1", got[0].AssignedTo)
			assert.True(t, got[0].Date.Equal(day(3)))

			require.NoError(t, c.ReplaceTickets(ctx, model.KindSMS, []model.Ticket{{ID: "s3", Date: day(4)}}))
			got, err = c.GetTickets(ctx, model.KindSMS)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "s3", got[0].ID)

			voice, err := c.GetTickets(ctx, model.KindVoice)
			require.NoError(t, err)
			assert.Len(t, voice, 1)
		})
	}
}

func TestOpenDrivers(t *testing.T) {
	s, err := store.Open(model.PersistenceConfig{Driver: model.DriverMemory})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = store.Open(model.PersistenceConfig{
		Driver: model.DriverFile,
		Path:   filepath.Join(t.TempDir(), "m.json"),
	})
	require.NoError(t, err)
	require.NoError(t, s.UpsertMark(context.Background(), "b", "x", 1))
	require.NoError(t, s.Close())

	_, err = store.Open(model.PersistenceConfig{Driver: model.DriverRedis})
	assert.Error(t, err)

	_, err = store.Open(model.PersistenceConfig{Driver: "etcd"})
	assert.Error(t, err)
}
