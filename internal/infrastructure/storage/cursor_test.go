package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ChannelSync/internal/domain"
)

func TestFileCursorStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", ".sync_state.json")
	store := NewFileCursorStore(path)
	ctx := context.Background()

	empty, err := store.Load(ctx, "en")
	require.NoError(t, err)
	assert.Equal(t, domain.SyncCursor{}, empty)

	when := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, "en", domain.SyncCursor{LastMessageID: 120, LastRunAt: when, ArticlesSynced: 4}))
	require.NoError(t, store.Save(ctx, "ar", domain.SyncCursor{LastMessageID: 7, LastRunAt: when, ArticlesSynced: 1}))

	got, err := store.Load(ctx, "en")
	require.NoError(t, err)
	assert.Equal(t, int64(120), got.LastMessageID)
	assert.Equal(t, 4, got.ArticlesSynced)
	assert.True(t, got.LastRunAt.Equal(when))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.EqualValues(t, 7, doc["ar"]["last_message_id"])
	assert.Equal(t, "2025-03-01T12:00:00Z", doc["ar"]["last_sync"])
	assert.EqualValues(t, 1, doc["ar"]["articles_synced"])
}

func TestFileCursorStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileCursorStore(path).Load(context.Background(), "en")
	require.Error(t, err)
}

func TestRedisCursorStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisCursorStore(client, "")
	ctx := context.Background()

	empty, err := store.Load(ctx, "en")
	require.NoError(t, err)
	assert.Equal(t, domain.SyncCursor{}, empty)

	when := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, "en", domain.SyncCursor{LastMessageID: 55, LastRunAt: when, ArticlesSynced: 3}))

	assert.Equal(t, "55", mr.HGet("channelsync:cursor:en", "last_message_id"))

	got, err := store.Load(ctx, "en")
	require.NoError(t, err)
	assert.Equal(t, int64(55), got.LastMessageID)
	assert.Equal(t, 3, got.ArticlesSynced)
	assert.True(t, got.LastRunAt.Equal(when))
}

func TestRedisCursorStoreBadValue(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.HSet("sync:cursor:en", "last_message_id", "abc")
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	_, err := NewRedisCursorStore(client, "sync").Load(context.Background(), "en")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "last_message_id")
}
