package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"ChannelSync/internal/domain"
	"ChannelSync/internal/ports"
)

const (
	fieldLastMessageID  = "last_message_id"
	fieldLastSync       = "last_sync"
	fieldArticlesSynced = "articles_synced"
)

// RedisCursorStore keeps one hash per channel under {prefix}:cursor:{channel}.
type RedisCursorStore struct {
	client redis.Cmdable
	prefix string
}

var _ ports.CursorStore = (*RedisCursorStore)(nil)

// NewRedisCursorStore wires a redis client; prefix defaults to "channelsync".
func NewRedisCursorStore(client redis.Cmdable, prefix string) *RedisCursorStore {
	if prefix == "" {
		prefix = "channelsync"
	}
	return &RedisCursorStore{client: client, prefix: prefix}
}

func (s *RedisCursorStore) key(channel string) string {
	return s.prefix + ":cursor:" + channel
}

// Load returns the stored cursor, or a zero cursor for an unknown channel.
func (s *RedisCursorStore) Load(ctx context.Context, channel string) (domain.SyncCursor, error) {
	values, err := s.client.HGetAll(ctx, s.key(channel)).Result()
	if err != nil {
		return domain.SyncCursor{}, fmt.Errorf("load cursor %s: %w", channel, err)
	}
	if len(values) == 0 {
		return domain.SyncCursor{}, nil
	}

	var cursor domain.SyncCursor
	if raw := values[fieldLastMessageID]; raw != "" {
		if cursor.LastMessageID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return domain.SyncCursor{}, fmt.Errorf("cursor %s: bad %s %q: %w", channel, fieldLastMessageID, raw, err)
		}
	}
	if raw := values[fieldLastSync]; raw != "" {
		if cursor.LastRunAt, err = time.Parse(time.RFC3339Nano, raw); err != nil {
			return domain.SyncCursor{}, fmt.Errorf("cursor %s: bad %s %q: %w", channel, fieldLastSync, raw, err)
		}
	}
	if raw := values[fieldArticlesSynced]; raw != "" {
		if cursor.ArticlesSynced, err = strconv.Atoi(raw); err != nil {
			return domain.SyncCursor{}, fmt.Errorf("cursor %s: bad %s %q: %w", channel, fieldArticlesSynced, raw, err)
		}
	}
	return cursor, nil
}

// Save overwrites the channel's cursor hash.
func (s *RedisCursorStore) Save(ctx context.Context, channel string, cursor domain.SyncCursor) error {
	err := s.client.HSet(ctx, s.key(channel),
		fieldLastMessageID, strconv.FormatInt(cursor.LastMessageID, 10),
		fieldLastSync, cursor.LastRunAt.UTC().Format(time.RFC3339Nano),
		fieldArticlesSynced, strconv.Itoa(cursor.ArticlesSynced),
	).Err()
	if err != nil {
		return fmt.Errorf("save cursor %s: %w", channel, err)
	}
	return nil
}
