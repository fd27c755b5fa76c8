package domain

import "time"

// SyncCursor is the per-channel incremental sync state.
type SyncCursor struct {
	LastMessageID  int64     `json:"last_message_id"`
	LastRunAt      time.Time `json:"last_sync"`
	ArticlesSynced int       `json:"articles_synced"`
}

// SyncStats counts engine outcomes for one channel or a whole run.
type SyncStats struct {
	Total    int
	Inserted int
	Updated  int
	Skipped  int
	Deleted  int
	Errors   int
}

// Add accumulates other into s.
func (s *SyncStats) Add(other SyncStats) {
	s.Total += other.Total
	s.Inserted += other.Inserted
	s.Updated += other.Updated
	s.Skipped += other.Skipped
	s.Deleted += other.Deleted
	s.Errors += other.Errors
}

// ChangeKind describes what the engine did with an article.
type ChangeKind string

const (
	ChangeInserted ChangeKind = "inserted"
	ChangeUpdated  ChangeKind = "updated"
	ChangeDeleted  ChangeKind = "deleted"
)

// ArticleEvent is emitted for every persisted change.
type ArticleEvent struct {
	Kind       ChangeKind `json:"kind"`
	ExternalID string     `json:"external_id"`
	Channel    string     `json:"channel"`
	Slug       string     `json:"slug,omitempty"`
	Title      string     `json:"title,omitempty"`
	Category   Category   `json:"category,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}
