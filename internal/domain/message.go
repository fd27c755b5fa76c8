package domain

import (
	"sort"
	"time"
)

// MediaKind distinguishes photo and video attachments.
type MediaKind string

const (
	MediaPhoto MediaKind = "photo"
	MediaVideo MediaKind = "video"
)

// Media is an attachment as seen by the transport, before upload.
type Media struct {
	Kind     MediaKind
	URL      string
	MimeType string
	Size     int64
}

// RawMessage is one channel post supplied by a message source.
type RawMessage struct {
	Channel string
	ID      int64
	Date    time.Time
	Text    string
	Media   []Media
}

// HasMedia reports whether the message carries any attachment.
func (m RawMessage) HasMedia() bool {
	return len(m.Media) > 0
}

// MessageGroup is an ordered run of messages that form one article.
type MessageGroup struct {
	Messages []RawMessage
}

// NewMessageGroup sorts the members oldest first. It returns false for an empty input.
func NewMessageGroup(messages []RawMessage) (MessageGroup, bool) {
	if len(messages) == 0 {
		return MessageGroup{}, false
	}
	sorted := make([]RawMessage, len(messages))
	copy(sorted, messages)
	SortMessages(sorted)
	return MessageGroup{Messages: sorted}, true
}

// Anchor returns the earliest member.
func (g MessageGroup) Anchor() RawMessage {
	return g.Messages[0]
}

// Len returns the number of members.
func (g MessageGroup) Len() int {
	return len(g.Messages)
}

// SortMessages orders messages by time, then by sequence number.
func SortMessages(messages []RawMessage) {
	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].Date.Equal(messages[j].Date) {
			return messages[i].ID < messages[j].ID
		}
		return messages[i].Date.Before(messages[j].Date)
	})
}
