// Package grouping clusters channel posts into logical articles.
package grouping

import (
	"time"

	"ChannelSync/internal/domain"
)

// Thresholds bound how far apart two posts may be and still share an article.
type Thresholds struct {
	// Base joins any two neighbours this close together.
	Base time.Duration
	// ContinuationCeiling joins a continuation post this close to its predecessor.
	ContinuationCeiling time.Duration
}

// DefaultThresholds matches the posting rhythm of the tracked channels.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Base:                180 * time.Second,
		ContinuationCeiling: 30 * time.Minute,
	}
}

// Group sorts messages by time and splits them greedily into groups. Every
// input message lands in exactly one group.
func Group(messages []domain.RawMessage, th Thresholds) []domain.MessageGroup {
	if len(messages) == 0 {
		return nil
	}

	sorted := make([]domain.RawMessage, len(messages))
	copy(sorted, messages)
	domain.SortMessages(sorted)

	var (
		groups  []domain.MessageGroup
		current = []domain.RawMessage{sorted[0]}
	)
	for i := 1; i < len(sorted); i++ {
		prev, msg := sorted[i-1], sorted[i]
		if joins(prev, msg, th) {
			current = append(current, msg)
			continue
		}
		groups = append(groups, domain.MessageGroup{Messages: current})
		current = []domain.RawMessage{msg}
	}
	return append(groups, domain.MessageGroup{Messages: current})
}

func joins(prev, next domain.RawMessage, th Thresholds) bool {
	gap := next.Date.Sub(prev.Date)
	if gap <= th.Base {
		return true
	}
	return gap <= th.ContinuationCeiling && IsContinuation(next.Text)
}
