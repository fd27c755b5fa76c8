package usecase

import (
	"fmt"
	"strings"
	"time"

	"ChannelSync/internal/domain"
)

// ChannelReport summarises one channel of a run.
type ChannelReport struct {
	Channel    string
	Fetched    int
	Groups     int
	Rejected   int
	Structured int
	MultiPart  int
	WithMedia  int
	Stats      domain.SyncStats
	Degraded   bool
	Err        error
}

// Report summarises a whole run.
type Report struct {
	RunID    string
	Full     bool
	Started  time.Time
	Finished time.Time
	Channels []ChannelReport
	Totals   domain.SyncStats
}

// String renders the report for operators.
func (r Report) String() string {
	var b strings.Builder

	mode := "incremental"
	if r.Full {
		mode = "full"
	}
	fmt.Fprintf(&b, "*Channel sync* (%s, %s)\n", mode, r.Finished.Sub(r.Started).Round(time.Second))

	for _, ch := range r.Channels {
		if ch.Err != nil {
			fmt.Fprintf(&b, "- %s: failed: %v\n", ch.Channel, ch.Err)
			continue
		}
		fmt.Fprintf(&b, "- %s: %d messages, %d groups, %d rejected, %d structured, %d multi-part, %d with media\n",
			ch.Channel, ch.Fetched, ch.Groups, ch.Rejected, ch.Structured, ch.MultiPart, ch.WithMedia)
		if ch.Degraded {
			fmt.Fprintf(&b, "  stored state unavailable, treated as empty\n")
		}
	}

	t := r.Totals
	fmt.Fprintf(&b, "Total %d: %d new, %d updated, %d unchanged, %d deleted, %d errors",
		t.Total, t.Inserted, t.Updated, t.Skipped, t.Deleted, t.Errors)
	return b.String()
}
