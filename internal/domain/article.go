package domain

import (
	"strconv"
	"time"
)

// Article is the persisted unit built from one message group.
type Article struct {
	ExternalID    string
	Slug          string
	Channel       string
	Title         string
	Excerpt       string
	Content       string
	Category      Category
	Countries     []string
	Organizations []string
	IsStructured  bool
	ImageURL      string
	VideoURL      string
	SourceLink    string
	PublishedAt   time.Time
	Status        ArticleStatus

	// Build-time details that are never persisted.
	PartCount       int
	MediaCandidates []Media
}

// ArticleStatus enumerates lifecycle states of a stored article.
type ArticleStatus string

const (
	StatusPublished ArticleStatus = "published"
	StatusDraft     ArticleStatus = "draft"
)

// ExternalID builds the stable upsert key for a channel message.
func ExternalID(username string, messageID int64) string {
	return username + "/" + strconv.FormatInt(messageID, 10)
}

// SourceLink points back at the anchor message on the platform.
func SourceLink(username string, messageID int64) string {
	return "https://t.me/" + username + "/" + strconv.FormatInt(messageID, 10)
}

// MediaRefs holds public URLs of media already uploaded for an article.
type MediaRefs struct {
	ImageURL string
	VideoURL string
}

// Empty reports whether no media is referenced.
func (m MediaRefs) Empty() bool {
	return m.ImageURL == "" && m.VideoURL == ""
}

// Media returns the article's current media references.
func (a Article) Media() MediaRefs {
	return MediaRefs{ImageURL: a.ImageURL, VideoURL: a.VideoURL}
}

// WithMedia returns a copy of the article carrying the given media references.
func (a Article) WithMedia(refs MediaRefs) Article {
	a.ImageURL = refs.ImageURL
	a.VideoURL = refs.VideoURL
	return a
}
