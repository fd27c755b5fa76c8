package domain

// Channel is one tracked source channel.
type Channel struct {
	// Key is the language tag stored on articles ("en", "ar").
	Key string `yaml:"key"`
	// Username is the public handle used in external ids and links.
	Username string `yaml:"username"`
	// Source names the message source strategy that reads this channel.
	Source string `yaml:"source"`
	// FeedURL is used by feed-based sources only.
	FeedURL string `yaml:"feedUrl"`
}
