package feed

// Feed processing types

type Item struct {
	Title       string
	Link        string
	Description string
}

// Configuration types

type Source struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Fallback string `yaml:"fallback"` // optional, fetched when URL yields nothing
}

type Config struct {
	Feeds       []Source `yaml:"feeds"`
	Keywords    []string `yaml:"keywords"`
	Channels    []string `yaml:"channels"`
	AdminChatID string   `yaml:"admin_chat_id"`
	Settings    Settings `yaml:"settings"`
}

type Settings struct {
	MaxItems         int  `yaml:"max_items"`
	Timeout          int  `yaml:"timeout"`         // seconds
	ExtractContent   bool `yaml:"extract_content"` // fetch article page when description is empty
	FetchConcurrency int  `yaml:"fetch_concurrency"`
}
