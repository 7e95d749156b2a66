package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
	sanitizer    *bluemonday.Policy
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
		sanitizer:    bluemonday.StrictPolicy(),
	}
}

// Run parses an RSS/Atom document. Entries without a title or a link are
// dropped; they can be neither announced nor deduplicated.
func (p *Parser) Run(data []byte) ([]Item, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry == nil {
			continue
		}

		item := p.normalizeItem(entry)
		if item.Title == "" || item.Link == "" {
			slog.Debug("Skipping incomplete entry", "title", item.Title, "link", item.Link)
			continue
		}
		items = append(items, item)
	}

	return items, nil
}

func (p *Parser) normalizeItem(entry *gofeed.Item) Item {
	item := Item{
		Title:       p.plainText(entry.Title),
		Link:        strings.TrimSpace(entry.Link),
		Description: p.plainText(cmp.Or(entry.Description, entry.Content)),
	}

	return item
}

func (p *Parser) plainText(value string) string {
	if value == "" {
		return ""
	}
	return collapseSpaces(html.UnescapeString(p.sanitizer.Sanitize(value)))
}
