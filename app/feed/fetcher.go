package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxBodySize = 10 << 20

// Fetcher downloads and parses one feed URL.
type Fetcher struct {
	httpClient       *http.Client
	parser           *Parser
	contentExtractor *ContentExtractor
	userAgent        string
	settings         Settings
}

func NewFetcher(httpClient *http.Client, parser *Parser, contentExtractor *ContentExtractor, userAgent string, settings Settings) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}
	return &Fetcher{
		httpClient:       httpClient,
		parser:           parser,
		contentExtractor: contentExtractor,
		userAgent:        userAgent,
		settings:         settings,
	}
}

// Fetch returns at most MaxItems items from the top of the feed.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]Item, error) {
	data, _, err := f.get(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	items, err := f.parser.Run(data)
	if err != nil {
		return nil, err
	}

	if f.settings.MaxItems > 0 && len(items) > f.settings.MaxItems {
		items = items[:f.settings.MaxItems]
	}

	if f.settings.ExtractContent && f.contentExtractor != nil {
		for i := range items {
			if items[i].Description != "" {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			f.fillDescription(ctx, &items[i])
		}
	}

	slog.Debug("Feed fetched", "url", feedURL, "items", len(items))

	return items, nil
}

func (f *Fetcher) fillDescription(ctx context.Context, item *Item) {
	data, contentType, err := f.get(ctx, item.Link)
	if err != nil {
		slog.Debug("Failed to fetch article", "url", item.Link, "error", err)
		return
	}

	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		slog.Debug("Article is not HTML", "url", item.Link, "content_type", contentType)
		return
	}

	pageURL, _ := url.Parse(item.Link)
	text, err := f.contentExtractor.Run(data, pageURL)
	if err != nil {
		slog.Debug("Failed to extract article text", "url", item.Link, "error", err)
		return
	}

	item.Description = text
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(f.settings.Timeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}

	return data, resp.Header.Get("Content-Type"), nil
}
