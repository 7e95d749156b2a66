package dedup

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/lysyi3m/rss-relay/app/feed"
)

const trackingParamPrefix = "utm_"

// Normalize derives the dedup keys of an item. It never fails: a link that
// cannot be parsed is used as is.
func Normalize(item feed.Item) Key {
	return Key{
		Link:  NormalizeLink(item.Link),
		Title: NormalizeTitle(item.Title),
	}
}

// NormalizeLink drops the fragment and utm_* query parameters, keeping the
// order of the remaining parameters. Relative links are normalized the same way.
func NormalizeLink(rawLink string) string {
	link := strings.TrimSpace(rawLink)

	u, err := url.Parse(link)
	if err != nil {
		slog.Warn("Malformed link, using it as dedup key unchanged", "link", rawLink, "error", err)
		return link
	}

	u.Fragment = ""
	u.RawFragment = ""
	u.RawQuery = stripTrackingParams(u.RawQuery)
	u.ForceQuery = false

	return u.String()
}

func stripTrackingParams(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	params := strings.Split(rawQuery, "&")
	kept := params[:0]
	for _, param := range params {
		if param == "" {
			continue
		}

		name, _, _ := strings.Cut(param, "=")
		if unescaped, err := url.QueryUnescape(name); err == nil {
			name = unescaped
		}
		if strings.HasPrefix(name, trackingParamPrefix) {
			continue
		}

		kept = append(kept, param)
	}

	return strings.Join(kept, "&")
}

// NormalizeTitle lowercases the title and removes everything that is not a
// letter, digit, mark or underscore.
func NormalizeTitle(title string) string {
	return feed.StripNonWord(feed.Fold(title))
}
