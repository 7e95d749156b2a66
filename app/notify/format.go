package notify

import (
	"fmt"

	"github.com/lysyi3m/rss-relay/app/feed"
)

func FormatMessage(item feed.Item) string {
	return fmt.Sprintf("📰 %s\n🔗 %s", item.Title, item.Link)
}
