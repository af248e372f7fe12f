package extract

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
)

// FeedItem is one feed entry prepared for scoring
type FeedItem struct {
	Link   string
	Source string // Hostname of the item link, or of the feed when the item has none
	Text   string // Title on the first line, body below
}

// ParseFeed reads an RSS, Atom or JSON feed and returns its items.
// Items without any text are skipped.
func ParseFeed(r io.Reader) ([]FeedItem, error) {
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	feedHost := hostname(feed.Link)

	var items []FeedItem
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		body := item.Content
		if strings.TrimSpace(body) == "" {
			body = item.Description
		}

		plain, err := VisibleText(body)
		if err != nil {
			plain = CollapseWhitespace(body)
		}

		title := CollapseWhitespace(item.Title)
		if title == "" && plain == "" {
			continue
		}

		source := hostname(item.Link)
		if source == "" {
			source = feedHost
		}

		// Untitled items lead with the body so its first line becomes the headline
		text := plain
		if title != "" {
			text = strings.TrimSpace(title + "\n" + plain)
		}

		items = append(items, FeedItem{
			Link:   item.Link,
			Source: source,
			Text:   text,
		})
	}

	return items, nil
}

// hostname returns the lowercase host of rawURL, or "" when it has none
func hostname(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}
