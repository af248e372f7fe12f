package pipeline

import (
	"context"
	"fmt"
)

// Resolution is the article text obtained for a URL
type Resolution struct {
	Text      string
	Simulated bool // Text is a placeholder, not fetched content
}

// Resolver obtains article text for a validated URL
type Resolver interface {
	Resolve(ctx context.Context, host, rawURL string) (Resolution, error)
}

// PlaceholderResolver never touches the network.
// It returns a fixed demonstration body naming the host.
type PlaceholderResolver struct{}

// Resolve returns the placeholder body for host
func (PlaceholderResolver) Resolve(ctx context.Context, host, rawURL string) (Resolution, error) {
	return Resolution{
		Text:      PlaceholderText(host),
		Simulated: true,
	}, nil
}

// PlaceholderText is the body analysed for a URL in place of fetched content
func PlaceholderText(host string) string {
	return fmt.Sprintf("Simulated article from %s. This is a demonstration. To analyze full text, please use the 'Paste Text' option.", host)
}
