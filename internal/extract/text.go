package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// VisibleText returns the text nodes of an HTML fragment, skipping scripts and styles.
// Plain text without markup is returned with whitespace collapsed.
func VisibleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		// Keep outbound links visible to the citation check
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := attr(n, "href"); isHTTP(href) {
				defer func() {
					buf.WriteString(href)
					buf.WriteString(" ")
				}()
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return CollapseWhitespace(buf.String()), nil
}

// CollapseWhitespace joins all whitespace runs into single spaces
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func isHTTP(href string) bool {
	lower := strings.ToLower(href)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
