package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Article is readable text recovered from an HTML document
type Article struct {
	Headline   string
	Paragraphs []string
}

// Text joins the headline and paragraphs into scorer input:
// the headline is the first line, each paragraph follows on its own line.
func (a *Article) Text() string {
	lines := make([]string, 0, len(a.Paragraphs)+1)
	lines = append(lines, a.Headline)
	lines = append(lines, a.Paragraphs...)
	return strings.Join(lines, "\n")
}

// ArticleFromHTML extracts the headline and body paragraphs from an HTML page
func ArticleFromHTML(r io.Reader) (*Article, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript, iframe, nav, footer, aside").Remove()

	headline := CollapseWhitespace(doc.Find("h1").First().Text())
	if headline == "" {
		headline = CollapseWhitespace(doc.Find("title").First().Text())
	}

	scope := doc.Find("article").First()
	if scope.Length() == 0 {
		scope = doc.Find("body")
	}

	var paragraphs []string
	scope.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := CollapseWhitespace(p.Text())
		if text == "" {
			return
		}

		// Keep outbound links visible to the citation check
		p.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			if href, ok := a.Attr("href"); ok && isHTTP(strings.TrimSpace(href)) {
				text += " " + strings.TrimSpace(href)
			}
		})

		paragraphs = append(paragraphs, text)
	})

	if len(paragraphs) == 0 {
		if body := CollapseWhitespace(scope.Text()); body != "" && body != headline {
			paragraphs = append(paragraphs, body)
		}
	}

	if headline == "" && len(paragraphs) == 0 {
		return nil, fmt.Errorf("no readable text in document")
	}

	return &Article{
		Headline:   headline,
		Paragraphs: paragraphs,
	}, nil
}
