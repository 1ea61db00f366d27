package processor

import (
	"bytes"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"

	"github.com/mfenderov/article-search/pkg/models"
)

// Processor converts scraped article pages to Markdown for archiving.
type Processor struct{}

// New creates a new HTML to Markdown processor.
func New() *Processor {
	return &Processor{}
}

// Convert transforms HTML content into Markdown.
func (p *Processor) Convert(htmlContent string) (string, error) {
	if htmlContent == "" {
		return "", nil
	}

	markdown, err := htmltomarkdown.ConvertString(htmlContent)
	if err != nil {
		return "", err
	}

	// Clean up excessive whitespace
	markdown = strings.TrimSpace(markdown)
	return markdown, nil
}

// Document renders an archived article: a header with the extracted fields
// followed by the Markdown of the page's main content.
func (p *Processor) Document(a models.Article, htmlContent string) (string, error) {
	body, err := p.Convert(p.MainContent(htmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to convert %s: %w", a.URL, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", a.Title)
	if a.Subtitle != "" {
		fmt.Fprintf(&b, "> %s\n\n", a.Subtitle)
	}
	fmt.Fprintf(&b, "- URL: %s\n", a.URL)
	fmt.Fprintf(&b, "- Author: %s\n", a.Author)
	fmt.Fprintf(&b, "- Claps: %d\n", a.Claps)
	fmt.Fprintf(&b, "- Reading time: %s\n", a.ReadingTime)
	if a.Keywords != "" {
		fmt.Fprintf(&b, "- Keywords: %s\n", a.Keywords)
	}
	if body != "" {
		b.WriteString("\n")
		b.WriteString(body)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// MainContent returns the HTML of the first <article> element, falling back
// to <body>. Unparsable input is returned unchanged.
func (p *Processor) MainContent(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return htmlContent
	}

	var find func(*html.Node, string) *html.Node
	find = func(n *html.Node, tag string) *html.Node {
		if n.Type == html.ElementNode && n.Data == tag {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := find(c, tag); found != nil {
				return found
			}
		}
		return nil
	}

	node := find(doc, "article")
	if node == nil {
		node = find(doc, "body")
	}
	if node == nil {
		return htmlContent
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, node); err != nil {
		return htmlContent
	}
	return buf.String()
}
