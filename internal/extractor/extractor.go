// Package extractor pulls article fields out of a fetched page using
// layered HTML heuristics. Each field tries its selectors in order and
// falls back to NotAvailable (or zero) when nothing matches.
package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mfenderov/article-search/internal/textproc"
	"github.com/mfenderov/article-search/pkg/models"
)

// NotAvailable marks a text field the page did not provide.
const NotAvailable = "N/A"

const mediumBaseURL = "https://medium.com"

// ErrBlocked is returned for bot-protection interstitials instead of articles.
var ErrBlocked = errors.New("page blocked by bot protection")

var (
	blockedTitles = []string{"Just a moment", "Attention Required"}

	clapNumberRe = regexp.MustCompile(`^\d+(\.\d+)?[KkMm]?$`)
	clapLabelRe  = regexp.MustCompile(`(\d+(\.\d+)?[KkMm]?)`)
	clapTextRe   = regexp.MustCompile(`(?i)(\d+(\.\d+)?[KkMm]?)\s*claps`)
)

// Extract parses an article page. The returned article has no ID or
// SearchText; those are assigned when the corpus is loaded.
func Extract(pageURL string, body []byte) (models.Article, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return models.Article{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	pageTitle := doc.Find("title").First().Text()
	for _, marker := range blockedTitles {
		if strings.Contains(pageTitle, marker) {
			return models.Article{}, fmt.Errorf("%w: %s", ErrBlocked, pageURL)
		}
	}

	text := articleText(doc)
	images := imageURLs(doc)
	author, authorURL := authorInfo(doc)

	keywords := ""
	if text != NotAvailable {
		keywords = textproc.Keywords(text, textproc.DefaultKeywordCount)
	}

	return models.Article{
		URL:              pageURL,
		Title:            title(doc),
		Subtitle:         subtitle(doc),
		Text:             text,
		NumImages:        len(images),
		ImageURLs:        strings.Join(images, "; "),
		NumExternalLinks: len(externalLinks(doc)),
		Author:           author,
		AuthorURL:        authorURL,
		Claps:            claps(doc),
		ReadingTime:      readingTime(doc),
		Keywords:         keywords,
	}, nil
}

func strip(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

// container returns the first article element, then section, else the
// whole document.
func container(doc *goquery.Document, fallbacks ...string) *goquery.Selection {
	for _, sel := range append([]string{"article"}, fallbacks...) {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	return doc.Selection
}

func title(doc *goquery.Document) string {
	if h1 := strip(doc.Find("h1").First()); h1 != "" {
		return textproc.CleanText(h1)
	}
	if og := metaContent(doc, `meta[property="og:title"]`); og != "" {
		return textproc.CleanText(og)
	}
	if t := doc.Find("title").First(); t.Length() > 0 {
		// Drop the "| Medium" suffix
		if cleaned := textproc.CleanText(strings.Split(t.Text(), "|")[0]); cleaned != "" {
			return cleaned
		}
	}
	return NotAvailable
}

func subtitle(doc *goquery.Document) string {
	if desc := metaContent(doc, `meta[name="description"]`); desc != "" {
		return textproc.CleanText(desc)
	}
	if og := metaContent(doc, `meta[property="og:description"]`); og != "" {
		return textproc.CleanText(og)
	}
	// First non-empty h2 following the first h1
	result, afterH1 := "", false
	doc.Find("h1, h2").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if goquery.NodeName(s) == "h1" {
			afterH1 = true
			return true
		}
		if afterH1 {
			result = strip(s)
			return result == ""
		}
		return true
	})
	if result != "" {
		return textproc.CleanText(result)
	}
	return NotAvailable
}

func articleText(doc *goquery.Document) string {
	var parts []string

	if root := container(doc, "section"); root != doc.Selection {
		root.Find("p, h2, h3, blockquote, li").Each(func(_ int, s *goquery.Selection) {
			if t := strip(s); len(t) > 5 {
				parts = append(parts, t)
			}
		})
	}

	if len(parts) == 0 {
		doc.Find("p.pw-post-body-paragraph").Each(func(_ int, s *goquery.Selection) {
			if t := strip(s); t != "" {
				parts = append(parts, t)
			}
		})
	}

	if len(parts) == 0 {
		doc.Find("body p").Each(func(_ int, s *goquery.Selection) {
			// Filter out short menu items and footer text
			if t := strip(s); len(t) > 20 {
				parts = append(parts, t)
			}
		})
	}

	if len(parts) == 0 {
		return NotAvailable
	}
	return textproc.CleanText(strings.Join(parts, " "))
}

// imageURLs returns content images hosted on Medium's CDN, deduplicated in
// page order.
func imageURLs(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var urls []string
	container(doc).Find("img").Each(func(_ int, s *goquery.Selection) {
		src := s.AttrOr("src", "")
		if src == "" {
			src = s.AttrOr("data-src", "")
		}
		if strings.Contains(src, "miro.medium.com") && strings.Contains(src, "max") && !seen[src] {
			seen[src] = true
			urls = append(urls, src)
		}
	})
	return urls
}

func externalLinks(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var links []string
	container(doc).Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := s.AttrOr("href", "")
		if strings.HasPrefix(href, "http") && textproc.IsExternalLink(href, textproc.MediumDomain) && !seen[href] {
			seen[href] = true
			links = append(links, href)
		}
	})
	return links
}

func authorInfo(doc *goquery.Document) (string, string) {
	name, profile := NotAvailable, NotAvailable

	doc.Find(`a[href*="/@"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strip(s)
		if len(text) <= 1 || strings.HasPrefix(text, "@") {
			return true
		}
		name = text
		profile = s.AttrOr("href", "")
		if !strings.HasPrefix(profile, "http") {
			profile = mediumBaseURL + profile
		}
		return false
	})

	if name == NotAvailable {
		if meta := metaContent(doc, `meta[name="author"]`); meta != "" {
			name = meta
		}
	}
	return name, profile
}

func claps(doc *goquery.Document) int {
	if s := doc.Find(`[data-testid="clapCount"]`).First(); s.Length() > 0 {
		return textproc.ParseClaps(strip(s))
	}

	n, found := 0, false
	doc.Find("button").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strip(s)
		label := strings.ToLower(s.AttrOr("aria-label", ""))
		if clapNumberRe.MatchString(text) && strings.Contains(label, "clap") {
			n, found = textproc.ParseClaps(text), true
			return false
		}
		return true
	})
	if found {
		return n
	}

	doc.Find("[aria-label]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		label := s.AttrOr("aria-label", "")
		if !strings.Contains(strings.ToLower(label), "clap") {
			return true
		}
		if m := clapLabelRe.FindStringSubmatch(label); m != nil {
			n, found = textproc.ParseClaps(m[1]), true
			return false
		}
		return true
	})
	if found {
		return n
	}

	if m := clapTextRe.FindStringSubmatch(doc.Text()); m != nil {
		return textproc.ParseClaps(m[1])
	}
	return 0
}

func readingTime(doc *goquery.Document) string {
	if s := doc.Find(`[data-testid="storyReadTime"]`).First(); s.Length() > 0 {
		return textproc.ParseReadingTime(strip(s))
	}

	result := ""
	doc.Find("span, p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strip(s)
		if strings.Contains(strings.ToLower(text), "min read") && len(text) < 20 {
			result = textproc.ParseReadingTime(text)
			return false
		}
		return true
	})
	if result != "" {
		return result
	}

	doc.Find("[aria-label]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		label := s.AttrOr("aria-label", "")
		if strings.Contains(strings.ToLower(label), "min read") {
			result = textproc.ParseReadingTime(label)
			return false
		}
		return true
	})
	if result != "" {
		return result
	}
	return NotAvailable
}
