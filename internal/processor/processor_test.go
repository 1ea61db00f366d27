package processor

import (
	"strings"
	"testing"

	"github.com/mfenderov/article-search/pkg/models"
)

func TestProcessor_ConvertHTMLToMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		contains []string // Expected substrings in output
	}{
		{
			name: "converts headings",
			html: `<html><body><h1>Title</h1><h2>Subtitle</h2></body></html>`,
			contains: []string{
				"# Title",
				"## Subtitle",
			},
		},
		{
			name: "converts paragraphs",
			html: `<html><body><p>Hello world.</p><p>Second paragraph.</p></body></html>`,
			contains: []string{
				"Hello world.",
				"Second paragraph.",
			},
		},
		{
			name: "converts links",
			html: `<html><body><p>Check <a href="https://example.com">this link</a>.</p></body></html>`,
			contains: []string{
				"[this link](https://example.com)",
			},
		},
		{
			name: "converts code blocks",
			html: `<html><body><pre><code>func main() {}</code></pre></body></html>`,
			contains: []string{
				"func main() {}",
			},
		},
		{
			name: "converts inline code",
			html: `<html><body><p>Use <code>go run</code> to execute.</p></body></html>`,
			contains: []string{
				"`go run`",
			},
		},
		{
			name: "converts lists",
			html: `<html><body><ul><li>Item 1</li><li>Item 2</li></ul></body></html>`,
			contains: []string{
				"Item 1",
				"Item 2",
			},
		},
	}

	p := New()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Convert(tt.html)
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}

			for _, expected := range tt.contains {
				if !strings.Contains(result, expected) {
					t.Errorf("expected output to contain %q, got:\n%s", expected, result)
				}
			}
		})
	}
}

func TestProcessor_ConvertHTMLToMarkdown_EmptyInput(t *testing.T) {
	p := New()

	result, err := p.Convert("")
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if result != "" {
		t.Errorf("Convert(\"\") = %q, want empty", result)
	}
}

func TestProcessor_MainContent(t *testing.T) {
	p := New()

	tests := []struct {
		name       string
		html       string
		contains   string
		notContain string
	}{
		{
			name:       "prefers article",
			html:       `<html><body><nav>Menu</nav><article><p>Story</p></article></body></html>`,
			contains:   "<article><p>Story</p></article>",
			notContain: "Menu",
		},
		{
			name:     "falls back to body",
			html:     `<html><body><p>Only body</p></body></html>`,
			contains: "<p>Only body</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.MainContent(tt.html)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("MainContent() = %q, want it to contain %q", got, tt.contains)
			}
			if tt.notContain != "" && strings.Contains(got, tt.notContain) {
				t.Errorf("MainContent() = %q, should not contain %q", got, tt.notContain)
			}
		})
	}
}

func TestProcessor_Document(t *testing.T) {
	p := New()
	a := models.Article{
		URL:         "https://medium.com/@jane/go",
		Title:       "Go Tips",
		Subtitle:    "Small things",
		Author:      "Jane",
		Claps:       12,
		ReadingTime: "4 min",
		Keywords:    "go tips",
	}
	page := `<html><body><nav>Menu</nav><article><h2>First tip</h2><p>Use <code>gofmt</code>.</p></article></body></html>`

	doc, err := p.Document(a, page)
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}

	for _, want := range []string{
		"# Go Tips\n",
		"> Small things",
		"- URL: https://medium.com/@jane/go",
		"- Author: Jane",
		"- Claps: 12",
		"- Reading time: 4 min",
		"- Keywords: go tips",
		"## First tip",
		"`gofmt`",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("Document() missing %q, got:\n%s", want, doc)
		}
	}
	if strings.Contains(doc, "Menu") {
		t.Errorf("Document() should only convert the article body, got:\n%s", doc)
	}
}
