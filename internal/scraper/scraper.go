package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
)

// DefaultUserAgent mimics a desktop browser; article hosts reject obvious bots.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// Config holds scraper configuration.
type Config struct {
	Delay       time.Duration
	Timeout     time.Duration
	UserAgent   string
	Parallelism int
	FollowLinks bool // Follow same-host links found on fetched pages
	MaxDepth    int  // Only used with FollowLinks
}

// Page is one successfully fetched response.
type Page struct {
	URL         string
	Body        []byte
	ContentType string
	StatusCode  int
	FetchedAt   time.Time
}

// Result counts the outcome of a Scrape call.
type Result struct {
	Fetched int
	Failed  int
}

// Scraper fetches web pages.
type Scraper struct {
	config Config
}

// New creates a new Scraper with the given configuration.
func New(config Config) *Scraper {
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.Parallelism < 1 {
		config.Parallelism = 1
	}
	if config.MaxDepth < 1 {
		config.MaxDepth = 1
	}
	return &Scraper{config: config}
}

// Scrape fetches every URL and calls handle for each page that answers
// with a 2xx status. Pages arrive in URL order unless Parallelism > 1.
// Fetch failures are logged and counted; only context cancellation aborts
// the run. handle is never called concurrently.
func (s *Scraper) Scrape(ctx context.Context, urls []string, handle func(Page)) (*Result, error) {
	var mu sync.Mutex
	result := &Result{}

	c := colly.NewCollector(
		colly.MaxDepth(s.config.MaxDepth),
		colly.UserAgent(s.config.UserAgent),
		// Sequential visits keep pages in URL order
		colly.Async(s.config.Parallelism > 1),
	)

	// Set rate limiting
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Delay:       s.config.Delay,
		Parallelism: s.config.Parallelism,
	})

	// Set timeout
	c.SetRequestTimeout(s.config.Timeout)

	// Check for cancellation before each request
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			slog.Debug("scrape cancelled", "url", r.URL.String())
			r.Abort()
		}
	})

	// Handle responses
	c.OnResponse(func(r *colly.Response) {
		page := Page{
			URL:         r.Request.URL.String(),
			Body:        r.Body,
			ContentType: r.Headers.Get("Content-Type"),
			StatusCode:  r.StatusCode,
			FetchedAt:   time.Now(),
		}
		slog.Debug("fetched page", "url", page.URL, "content_type", page.ContentType, "size", len(page.Body))

		mu.Lock()
		defer mu.Unlock()
		result.Fetched++
		handle(page)
	})

	c.OnError(func(r *colly.Response, err error) {
		slog.Warn("fetch failed", "url", r.Request.URL.String(), "status", r.StatusCode, "error", err)
		mu.Lock()
		result.Failed++
		mu.Unlock()
	})

	// Follow links if enabled
	if s.config.FollowLinks {
		c.OnHTML("a[href]", func(e *colly.HTMLElement) {
			link := e.Request.AbsoluteURL(e.Attr("href"))
			linkURL, err := url.Parse(link)
			if err != nil {
				return
			}
			// Only follow links within the same domain
			if linkURL.Host == e.Request.URL.Host {
				e.Request.Visit(link)
			}
		})
	}

	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			c.Wait()
			slog.Info("scrape cancelled by context", "pages_fetched", result.Fetched)
			return result, err
		}
		if _, err := url.ParseRequestURI(u); err != nil {
			slog.Warn("invalid URL", "url", u, "error", err)
			mu.Lock()
			result.Failed++
			mu.Unlock()
			continue
		}
		// HTTP and transport failures are counted by OnError.
		var visited *colly.AlreadyVisitedError
		if err := c.Visit(u); err != nil && !errors.As(err, &visited) {
			slog.Debug("visit error (continuing)", "url", u, "error", err)
		}
	}

	// Wait for all requests to finish
	c.Wait()

	if err := ctx.Err(); err != nil {
		slog.Info("scrape cancelled by context", "pages_fetched", result.Fetched)
		return result, err
	}

	slog.Debug("scrape complete", "urls", len(urls), "fetched", result.Fetched, "failed", result.Failed)
	return result, nil
}
