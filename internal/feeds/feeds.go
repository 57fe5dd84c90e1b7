package feeds

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"github.com/homeboard/homeboard/internal/httpx"
)

// Item is one normalized news entry, constructed fresh per fetch and
// never persisted.
type Item struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
	Source      string `json:"source"`
	When        string `json:"when"`
}

const maxItemsPerFeed = 20

var imgSrcRE = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["']`)

// Parser fetches RSS and Atom feeds and normalizes their entries.
type Parser struct {
	http   *httpx.Client
	strip  *bluemonday.Policy
	logger *log.Logger
	now    func() time.Time
}

func NewParser(timeout time.Duration) *Parser {
	return &Parser{
		http:   httpx.New(timeout, 0, 0),
		strip:  bluemonday.StrictPolicy(),
		logger: log.New(log.Writer(), "[FEEDS] ", log.LstdFlags),
		now:    time.Now,
	}
}

// Parse tries the URLs strictly in order and returns the first feed
// that yields at least one usable item. It only errors when every URL
// fails or parses empty.
func (p *Parser) Parse(ctx context.Context, urls []string) ([]Item, error) {
	var errs []error
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		items, err := p.fetchOne(ctx, u)
		if err != nil {
			p.logger.Printf("feed %s failed: %v", u, err)
			errs = append(errs, fmt.Errorf("%s: %w", u, err))
			continue
		}
		if len(items) == 0 {
			errs = append(errs, fmt.Errorf("%s: feed parsed empty", u))
			continue
		}
		return items, nil
	}
	if len(errs) == 0 {
		return nil, errors.New("no feed URL supplied")
	}
	return nil, errors.Join(errs...)
}

func (p *Parser) fetchOne(ctx context.Context, feedURL string) ([]Item, error) {
	fp := gofeed.NewParser()
	fp.Client = p.http.HTTPClient()

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	now := p.now()
	items := make([]Item, 0, min(len(feed.Items), maxItemsPerFeed))
	for _, raw := range feed.Items {
		if len(items) >= maxItemsPerFeed {
			break
		}
		item := p.convert(raw, now)
		if item.Title == "" && item.Link == "" {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (p *Parser) convert(raw *gofeed.Item, now time.Time) Item {
	body := raw.Description
	if body == "" {
		body = raw.Content
	}
	return Item{
		Title:       p.cleanText(raw.Title),
		Link:        strings.TrimSpace(raw.Link),
		Description: p.cleanText(body),
		Image:       normalizeImageURL(extractImage(raw, body)),
		Source:      sourceHost(raw.Link),
		When:        relativeOrEmpty(publishedAt(raw), now),
	}
}

// cleanText strips markup and entity-decodes what remains.
func (p *Parser) cleanText(s string) string {
	s = p.strip.Sanitize(s)
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

func publishedAt(raw *gofeed.Item) *time.Time {
	if raw.PublishedParsed != nil {
		return raw.PublishedParsed
	}
	return raw.UpdatedParsed
}

// extractImage tries, in order: a media-namespace thumbnail or content
// url, the feed-declared item image, an enclosure, then the first
// <img src> in the body.
func extractImage(raw *gofeed.Item, body string) string {
	if media, ok := raw.Extensions["media"]; ok {
		for _, key := range []string{"thumbnail", "content"} {
			for _, ext := range media[key] {
				if u := ext.Attrs["url"]; u != "" {
					return u
				}
			}
		}
	}
	if raw.Image != nil && raw.Image.URL != "" {
		return raw.Image.URL
	}
	for _, enc := range raw.Enclosures {
		if enc != nil && enc.URL != "" {
			return enc.URL
		}
	}
	if m := imgSrcRE.FindStringSubmatch(body); len(m) == 2 {
		return m[1]
	}
	return ""
}

// normalizeImageURL upgrades protocol-relative URLs to https.
func normalizeImageURL(u string) string {
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}

func sourceHost(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
