// Package extract fetches a URL and reduces it to either readable plain
// text or link-preview metadata.
package extract

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"

	"github.com/homeboard/homeboard/internal/httpx"
)

// Article is the readable-text reduction of a page.
type Article struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
}

// Preview is the Open Graph / Twitter card reduction of a page.
type Preview struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Image       string   `json:"image,omitempty"`
	SiteName    string   `json:"siteName,omitempty"`
	Images      []string `json:"images,omitempty"`
}

const (
	maxDocumentBytes = 2 << 20
	maxArticleChars  = 12000
	maxInlineImages  = 8
)

type Extractor struct {
	http   *httpx.Client
	strip  *bluemonday.Policy
	logger *log.Logger
}

func New(timeout time.Duration) *Extractor {
	return &Extractor{
		http:   httpx.New(timeout, 0, 0),
		strip:  bluemonday.StrictPolicy(),
		logger: log.New(log.Writer(), "[EXTRACT] ", log.LstdFlags),
	}
}

// Text fetches a page and strips it down to its readable article text.
func (e *Extractor) Text(ctx context.Context, link string) (Article, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return Article{}, errors.New("empty url")
	}
	body, err := e.http.GetText(ctx, link, maxDocumentBytes)
	if err != nil {
		return Article{}, err
	}

	article, err := readability.FromReader(strings.NewReader(body), parseURL(link))
	if err != nil {
		// Pages readability cannot score still have text worth keeping.
		e.logger.Printf("readability failed for %s, stripping markup instead: %v", link, err)
		return Article{URL: link, Text: clampText(e.stripMarkup(body))}, nil
	}
	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		text = e.stripMarkup(body)
	}
	return Article{
		URL:   link,
		Title: strings.TrimSpace(article.Title),
		Text:  clampText(text),
		Image: article.Image,
	}, nil
}

func (e *Extractor) stripMarkup(body string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(e.strip.Sanitize(body)), " "))
}

// clampText bounds the article text, backing up to a rune boundary so a
// multibyte character is never severed at the cut.
func clampText(text string) string {
	if len(text) <= maxArticleChars {
		return text
	}
	cut := maxArticleChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// Preview fetches a page and scrapes its link-preview metadata, falling
// back from Open Graph to Twitter card tags to document defaults.
func (e *Extractor) Preview(ctx context.Context, link string) (Preview, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return Preview{}, errors.New("empty url")
	}
	body, err := e.http.GetText(ctx, link, maxDocumentBytes)
	if err != nil {
		return Preview{}, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return Preview{}, err
	}
	base := parseURL(link)

	p := Preview{
		URL:         link,
		Title:       firstMeta(doc, "og:title", "twitter:title"),
		Description: firstMeta(doc, "og:description", "twitter:description", "description"),
		Image:       resolveURL(base, firstMeta(doc, "og:image", "twitter:image")),
		SiteName:    firstMeta(doc, "og:site_name"),
	}
	if p.Title == "" {
		p.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	doc.Find("img[src]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		src, _ := sel.Attr("src")
		if abs := resolveURL(base, src); abs != "" && abs != p.Image {
			p.Images = append(p.Images, abs)
		}
		return len(p.Images) < maxInlineImages
	})
	return p, nil
}

// firstMeta returns the first non-empty content attribute among the
// named meta properties, checked as both property= and name=.
func firstMeta(doc *goquery.Document, names ...string) string {
	for _, n := range names {
		for _, attr := range []string{"property", "name"} {
			sel := doc.Find("meta[" + attr + "='" + n + "']").First()
			if content, ok := sel.Attr("content"); ok {
				if c := strings.TrimSpace(content); c != "" {
					return c
				}
			}
		}
	}
	return ""
}

func resolveURL(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "//") {
		return "https:" + ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

func parseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{}
	}
	return u
}
