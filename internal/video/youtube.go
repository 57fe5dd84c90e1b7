// Package video resolves YouTube video ids to render metadata via the
// oEmbed endpoint, with a synthesized thumbnail as the per-id fallback.
package video

import (
	"context"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/homeboard/homeboard/internal/httpx"
)

// Meta is what a video tile needs to render one entry.
type Meta struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Thumb string `json:"thumb"`
}

const oembedBase = "https://www.youtube.com/oembed"

type Client struct {
	http   *httpx.Client
	base   string
	logger *log.Logger
}

func New(timeout time.Duration) *Client {
	return &Client{
		http:   httpx.New(timeout, 0, 0),
		base:   oembedBase,
		logger: log.New(log.Writer(), "[VIDEO] ", log.LstdFlags),
	}
}

// Metadata resolves every id concurrently, one result per input in
// order. A failed oEmbed call still yields a renderable entry with the
// synthesized high-res thumbnail.
func (c *Client) Metadata(ctx context.Context, ids []string) []Meta {
	out := make([]Meta, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			out[i] = c.one(ctx, strings.TrimSpace(id))
		}(i, id)
	}
	wg.Wait()
	return out
}

func (c *Client) one(ctx context.Context, id string) Meta {
	meta := Meta{ID: id, Thumb: FallbackThumb(id)}
	if id == "" {
		return meta
	}

	var resp struct {
		Title        string `json:"title"`
		ThumbnailURL string `json:"thumbnail_url"`
	}
	watch := "https://www.youtube.com/watch?v=" + url.QueryEscape(id)
	u := c.base + "?format=json&url=" + url.QueryEscape(watch)
	if err := c.http.DoJSON(ctx, "GET", u, nil, nil, &resp); err != nil {
		c.logger.Printf("oembed lookup failed for %s: %v", id, err)
		return meta
	}

	meta.Title = resp.Title
	if resp.ThumbnailURL != "" {
		meta.Thumb = resp.ThumbnailURL
	}
	return meta
}

// FallbackThumb is the predictable high-res thumbnail YouTube serves
// for any public video id.
func FallbackThumb(id string) string {
	return "https://i.ytimg.com/vi/" + id + "/hqdefault.jpg"
}
