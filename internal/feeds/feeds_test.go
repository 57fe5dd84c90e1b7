package feeds

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const rssTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
<channel>
<title>Example</title>
<item>
<title>First &amp; foremost</title>
<link>https://www.example.com/a</link>
<description>&lt;p&gt;Lead paragraph&lt;/p&gt; &lt;img src="//img.example.com/a.jpg"&gt;</description>
<pubDate>%s</pubDate>
</item>
<item>
<title>Second story</title>
<link>https://www.example.com/b</link>
<description>Plain text body</description>
<media:thumbnail url="https://img.example.com/b.jpg"/>
<pubDate>%s</pubDate>
</item>
</channel>
</rss>`

func newTestParser(now time.Time) *Parser {
	p := NewParser(5 * time.Second)
	p.now = func() time.Time { return now }
	return p
}

func serveRSS(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestParseNormalizesItems(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	body := fmt.Sprintf(rssTemplate,
		now.Add(-90*time.Second).Format(time.RFC1123Z),
		now.Add(-5000*time.Second).Format(time.RFC1123Z),
	)
	srv := serveRSS(t, body)

	items, err := newTestParser(now).Parse(context.Background(), []string{srv.URL})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	first := items[0]
	if first.Title != "First & foremost" {
		t.Fatalf("title not entity-decoded: %q", first.Title)
	}
	if first.Description != "Lead paragraph" {
		t.Fatalf("description not stripped: %q", first.Description)
	}
	if first.Image != "https://img.example.com/a.jpg" {
		t.Fatalf("protocol-relative image not normalized: %q", first.Image)
	}
	if first.Source != "example.com" {
		t.Fatalf("source should be the www-stripped host: %q", first.Source)
	}
	if first.When != "1m ago" {
		t.Fatalf("90s old item should read 1m ago, got %q", first.When)
	}

	second := items[1]
	if second.Image != "https://img.example.com/b.jpg" {
		t.Fatalf("media thumbnail should win: %q", second.Image)
	}
	if second.When != "1h ago" {
		t.Fatalf("5000s old item should read 1h ago, got %q", second.When)
	}
}

func TestParseFallsThroughFailedURLs(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	t.Cleanup(bad.Close)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	good := serveRSS(t, fmt.Sprintf(rssTemplate,
		now.Add(-time.Hour).Format(time.RFC1123Z),
		now.Add(-time.Hour).Format(time.RFC1123Z),
	))

	items, err := newTestParser(now).Parse(context.Background(), []string{bad.URL, good.URL})
	if err != nil {
		t.Fatalf("good URL should have rescued the batch: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected items from the good feed, got %d", len(items))
	}
}

func TestParseAllFailed(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	t.Cleanup(bad.Close)

	items, err := newTestParser(time.Now()).Parse(context.Background(), []string{bad.URL})
	if err == nil {
		t.Fatal("all-failed batch should error")
	}
	if len(items) != 0 {
		t.Fatalf("all-failed batch should return no items, got %d", len(items))
	}
}

func TestRelative(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		age  time.Duration
		want string
	}{
		{30 * time.Second, "30s ago"},
		{90 * time.Second, "1m ago"},
		{5000 * time.Second, "1h ago"},
		{47 * time.Hour, "47h ago"},
		{72 * time.Hour, "3d ago"},
	}
	for _, c := range cases {
		if got := Relative(now.Add(-c.age), now); got != c.want {
			t.Fatalf("Relative(-%v) = %q, want %q", c.age, got, c.want)
		}
	}
	if got := relativeOrEmpty(nil, now); got != "" {
		t.Fatalf("missing timestamp should format empty, got %q", got)
	}
}
