package planner

import (
	"strings"
	"testing"

	"github.com/homeboard/homeboard/internal/tile"
)

func TestClassifyLiteralURL(t *testing.T) {
	d := Classify("https://blog.example.com/post/42")
	if d.Type != tile.TypeWeb {
		t.Fatalf("expected web, got %q", d.Type)
	}
	if d.URL != "https://blog.example.com/post/42" {
		t.Fatalf("url should pass through untouched: %q", d.URL)
	}
	if d.Title != "blog.example.com" {
		t.Fatalf("title should be the hostname: %q", d.Title)
	}
}

func TestClassifyTravel(t *testing.T) {
	cases := []struct {
		query   string
		contain string
		absent  string
	}{
		{"weekend retreat in Bath", "Bath", "United Kingdom"},
		{"spa weekend", "United Kingdom", ""},
		{"Thai beach holiday", "Thailand", "Thai "},
		{"Scottish staycation ideas", "Scotland", ""},
		{"retreat in Bath, UK", "Bath, UK", "United Kingdom"},
	}
	for _, c := range cases {
		d := Classify(c.query)
		if d.Type != tile.TypeMaps {
			t.Fatalf("Classify(%q) type = %q, want maps", c.query, d.Type)
		}
		if !strings.Contains(d.Query, c.contain) {
			t.Fatalf("Classify(%q) q = %q, want it to contain %q", c.query, d.Query, c.contain)
		}
		if c.absent != "" && strings.Contains(d.Query, c.absent) {
			t.Fatalf("Classify(%q) q = %q, must not contain %q", c.query, d.Query, c.absent)
		}
	}
}

func TestTravelNormalizationAppendsQualifier(t *testing.T) {
	d := Classify("boutique hotel")
	if d.Type != tile.TypeMaps {
		t.Fatalf("expected maps, got %q", d.Type)
	}
	if !strings.Contains(d.Query, "United Kingdom") {
		t.Fatalf("placeless lodging query should get the locale bias: %q", d.Query)
	}
}

func TestClassifyTickers(t *testing.T) {
	d := Classify("AAPL, MSFT")
	if d.Type != tile.TypeStocks {
		t.Fatalf("expected stocks, got %q", d.Type)
	}
	if len(d.Symbols) != 2 || d.Symbols[0] != "AAPL" || d.Symbols[1] != "MSFT" {
		t.Fatalf("unexpected symbols: %v", d.Symbols)
	}

	d = Classify("$TSLA")
	if d.Type != tile.TypeStocks || d.Symbols[0] != "TSLA" {
		t.Fatalf("dollar prefix should strip: %+v", d)
	}

	d = Classify("stocks")
	if d.Type != tile.TypeStocks || len(d.Symbols) != 3 {
		t.Fatalf("bare stocks should get the default set: %+v", d)
	}

	if d := Classify("apple earnings report"); d.Type == tile.TypeStocks {
		t.Fatalf("lowercase prose must not parse as tickers: %+v", d)
	}

	d = Classify("Stocksbridge news")
	if d.Type == tile.TypeStocks {
		t.Fatalf("mid-word stocks prefix must not parse as tickers: %+v", d)
	}
	if d.Type != tile.TypeRSS {
		t.Fatalf("place-name query should fall through to a news tile: %+v", d)
	}

	d = Classify("stocks, NVDA")
	if d.Type != tile.TypeStocks || len(d.Symbols) != 1 || d.Symbols[0] != "NVDA" {
		t.Fatalf("punctuated stocks prefix should stay explicit: %+v", d)
	}
}

func TestClassifyYouTube(t *testing.T) {
	d := Classify("https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=1s")
	if d.Type != tile.TypeYouTube {
		t.Fatalf("expected youtube, got %q", d.Type)
	}
	if len(d.Playlist) != 1 || d.Playlist[0] != "dQw4w9WgXcQ" {
		t.Fatalf("video id not extracted: %v", d.Playlist)
	}

	d = Classify("youtube videos about woodworking")
	if d.Type != tile.TypeYouTube || len(d.Playlist) != 0 {
		t.Fatalf("keyword match should leave playlist empty: %+v", d)
	}
}

func TestExtractVideoID(t *testing.T) {
	if id := ExtractVideoID("https://youtu.be/dQw4w9WgXcQ"); id != "dQw4w9WgXcQ" {
		t.Fatalf("short link id = %q", id)
	}
	if id := ExtractVideoID("no video here"); id != "" {
		t.Fatalf("expected empty id, got %q", id)
	}
}

func TestClassifySpotify(t *testing.T) {
	d := Classify("https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M")
	if d.Type != tile.TypeSpotify {
		t.Fatalf("expected spotify, got %q", d.Type)
	}
	if d.SpotifyURL == "" {
		t.Fatal("spotify tile must carry the URL")
	}

	d = Classify("lo-fi beats on spotify")
	if d.Type != tile.TypeWeb {
		t.Fatalf("keyword without URL should downgrade to web, got %q", d.Type)
	}
	if !strings.Contains(d.URL, "open.spotify.com/search") {
		t.Fatalf("downgrade should target spotify search: %q", d.URL)
	}
}

func TestClassifyNewsPrefix(t *testing.T) {
	d := Classify("news about climate")
	if d.Type != tile.TypeRSS {
		t.Fatalf("expected rss, got %q", d.Type)
	}
	if len(d.Feeds) != 1 || !strings.Contains(d.Feeds[0], "news.google.com/rss/search") {
		t.Fatalf("unexpected feeds: %v", d.Feeds)
	}
	if !strings.Contains(d.Feeds[0], "climate") {
		t.Fatalf("topic should reach the feed query: %q", d.Feeds[0])
	}
}

func TestClassifyDefaultIsNewsSearch(t *testing.T) {
	d := Classify("sourdough starter troubleshooting")
	if d.Type != tile.TypeRSS {
		t.Fatalf("unclassified queries default to rss, got %q", d.Type)
	}
	if len(d.Feeds) != 1 || !strings.Contains(d.Feeds[0], "news.google.com") {
		t.Fatalf("unexpected default feeds: %v", d.Feeds)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	for _, q := range []string{"spa weekend", "AAPL", "news tech", "anything else"} {
		a, b := Classify(q), Classify(q)
		if a.Type != b.Type || a.Query != b.Query || a.URL != b.URL {
			t.Fatalf("Classify(%q) not deterministic: %+v vs %+v", q, a, b)
		}
	}
}
