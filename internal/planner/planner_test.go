package planner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/homeboard/homeboard/internal/provider"
	"github.com/homeboard/homeboard/internal/tile"
)

type stubLLM struct {
	response string
	err      error
	calls    int
}

func (s *stubLLM) Generate(_ context.Context, _, _ string, _ provider.Options) (string, error) {
	s.calls++
	return s.response, s.err
}

func TestPlanTotality(t *testing.T) {
	p := New(nil, nil, 0)
	queries := []string{
		"weekend retreat in Bath",
		"https://example.com/some/page",
		"AAPL, MSFT",
		"news about climate",
		"lo-fi beats on spotify",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"completely unclassifiable gibberish",
		"   ",
	}
	for _, q := range queries {
		d := p.Plan(context.Background(), q)
		if !tile.ValidType(d.Type) {
			t.Fatalf("plan(%q) produced unknown type %q", q, d.Type)
		}
		if err := d.Validate(); err != nil {
			t.Fatalf("plan(%q) produced unrenderable tile: %v (%+v)", q, err, d)
		}
	}
}

func TestPlanFallsBackOnProviderError(t *testing.T) {
	llm := &stubLLM{err: errors.New("model down")}
	p := New(llm, nil, 0)

	d := p.Plan(context.Background(), "weekend retreat in Bath")
	if d.Type != tile.TypeMaps {
		t.Fatalf("expected heuristic maps tile, got %q", d.Type)
	}
	if !strings.Contains(d.Query, "Bath") {
		t.Fatalf("maps query should keep the place: %q", d.Query)
	}
}

func TestPlanRejectsUnknownType(t *testing.T) {
	llm := &stubLLM{response: `{"type":"launch_missiles"}`}
	p := New(llm, nil, 0)

	d := p.Plan(context.Background(), "quantum blogging trends")
	if d.Type == "launch_missiles" {
		t.Fatal("invalid type must never pass through")
	}
	if d.Type != tile.TypeRSS || len(d.Feeds) == 0 {
		t.Fatalf("expected the heuristic news fallback, got %+v", d)
	}
}

func TestPlanSalvagesProseWrappedJSON(t *testing.T) {
	llm := &stubLLM{response: "Here you go:\n```json\n{\"type\":\"maps\",\"title\":\"Map\",\"q\":\"spa hotels, Bath\"}\n```"}
	p := New(llm, nil, 0)

	d := p.Plan(context.Background(), "spa hotels bath")
	if d.Type != tile.TypeMaps || d.Query != "spa hotels, Bath" {
		t.Fatalf("expected the salvaged maps tile, got %+v", d)
	}
}

func TestPlanSpotifyDowngrade(t *testing.T) {
	llm := &stubLLM{response: `{"type":"spotify","title":"Chill mix"}`}
	p := New(llm, nil, 0)

	d := p.Plan(context.Background(), "chill playlist")
	if d.Type == tile.TypeSpotify {
		t.Fatalf("spotify without spotifyUrl must downgrade, got %+v", d)
	}
	if d.Type != tile.TypeWeb || !strings.Contains(d.URL, "open.spotify.com/search") {
		t.Fatalf("expected a spotify search web tile, got %+v", d)
	}
	if d.Title != "Chill mix" {
		t.Fatalf("downgrade should keep the model's title, got %q", d.Title)
	}
}

func TestPlanBackfillsTitleAndFields(t *testing.T) {
	llm := &stubLLM{response: `{"type":"web","url":"https://example.com/shop"}`}
	p := New(llm, nil, 0)

	d := p.Plan(context.Background(), "buy a standing desk")
	if d.URL != "https://example.com/shop" {
		t.Fatalf("model url should survive: %+v", d)
	}
	if d.Title != "Web — buy a standing desk" {
		t.Fatalf("missing title should back-fill, got %q", d.Title)
	}
}

func TestPlanBackfillsRSSFeeds(t *testing.T) {
	llm := &stubLLM{response: `{"type":"rss","title":"Climate news"}`}
	p := New(llm, nil, 0)

	d := p.Plan(context.Background(), "climate change updates")
	if len(d.Feeds) != 1 || !strings.Contains(d.Feeds[0], "news.google.com/rss/search") {
		t.Fatalf("empty feeds should back-fill a news search: %+v", d)
	}
}

func TestPlanMultiPreservesOrder(t *testing.T) {
	llm := &stubLLM{response: `{"tiles":[
		{"type":"maps","title":"Map","q":"Bath"},
		{"type":"web","title":"Guide","url":"https://example.com"},
		{"type":"web","title":"Extra","url":"https://example.org"}
	]}`}
	p := New(llm, nil, 0)

	tiles := p.PlanMulti(context.Background(), "bath city break", 3)
	if len(tiles) != 3 {
		t.Fatalf("expected 3 tiles, got %d", len(tiles))
	}
	if tiles[0].Type != tile.TypeMaps || tiles[1].URL != "https://example.com" {
		t.Fatalf("order should be preserved, got %+v", tiles)
	}
}

func TestPlanMultiRejectsInvalidTypeInBatch(t *testing.T) {
	llm := &stubLLM{response: `{"tiles":[
		{"type":"maps","title":"Map","q":"Bath"},
		{"type":"nonsense","title":"bad"}
	]}`}
	p := New(llm, nil, 0)

	tiles := p.PlanMulti(context.Background(), "Bath city break", 3)
	if len(tiles) != 1 || tiles[0].Type != tile.TypeMaps {
		t.Fatalf("a bad batch should collapse to the heuristic tile, got %+v", tiles)
	}
	if !strings.Contains(tiles[0].Query, "Bath") {
		t.Fatalf("heuristic maps query should keep the place: %+v", tiles[0])
	}
}

func TestPlanMultiFallsBackToHeuristic(t *testing.T) {
	llm := &stubLLM{response: "not json at all"}
	p := New(llm, nil, 0)

	tiles := p.PlanMulti(context.Background(), "AAPL MSFT", 3)
	if len(tiles) != 1 || tiles[0].Type != tile.TypeStocks {
		t.Fatalf("expected the single heuristic tile, got %+v", tiles)
	}
}

func TestPlanWithoutProviderSkipsLLM(t *testing.T) {
	p := New(nil, nil, 0)
	d := p.Plan(context.Background(), "https://example.com")
	if d.Type != tile.TypeWeb || d.URL != "https://example.com" {
		t.Fatalf("unexpected tile: %+v", d)
	}
}
