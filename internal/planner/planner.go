package planner

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/homeboard/homeboard/internal/provider"
	"github.com/homeboard/homeboard/internal/telemetry"
	"github.com/homeboard/homeboard/internal/tile"
)

// Planner converts free-text queries into renderable tile descriptors.
// Plan is a total function: whatever the model or the network does, the
// caller always receives exactly one well-formed descriptor.
type Planner struct {
	llm       provider.Provider
	telemetry *telemetry.Telemetry
	timeout   time.Duration
	logger    *log.Logger
}

func New(llm provider.Provider, tele *telemetry.Telemetry, timeout time.Duration) *Planner {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Planner{
		llm:       llm,
		telemetry: tele,
		timeout:   timeout,
		logger:    log.New(log.Writer(), "[PLANNER] ", log.LstdFlags),
	}
}

// Plan returns the single best tile for the query. Stage 1 heuristics
// run first and become the fallback; Stage 2 asks the model and keeps
// its answer only when it survives validation.
func (p *Planner) Plan(ctx context.Context, query string) tile.Descriptor {
	base := Classify(query)

	if p.llm == nil {
		p.record(telemetry.PlanOutcomeHeuristic)
		return base
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	raw, err := p.llm.Generate(ctx, systemPrompt, userPrompt(query), provider.Options{Temperature: 0.2, MaxTokens: 600})
	if err != nil {
		p.logger.Printf("llm planning failed, using heuristic tile: %v", err)
		p.record(telemetry.PlanOutcomeFallback)
		return base
	}

	planned, ok := p.parseSingle(raw, query)
	if !ok {
		p.record(telemetry.PlanOutcomeFallback)
		return base
	}
	p.record(telemetry.PlanOutcomeLLM)
	return planned
}

// PlanMulti returns up to max (capped at 3) ranked tiles, primary first.
// The Stage-1 tile always leads when the model output is unusable.
func (p *Planner) PlanMulti(ctx context.Context, query string, max int) []tile.Descriptor {
	if max <= 0 || max > 3 {
		max = 3
	}
	base := Classify(query)

	if p.llm == nil {
		p.record(telemetry.PlanOutcomeHeuristic)
		return []tile.Descriptor{base}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	raw, err := p.llm.Generate(ctx, multiSystemPrompt, userPrompt(query), provider.Options{Temperature: 0.2, MaxTokens: 900})
	if err != nil {
		p.logger.Printf("llm multi planning failed, using heuristic tile: %v", err)
		p.record(telemetry.PlanOutcomeFallback)
		return []tile.Descriptor{base}
	}

	tiles, ok := p.parseMulti(raw, query, max)
	if !ok || len(tiles) == 0 {
		p.record(telemetry.PlanOutcomeFallback)
		return []tile.Descriptor{base}
	}
	p.record(telemetry.PlanOutcomeLLM)
	return tiles
}

// parseSingle interprets an untrusted model response as one tile.
func (p *Planner) parseSingle(raw, query string) (tile.Descriptor, bool) {
	doc, err := salvageDocument(raw)
	if err != nil {
		p.logger.Printf("unparseable llm response: %v", err)
		return tile.Descriptor{}, false
	}

	var d tile.Descriptor
	if err := json.Unmarshal(doc, &d); err != nil {
		// Maybe the model answered with the multi envelope anyway.
		var env struct {
			Tiles []tile.Descriptor `json:"tiles"`
		}
		if err2 := json.Unmarshal(doc, &env); err2 != nil || len(env.Tiles) == 0 {
			p.logger.Printf("llm response did not decode: %v", err)
			return tile.Descriptor{}, false
		}
		d = env.Tiles[0]
	}
	if d.Type == "" {
		var env struct {
			Tiles []tile.Descriptor `json:"tiles"`
		}
		if err := json.Unmarshal(doc, &env); err == nil && len(env.Tiles) > 0 {
			d = env.Tiles[0]
		}
	}
	return p.sanitize(d, query)
}

// parseMulti interprets an untrusted model response as 1..max tiles.
func (p *Planner) parseMulti(raw, query string, max int) ([]tile.Descriptor, bool) {
	doc, err := salvageDocument(raw)
	if err != nil {
		p.logger.Printf("unparseable llm response: %v", err)
		return nil, false
	}

	var env struct {
		Tiles []tile.Descriptor `json:"tiles"`
	}
	if err := json.Unmarshal(doc, &env); err != nil || len(env.Tiles) == 0 {
		// A bare tile object is acceptable: a one-element plan.
		var d tile.Descriptor
		if err2 := json.Unmarshal(doc, &d); err2 != nil || d.Type == "" {
			return nil, false
		}
		env.Tiles = []tile.Descriptor{d}
	}
	if len(env.Tiles) > max {
		env.Tiles = env.Tiles[:max]
	}

	out := make([]tile.Descriptor, 0, len(env.Tiles))
	for _, d := range env.Tiles {
		if clean, ok := p.sanitize(d, query); ok {
			out = append(out, clean)
		}
	}
	return out, len(out) > 0
}

// salvageDocument parses raw as JSON directly, then by extracting the
// outermost balanced JSON span, then checks it against the tile schema.
func salvageDocument(raw string) ([]byte, error) {
	candidate := strings.TrimSpace(raw)
	if err := tile.ValidateDocument([]byte(candidate)); err == nil {
		return []byte(candidate), nil
	}
	salvaged, err := tile.SalvageJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := tile.ValidateDocument([]byte(salvaged)); err != nil {
		return nil, err
	}
	return []byte(salvaged), nil
}

// sanitize enforces the closed type set and back-fills the required
// fields per type; a spotify tile without an embeddable URL downgrades
// to a web tile on Spotify's search page.
func (p *Planner) sanitize(d tile.Descriptor, query string) (tile.Descriptor, bool) {
	if !tile.ValidType(d.Type) {
		p.logger.Printf("llm produced unknown tile type %q", d.Type)
		return tile.Descriptor{}, false
	}

	switch d.Type {
	case tile.TypeWeb, tile.TypeDiscover:
		if d.URL == "" {
			d.URL = tile.SearchURL(query)
		}
	case tile.TypeMaps:
		if d.Query == "" {
			d.Query = query
		}
	case tile.TypeRSS, tile.TypeNews:
		d.Feeds = dropEmpty(d.Feeds)
		if len(d.Feeds) == 0 {
			d.Feeds = []string{tile.NewsFeedURL(query)}
		}
	case tile.TypeYouTube:
		d.Playlist = dropEmpty(d.Playlist)
		if len(d.Playlist) == 0 {
			if id := ExtractVideoID(query); id != "" {
				d.Playlist = []string{id}
			}
		}
	case tile.TypeStocks:
		d.Symbols = dropEmpty(d.Symbols)
		if len(d.Symbols) == 0 {
			d.Symbols = []string{"AAPL", "MSFT", "GOOG"}
		}
	case tile.TypeGallery:
		d.Images = dropEmpty(d.Images)
		if len(d.Images) == 0 {
			d.Images = tile.GalleryImageURLs(query)
		}
	case tile.TypeSpotify:
		if !strings.Contains(d.SpotifyURL, "open.spotify.com/") {
			d = tile.Descriptor{
				Type:  tile.TypeWeb,
				Title: d.Title,
				URL:   tile.SpotifySearchURL(query),
			}
		}
	}

	if strings.TrimSpace(d.Title) == "" {
		d.Title = tile.Label(d.Type) + " — " + strings.TrimSpace(query)
	}

	if err := d.Validate(); err != nil {
		p.logger.Printf("sanitized tile still invalid: %v", err)
		return tile.Descriptor{}, false
	}
	return d, true
}

func dropEmpty(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func (p *Planner) record(outcome string) {
	if p.telemetry != nil {
		p.telemetry.RecordPlan(outcome)
	}
}
