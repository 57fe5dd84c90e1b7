package tile

import (
	"fmt"
	"net/url"
	"strings"
)

// Type enumerates every tile kind the dashboard can render. The set is
// closed: a Descriptor with any other type is invalid and must never
// reach the presentation layer.
type Type string

const (
	TypeWeb      Type = "web"
	TypeMaps     Type = "maps"
	TypeRSS      Type = "rss"
	TypeYouTube  Type = "youtube"
	TypeStocks   Type = "stocks"
	TypeGallery  Type = "gallery"
	TypeSpotify  Type = "spotify"
	TypeNews     Type = "news"
	TypeDiscover Type = "discover"
)

// AllTypes returns the closed enumeration in canonical order.
func AllTypes() []Type {
	return []Type{TypeWeb, TypeMaps, TypeRSS, TypeYouTube, TypeStocks, TypeGallery, TypeSpotify, TypeNews, TypeDiscover}
}

// ValidType reports whether t belongs to the closed enumeration.
func ValidType(t Type) bool {
	for _, v := range AllTypes() {
		if t == v {
			return true
		}
	}
	return false
}

// labels back-fill a missing title as "<Label> — <query>".
var labels = map[Type]string{
	TypeWeb:      "Web",
	TypeMaps:     "Map",
	TypeRSS:      "News",
	TypeYouTube:  "Videos",
	TypeStocks:   "Stocks",
	TypeGallery:  "Gallery",
	TypeSpotify:  "Spotify",
	TypeNews:     "News",
	TypeDiscover: "Discover",
}

// Label returns the display label for a tile type.
func Label(t Type) string {
	if l, ok := labels[t]; ok {
		return l
	}
	return "Web"
}

// Descriptor is the unit the planner produces and the dashboard consumes.
// Exactly one Type is set and only that type's parameter fields are
// meaningful; everything else stays empty and is omitted on the wire.
type Descriptor struct {
	Type  Type   `json:"type"`
	Title string `json:"title"`

	URL        string   `json:"url,omitempty"`        // web
	Query      string   `json:"q,omitempty"`          // maps
	Feeds      []string `json:"feeds,omitempty"`      // rss / news
	Playlist   []string `json:"playlist,omitempty"`   // youtube video ids
	Symbols    []string `json:"symbols,omitempty"`    // stocks
	Images     []string `json:"images,omitempty"`     // gallery
	SpotifyURL string   `json:"spotifyUrl,omitempty"` // spotify

	// Note carries an optional diagnostic when planning degraded; it is
	// informational and never implies an unrenderable tile.
	Note string `json:"note,omitempty"`
}

// Validate checks that the descriptor is renderable: a known type, a
// title, and the required parameter for that type. It is exhaustive over
// the enumeration so a new type cannot be added without a rule here.
func (d Descriptor) Validate() error {
	if d.Title == "" {
		return fmt.Errorf("tile missing title")
	}
	switch d.Type {
	case TypeWeb, TypeDiscover:
		if d.URL == "" {
			return fmt.Errorf("%s tile missing url", d.Type)
		}
	case TypeMaps:
		if d.Query == "" {
			return fmt.Errorf("maps tile missing q")
		}
	case TypeRSS, TypeNews:
		if len(d.Feeds) == 0 {
			return fmt.Errorf("%s tile missing feeds", d.Type)
		}
	case TypeYouTube:
		// An empty playlist is renderable; the client recovers at render
		// time by searching, so no field is required.
	case TypeStocks:
		if len(d.Symbols) == 0 {
			return fmt.Errorf("stocks tile missing symbols")
		}
	case TypeGallery:
		if len(d.Images) == 0 {
			return fmt.Errorf("gallery tile missing images")
		}
	case TypeSpotify:
		if d.SpotifyURL == "" {
			return fmt.Errorf("spotify tile missing spotifyUrl")
		}
	default:
		return fmt.Errorf("unknown tile type %q", d.Type)
	}
	return nil
}

// SearchURL builds the safe-default web search target for a query.
func SearchURL(query string) string {
	return "https://duckduckgo.com/?q=" + url.QueryEscape(query)
}

// NewsFeedURL builds a Google News RSS search URL for a query.
func NewsFeedURL(query string) string {
	return "https://news.google.com/rss/search?q=" + url.QueryEscape(query) + "&hl=en-GB&gl=GB&ceid=GB:en"
}

// SpotifySearchURL points a downgraded spotify plan at Spotify's own
// site search rather than a broken embed.
func SpotifySearchURL(query string) string {
	return "https://open.spotify.com/search/" + url.PathEscape(query)
}

// GalleryImageURLs returns a small deterministic set of search-image
// URLs for a query; index-suffixed so the set is stable per query.
func GalleryImageURLs(query string) []string {
	out := make([]string, 0, 4)
	for i := 1; i <= 4; i++ {
		out = append(out, fmt.Sprintf("https://source.unsplash.com/featured/640x360?%s&sig=%d", url.QueryEscape(query), i))
	}
	return out
}

// SafeDefault is the guaranteed-valid fallback tile: a web search for
// the original query. Every planning path that runs out of options
// terminates here.
func SafeDefault(query string) Descriptor {
	q := strings.TrimSpace(query)
	return Descriptor{
		Type:  TypeWeb,
		Title: Label(TypeWeb) + " — " + q,
		URL:   SearchURL(q),
	}
}
