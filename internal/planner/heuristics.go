package planner

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/homeboard/homeboard/internal/tile"
)

// Stage-1 classification: deterministic, network-free intent rules
// evaluated in fixed priority order. This is the always-correct baseline
// the LLM stage only improves on, never replaces.

var (
	literalURLRE = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://\S+$`)

	travelWordRE = regexp.MustCompile(`(?i)\b(retreat|spa|resort|hotel|hostel|airbnb|villa|cottage|glamping|camping|yoga|staycation|getaway|holiday|holidays|vacation|city break|near me)\b|\bin\s+[A-Z][a-z]+`)
	tripWordRE   = regexp.MustCompile(`(?i)\b(holiday|holidays|trip|getaway|vacation|break|staycation|travel|ideas)\b`)

	spotifyURLRE = regexp.MustCompile(`(?i)https?://open\.spotify\.com/\S+`)

	// Bare uppercase tokens 1-5 letters, optionally $-prefixed, optionally
	// dotted/suffixed (BP.L, BRK.B). A query of only such tokens is a
	// stocks request.
	tickerTokenRE = regexp.MustCompile(`^\$?[A-Z]{1,5}(?:[.-][A-Z0-9]{1,4})?$`)

	youtubeWatchRE = regexp.MustCompile(`[?&]v=([A-Za-z0-9_-]{6,})`)
	youtubeShortRE = regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{6,})`)
)

// demonyms maps nationality adjectives to the country a maps search
// should name instead. Matched longest-first so "Irish" cannot shadow
// a longer entry sharing its prefix.
var demonyms = map[string]string{
	"british":    "United Kingdom",
	"english":    "England",
	"scottish":   "Scotland",
	"welsh":      "Wales",
	"irish":      "Ireland",
	"french":     "France",
	"spanish":    "Spain",
	"italian":    "Italy",
	"portuguese": "Portugal",
	"greek":      "Greece",
	"turkish":    "Turkey",
	"thai":       "Thailand",
	"japanese":   "Japan",
	"mexican":    "Mexico",
	"moroccan":   "Morocco",
	"swiss":      "Switzerland",
	"austrian":   "Austria",
	"icelandic":  "Iceland",
	"norwegian":  "Norway",
	"croatian":   "Croatia",
}

var demonymOrder = func() []string {
	keys := make([]string, 0, len(demonyms))
	for k := range demonyms {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// ukNations are place names that already anchor a query to the UK but
// still benefit from the country being spelled out for the maps search.
var ukNations = []string{"england", "scotland", "wales", "northern ireland", "cornwall", "lake district", "cotswolds"}

// Classify runs the Stage-1 rules and always returns a renderable tile.
func Classify(query string) tile.Descriptor {
	q := strings.TrimSpace(query)

	// 1. Literal URL.
	if literalURLRE.MatchString(q) {
		title := q
		if u, err := url.Parse(q); err == nil && u.Hostname() != "" {
			title = strings.TrimPrefix(u.Hostname(), "www.")
		}
		return tile.Descriptor{Type: tile.TypeWeb, Title: title, URL: q}
	}

	lower := strings.ToLower(q)

	// 2. Travel / lodging vocabulary.
	if travelWordRE.MatchString(q) {
		place := normalizeTravelQuery(q)
		return tile.Descriptor{Type: tile.TypeMaps, Title: tile.Label(tile.TypeMaps) + " — " + q, Query: place}
	}

	// 3. Spotify.
	if m := spotifyURLRE.FindString(q); m != "" {
		return tile.Descriptor{Type: tile.TypeSpotify, Title: tile.Label(tile.TypeSpotify) + " — " + q, SpotifyURL: m}
	}
	if strings.Contains(lower, "spotify") {
		// No embeddable URL to work with: degrade to a Spotify site
		// search rather than emit a broken embed.
		term := strings.TrimSpace(strings.NewReplacer("spotify", "", "Spotify", "").Replace(q))
		if term == "" {
			term = q
		}
		return tile.Descriptor{Type: tile.TypeWeb, Title: tile.Label(tile.TypeSpotify) + " — " + q, URL: tile.SpotifySearchURL(term)}
	}

	// 4. Ticker tokens or explicit "stocks" prefix.
	if syms := parseTickers(q); len(syms) > 0 {
		return tile.Descriptor{Type: tile.TypeStocks, Title: tile.Label(tile.TypeStocks) + " — " + q, Symbols: syms}
	}

	// 5. YouTube.
	if id := ExtractVideoID(q); id != "" {
		return tile.Descriptor{Type: tile.TypeYouTube, Title: tile.Label(tile.TypeYouTube) + " — " + q, Playlist: []string{id}}
	}
	if strings.Contains(lower, "youtube") {
		return tile.Descriptor{Type: tile.TypeYouTube, Title: tile.Label(tile.TypeYouTube) + " — " + q}
	}

	// 6. Explicit "news" prefix.
	if rest, ok := strings.CutPrefix(lower, "news"); ok {
		topic := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), "about"))
		if topic == "" {
			topic = "top stories"
		}
		return tile.Descriptor{Type: tile.TypeRSS, Title: tile.Label(tile.TypeRSS) + " — " + topic, Feeds: []string{tile.NewsFeedURL(topic)}}
	}

	// 7. Deterministic default: a news search tile for the query.
	return tile.Descriptor{Type: tile.TypeRSS, Title: tile.Label(tile.TypeRSS) + " — " + q, Feeds: []string{tile.NewsFeedURL(q)}}
}

// normalizeTravelQuery shapes a travel query into a maps search string.
// Demonym substitution runs first; the generic UK bias only applies when
// no demonym matched and the query names no place.
func normalizeTravelQuery(q string) string {
	out := q
	lower := strings.ToLower(q)

	matchedDemonym := false
	for _, d := range demonymOrder {
		if idx := indexWord(lower, d); idx >= 0 {
			out = out[:idx] + demonyms[d] + out[idx+len(d):]
			lower = strings.ToLower(out)
			matchedDemonym = true
			break
		}
	}

	switch {
	case namesUKNation(lower):
		if !strings.Contains(lower, "united kingdom") && !strings.Contains(lower, ", uk") {
			out += ", United Kingdom"
		}
	case !matchedDemonym && !hasPlaceHint(out) && (tripWordRE.MatchString(out) || travelNounRE.MatchString(out)):
		out += ", United Kingdom"
	}

	if !tripWordRE.MatchString(out) && !travelNounRE.MatchString(out) {
		out += " holiday ideas"
	}
	return out
}

var travelNounRE = regexp.MustCompile(`(?i)\b(retreat|spa|resort|hotel|hostel|airbnb|villa|cottage|glamping|camping)s?\b`)

func namesUKNation(lower string) bool {
	for _, n := range ukNations {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

// hasPlaceHint reports whether the query already points somewhere: an
// "in <Place>" clause, a "near me", or a capitalised non-leading word.
func hasPlaceHint(q string) bool {
	if strings.Contains(strings.ToLower(q), "near me") {
		return true
	}
	words := strings.Fields(q)
	for i, w := range words {
		if strings.EqualFold(w, "in") && i+1 < len(words) {
			next := words[i+1]
			if next != "" && next[0] >= 'A' && next[0] <= 'Z' {
				return true
			}
		}
		if i > 0 && len(w) > 1 && w[0] >= 'A' && w[0] <= 'Z' {
			return true
		}
	}
	return false
}

// indexWord finds needle in haystack at a word boundary, or -1.
func indexWord(haystack, needle string) int {
	start := 0
	for {
		idx := strings.Index(haystack[start:], needle)
		if idx < 0 {
			return -1
		}
		idx += start
		end := idx + len(needle)
		beforeOK := idx == 0 || !isWordByte(haystack[idx-1])
		afterOK := end == len(haystack) || !isWordByte(haystack[end])
		if beforeOK && afterOK {
			return idx
		}
		start = idx + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// parseTickers returns stock symbols when the query is a ticker list or
// an explicit "stocks ..." request; nil otherwise. The prefix only
// counts as explicit at a word boundary, so place names like
// "Stocksbridge" stay out of the stocks path.
func parseTickers(q string) []string {
	rest, explicit := strings.CutPrefix(strings.ToLower(q), "stocks")
	if explicit && rest != "" && isWordByte(rest[0]) {
		explicit = false
	}
	body := q
	if explicit {
		body = strings.TrimSpace(q[len("stocks"):])
		if body == "" {
			return []string{"AAPL", "MSFT", "GOOG"}
		}
	}
	fields := strings.FieldsFunc(body, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if len(fields) == 0 {
		return nil
	}
	syms := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := strings.ToUpper(strings.TrimSpace(f))
		if !explicit && !tickerTokenRE.MatchString(strings.TrimSpace(f)) {
			return nil
		}
		tok = strings.TrimPrefix(tok, "$")
		if tok != "" {
			syms = append(syms, tok)
		}
	}
	return syms
}

// ExtractVideoID pulls a YouTube video id out of watch?v= or youtu.be/
// URL shapes; empty when nothing parses.
func ExtractVideoID(s string) string {
	if m := youtubeWatchRE.FindStringSubmatch(s); len(m) == 2 {
		return m[1]
	}
	if m := youtubeShortRE.FindStringSubmatch(s); len(m) == 2 {
		return m[1]
	}
	return ""
}
