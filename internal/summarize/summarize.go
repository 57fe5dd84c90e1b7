// Package summarize reduces article text or feed-item batches to short
// structured summaries, degrading to deterministic truncation whenever
// the model is unavailable.
package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/homeboard/homeboard/internal/feeds"
	"github.com/homeboard/homeboard/internal/provider"
	"github.com/homeboard/homeboard/internal/tile"
)

// Digest is the structured summary of one long text.
type Digest struct {
	TLDR    string   `json:"tldr"`
	Bullets []string `json:"bullets"`
}

// ItemSummary is a feed item reduced to a one-liner.
type ItemSummary struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Image   string `json:"image,omitempty"`
	Source  string `json:"source"`
	When    string `json:"when"`
	Link    string `json:"link"`
}

const (
	maxInputChars   = 12000
	maxFallbackTLDR = 280
	maxOneLiner     = 140
)

const digestSystemPrompt = `You summarize articles for a personal dashboard.
Respond ONLY with valid JSON of the shape
{"tldr":"one or two sentences","bullets":["point",...]}
with at most 5 bullets. Do not include any other text.`

const itemsSystemPrompt = `You summarize news headlines for a personal dashboard.
For each numbered item, write one plain sentence under 140 characters.
Respond ONLY with valid JSON of the shape {"summaries":["...",...]}
with exactly one entry per input item, in the same order.
Do not include any other text.`

type Summarizer struct {
	llm    provider.Provider
	logger *log.Logger
}

func New(llm provider.Provider) *Summarizer {
	return &Summarizer{
		llm:    llm,
		logger: log.New(log.Writer(), "[SUMMARIZE] ", log.LstdFlags),
	}
}

// Digest summarizes one body of text. It never fails: when the model
// call or its output is unusable the digest degrades to a truncation of
// the opening text.
func (s *Summarizer) Digest(ctx context.Context, text string) Digest {
	text = clampInput(text)
	if text == "" {
		return Digest{}
	}
	if s.llm == nil {
		return fallbackDigest(text)
	}

	raw, err := s.llm.Generate(ctx, digestSystemPrompt, text, provider.Options{Temperature: 0.2, MaxTokens: 500})
	if err != nil {
		s.logger.Printf("digest llm call failed, truncating instead: %v", err)
		return fallbackDigest(text)
	}

	var d Digest
	if err := decodeLoose(raw, &d); err != nil || strings.TrimSpace(d.TLDR) == "" {
		s.logger.Printf("digest response unusable, truncating instead: %v", err)
		return fallbackDigest(text)
	}
	if len(d.Bullets) > 5 {
		d.Bullets = d.Bullets[:5]
	}
	return d
}

// Items produces one-line summaries for a feed batch, order preserved.
// The model path is all-or-nothing: a miscounted or failed response
// degrades every item to its truncated description.
func (s *Summarizer) Items(ctx context.Context, items []feeds.Item) []ItemSummary {
	out := make([]ItemSummary, len(items))
	for i, it := range items {
		out[i] = ItemSummary{
			Title:   it.Title,
			Summary: truncate(it.Description, maxOneLiner),
			Image:   it.Image,
			Source:  it.Source,
			When:    it.When,
			Link:    it.Link,
		}
	}
	if s.llm == nil || len(items) == 0 {
		return out
	}

	var b strings.Builder
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s — %s\n", i+1, it.Title, truncate(it.Description, 300))
	}

	raw, err := s.llm.Generate(ctx, itemsSystemPrompt, b.String(), provider.Options{Temperature: 0.2, MaxTokens: 900})
	if err != nil {
		s.logger.Printf("item summary llm call failed, keeping truncations: %v", err)
		return out
	}

	var resp struct {
		Summaries []string `json:"summaries"`
	}
	if err := decodeLoose(raw, &resp); err != nil || len(resp.Summaries) != len(items) {
		s.logger.Printf("item summary response unusable, keeping truncations")
		return out
	}
	for i, sum := range resp.Summaries {
		if sum = strings.TrimSpace(sum); sum != "" {
			out[i].Summary = truncate(sum, maxOneLiner)
		}
	}
	return out
}

// decodeLoose parses model output as JSON, salvaging an embedded JSON
// span when the response carries surrounding prose.
func decodeLoose(raw string, out any) error {
	candidate := strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(candidate), out); err == nil {
		return nil
	}
	salvaged, err := tile.SalvageJSON(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(salvaged), out)
}

func fallbackDigest(text string) Digest {
	return Digest{TLDR: truncate(text, maxFallbackTLDR)}
}

func clampInput(text string) string {
	text = strings.TrimSpace(text)
	if len(text) > maxInputChars {
		cut := maxInputChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text
}

// truncate cuts at a word boundary and appends an ellipsis marker. The
// limit counts runes, so multibyte text is never severed mid-rune.
func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	cut := string(runes[:max])
	if idx := strings.LastIndexByte(cut, ' '); idx > len(cut)/2 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, ",;:.") + "…"
}
