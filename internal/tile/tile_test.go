package tile

import (
	"strings"
	"testing"
)

func TestValidateRequiredFields(t *testing.T) {
	cases := []struct {
		d  Descriptor
		ok bool
	}{
		{Descriptor{Type: TypeWeb, Title: "x", URL: "https://example.com"}, true},
		{Descriptor{Type: TypeWeb, Title: "x"}, false},
		{Descriptor{Type: TypeMaps, Title: "x", Query: "Bath"}, true},
		{Descriptor{Type: TypeMaps, Title: "x"}, false},
		{Descriptor{Type: TypeRSS, Title: "x", Feeds: []string{"https://example.com/rss"}}, true},
		{Descriptor{Type: TypeRSS, Title: "x"}, false},
		{Descriptor{Type: TypeYouTube, Title: "x"}, true},
		{Descriptor{Type: TypeStocks, Title: "x", Symbols: []string{"AAPL"}}, true},
		{Descriptor{Type: TypeSpotify, Title: "x"}, false},
		{Descriptor{Type: "launch_missiles", Title: "x"}, false},
		{Descriptor{Type: TypeWeb, URL: "https://example.com"}, false},
	}
	for _, c := range cases {
		err := c.d.Validate()
		if c.ok && err != nil {
			t.Fatalf("Validate(%+v) = %v, want nil", c.d, err)
		}
		if !c.ok && err == nil {
			t.Fatalf("Validate(%+v) = nil, want error", c.d)
		}
	}
}

func TestSafeDefaultAlwaysValid(t *testing.T) {
	for _, q := range []string{"anything", "", "  spaced  "} {
		d := SafeDefault(q)
		if err := d.Validate(); err != nil {
			t.Fatalf("SafeDefault(%q) invalid: %v", q, err)
		}
		if d.Type != TypeWeb {
			t.Fatalf("SafeDefault(%q) type = %q", q, d.Type)
		}
	}
}

func TestSalvageJSONFromProse(t *testing.T) {
	raw := "Sure thing! The plan is:\n{\"type\":\"web\",\"url\":\"https://example.com\"}\nEnjoy."
	got, err := SalvageJSON(raw)
	if err != nil {
		t.Fatalf("salvage failed: %v", err)
	}
	if got != `{"type":"web","url":"https://example.com"}` {
		t.Fatalf("unexpected salvage: %q", got)
	}
}

func TestSalvageJSONFencedBlock(t *testing.T) {
	raw := "```json\n{\"tiles\":[{\"type\":\"maps\",\"q\":\"Bath\"}]}\n```"
	got, err := SalvageJSON(raw)
	if err != nil {
		t.Fatalf("salvage failed: %v", err)
	}
	if !strings.HasPrefix(got, `{"tiles":`) {
		t.Fatalf("unexpected salvage: %q", got)
	}
}

func TestSalvageJSONIgnoresBracesInStrings(t *testing.T) {
	raw := `prefix {"title":"a } tricky { title","type":"web"} suffix`
	got, err := SalvageJSON(raw)
	if err != nil {
		t.Fatalf("salvage failed: %v", err)
	}
	if got != `{"title":"a } tricky { title","type":"web"}` {
		t.Fatalf("unexpected salvage: %q", got)
	}
}

func TestSalvageJSONNothingToFind(t *testing.T) {
	if _, err := SalvageJSON("no json anywhere"); err == nil {
		t.Fatal("expected an error for brace-free input")
	}
}

func TestSchemaAcceptsSingleTileAndEnvelope(t *testing.T) {
	if err := ValidateDocument([]byte(`{"type":"maps","title":"Map","q":"Bath"}`)); err != nil {
		t.Fatalf("single tile rejected: %v", err)
	}
	if err := ValidateDocument([]byte(`{"tiles":[{"type":"web","url":"https://example.com"}]}`)); err != nil {
		t.Fatalf("envelope rejected: %v", err)
	}
}

func TestSchemaRejectsUnknownType(t *testing.T) {
	if err := ValidateDocument([]byte(`{"type":"launch_missiles"}`)); err == nil {
		t.Fatal("unknown type should fail schema validation")
	}
}

func TestSchemaRejectsOversizedEnvelope(t *testing.T) {
	doc := `{"tiles":[
		{"type":"web"},{"type":"web"},{"type":"web"},{"type":"web"}
	]}`
	if err := ValidateDocument([]byte(doc)); err == nil {
		t.Fatal("more than 3 tiles should fail schema validation")
	}
}

func TestNewsFeedURLEncodesQuery(t *testing.T) {
	u := NewsFeedURL("climate change")
	if !strings.Contains(u, "news.google.com/rss/search") {
		t.Fatalf("unexpected feed URL: %q", u)
	}
	if strings.Contains(u, " ") {
		t.Fatalf("query not encoded: %q", u)
	}
}
