package video

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetadataFallsBackPerID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.RawQuery, "goodvid01") {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"title":"A real video","thumbnail_url":"https://i.ytimg.com/vi/goodvid01/maxresdefault.jpg"}`)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	c := New(5 * time.Second)
	c.base = srv.URL

	got := c.Metadata(context.Background(), []string{"goodvid01", "deadvid02"})
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}

	if got[0].Title != "A real video" {
		t.Fatalf("oembed title should carry through: %+v", got[0])
	}
	if !strings.Contains(got[0].Thumb, "maxresdefault") {
		t.Fatalf("oembed thumbnail should win: %+v", got[0])
	}

	if got[1].ID != "deadvid02" || got[1].Title != "" {
		t.Fatalf("failed id should stay bare: %+v", got[1])
	}
	if got[1].Thumb != FallbackThumb("deadvid02") {
		t.Fatalf("failed id should get the synthesized thumbnail: %+v", got[1])
	}
}
