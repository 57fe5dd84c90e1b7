package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/homeboard/homeboard/internal/feeds"
	"github.com/homeboard/homeboard/internal/quotes"
	"github.com/homeboard/homeboard/internal/tile"
)

// handlePlan is the primary planning endpoint. Planning never fails:
// internal trouble degrades the tile, so the only non-200 answer is a
// missing query.
func (s *Server) handlePlan(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing required parameter: q")
	}
	defer s.observe("plan", time.Now())

	d := s.planner.Plan(c.Request().Context(), q)
	return c.JSON(http.StatusOK, map[string]tile.Descriptor{"tile": d})
}

// handleTiles is the multi-tile variant: up to 3 ranked descriptors,
// primary first.
func (s *Server) handleTiles(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing required parameter: q")
	}
	defer s.observe("tiles", time.Now())

	max := 3
	if n, err := strconv.Atoi(c.QueryParam("n")); err == nil && n > 0 && n <= 3 {
		max = n
	}
	tiles := s.planner.PlanMulti(c.Request().Context(), q, max)
	return c.JSON(http.StatusOK, map[string][]tile.Descriptor{"tiles": tiles})
}

func (s *Server) handleQuotes(c echo.Context) error {
	defer s.observe("quotes", time.Now())

	symbols := splitCSV(c.QueryParam("symbols"))
	if len(symbols) == 0 {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"quotes": []quotes.Quote{},
			"note":   "no symbols supplied",
		})
	}
	resolved := s.resolver.Resolve(c.Request().Context(), symbols)
	return c.JSON(http.StatusOK, map[string][]quotes.Quote{"quotes": resolved})
}

// handleFeed accepts the feed URL under url=, feed= or feeds= (csv).
func (s *Server) handleFeed(c echo.Context) error {
	var urls []string
	for _, param := range []string{"url", "feed"} {
		if u := strings.TrimSpace(c.QueryParam(param)); u != "" {
			urls = append(urls, u)
		}
	}
	urls = append(urls, splitCSV(c.QueryParam("feeds"))...)
	if len(urls) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "missing required parameter: url, feed or feeds")
	}
	defer s.observe("feed", time.Now())

	items, err := s.feeds.Parse(c.Request().Context(), urls)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]interface{}{
			"items": []feeds.Item{},
			"error": err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string][]feeds.Item{"items": items})
}

func (s *Server) handleVideoMeta(c echo.Context) error {
	ids := splitCSV(c.QueryParam("ids"))
	if len(ids) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "missing required parameter: ids")
	}
	defer s.observe("video-meta", time.Now())

	metas := s.video.Metadata(c.Request().Context(), ids)
	return c.JSON(http.StatusOK, map[string]interface{}{"items": metas})
}

func (s *Server) handlePreview(c echo.Context) error {
	u := strings.TrimSpace(c.QueryParam("url"))
	if u == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing required parameter: url")
	}
	defer s.observe("preview", time.Now())

	p, err := s.extractor.Preview(c.Request().Context(), u)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleScores(c echo.Context) error {
	defer s.observe("scores", time.Now())

	leagues := splitCSV(c.QueryParam("leagues"))
	if len(leagues) == 0 {
		leagues = s.cfg.Scores.Leagues
	}
	boards := s.scores.Scoreboard(c.Request().Context(), leagues)
	return c.JSON(http.StatusOK, map[string]interface{}{"leagues": boards})
}

type summarizeRequest struct {
	Text  string       `json:"text"`
	URL   string       `json:"url"`
	Items []feeds.Item `json:"items"`
}

// handleSummarize reduces a text, a URL's readable content, or a feed
// batch. The summarizer itself never errors, so only unusable input and
// a failed page fetch are non-200.
func (s *Server) handleSummarize(c echo.Context) error {
	var req summarizeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	defer s.observe("summarize", time.Now())

	ctx := c.Request().Context()
	switch {
	case len(req.Items) > 0:
		items := s.summarizer.Items(ctx, req.Items)
		return c.JSON(http.StatusOK, map[string]interface{}{"items": items})
	case strings.TrimSpace(req.Text) != "":
		digest := s.summarizer.Digest(ctx, req.Text)
		return c.JSON(http.StatusOK, digest)
	case strings.TrimSpace(req.URL) != "":
		article, err := s.extractor.Text(ctx, req.URL)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		}
		digest := s.summarizer.Digest(ctx, article.Text)
		return c.JSON(http.StatusOK, digest)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "supply text, url or items")
	}
}

func (s *Server) observe(route string, start time.Time) {
	s.telemetry.ObserveRequest(route, time.Since(start))
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
