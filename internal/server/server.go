// Package server wires the planning, quote, feed, and summary
// components into a stateless HTTP API.
package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/homeboard/homeboard/config"
	"github.com/homeboard/homeboard/internal/extract"
	"github.com/homeboard/homeboard/internal/feeds"
	"github.com/homeboard/homeboard/internal/planner"
	"github.com/homeboard/homeboard/internal/provider"
	openai "github.com/homeboard/homeboard/internal/provider/openai"
	"github.com/homeboard/homeboard/internal/quotes"
	"github.com/homeboard/homeboard/internal/scores"
	"github.com/homeboard/homeboard/internal/summarize"
	"github.com/homeboard/homeboard/internal/telemetry"
	"github.com/homeboard/homeboard/internal/video"
)

// Server owns one instance of every component. Nothing here holds
// per-request state; the only cross-request memory is the advisory
// quote cache.
type Server struct {
	cfg        *config.Config
	planner    *planner.Planner
	resolver   *quotes.Resolver
	feeds      *feeds.Parser
	extractor  *extract.Extractor
	summarizer *summarize.Summarizer
	video      *video.Client
	scores     *scores.Client
	telemetry  *telemetry.Telemetry
	logger     *log.Logger
}

// New builds the dependency graph from config. An empty LLM API key
// leaves the model paths disabled; planning and summarization then run
// on their deterministic fallbacks only.
func New(cfg *config.Config) *Server {
	tele := telemetry.New()

	var llm provider.Provider
	if cfg.LLM.APIKey != "" {
		llm = openai.New(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Timeout)
	}

	var cache quotes.Cache
	if cfg.Quotes.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Quotes.Redis.Addr,
			Password: cfg.Quotes.Redis.Password,
			DB:       cfg.Quotes.Redis.DB,
		})
		cache = quotes.NewRedisCache(rdb, "", 0)
	}

	return &Server{
		cfg:        cfg,
		planner:    planner.New(llm, tele, cfg.LLM.PlanTimeout),
		resolver:   quotes.NewResolver(quotes.NewCoinGecko(cfg.Quotes.Timeout), quotes.NewStooq(cfg.Quotes.Timeout), cache, cfg.Quotes.Timeout, tele),
		feeds:      feeds.NewParser(cfg.Feeds.Timeout),
		extractor:  extract.New(cfg.Extract.Timeout),
		summarizer: summarize.New(llm),
		video:      video.New(cfg.Video.Timeout),
		scores:     scores.New(cfg.Scores.Timeout),
		telemetry:  tele,
		logger:     log.New(log.Writer(), "[HTTP] ", log.LstdFlags),
	}
}

// Echo assembles the router with middleware and every route.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: telemetry.TraceID,
	}))
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		s.logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if s.cfg.Telemetry.Enabled {
		e.GET("/metrics", echo.WrapHandler(s.telemetry.Handler()))
	}

	e.GET("/plan", s.handlePlan)
	e.GET("/tiles", s.handleTiles)
	e.GET("/quotes", s.handleQuotes)
	e.GET("/feed", s.handleFeed)
	e.GET("/video-meta", s.handleVideoMeta)
	e.GET("/preview", s.handlePreview)
	e.GET("/scores", s.handleScores)
	e.POST("/summarize", s.handleSummarize)
	return e
}

// Run starts the server on the configured address.
func Run(cfg *config.Config) error {
	s := New(cfg)
	addr := cfg.Server.Address
	if addr == "" {
		addr = ":8080"
	}
	log.Printf("listening on %s", addr)
	return s.Echo().Start(addr)
}
