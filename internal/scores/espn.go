// Package scores fetches football scoreboards from ESPN's public site
// API, one league per request, joined with per-league failure tolerance.
package scores

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/homeboard/homeboard/internal/httpx"
)

// Match is one fixture in a league scoreboard.
type Match struct {
	Name      string `json:"name"`
	Home      string `json:"home"`
	Away      string `json:"away"`
	HomeScore int    `json:"homeScore"`
	AwayScore int    `json:"awayScore"`
	Status    string `json:"status"`
	Date      string `json:"date,omitempty"`
}

// League is one league's scoreboard, or its error when the fetch failed.
type League struct {
	Code    string  `json:"code"`
	Name    string  `json:"name,omitempty"`
	Matches []Match `json:"matches,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// DefaultLeagues are the competitions fetched when the caller names none.
var DefaultLeagues = []string{"eng.1", "esp.1", "ita.1", "ger.1", "uefa.champions"}

const espnBase = "https://site.api.espn.com/apis/site/v2/sports/soccer/"

type Client struct {
	http   *httpx.Client
	base   string
	logger *log.Logger
}

func New(timeout time.Duration) *Client {
	return &Client{
		http:   httpx.New(timeout, 0, 0),
		base:   espnBase,
		logger: log.New(log.Writer(), "[SCORES] ", log.LstdFlags),
	}
}

// Scoreboard fetches every league concurrently and returns one entry
// per league in input order. A failed league carries its error and
// never suppresses the others.
func (c *Client) Scoreboard(ctx context.Context, leagues []string) []League {
	if len(leagues) == 0 {
		leagues = DefaultLeagues
	}
	out := make([]League, len(leagues))
	var wg sync.WaitGroup
	for i, code := range leagues {
		wg.Add(1)
		go func(i int, code string) {
			defer wg.Done()
			out[i] = c.one(ctx, code)
		}(i, code)
	}
	wg.Wait()
	return out
}

type espnScoreboard struct {
	Leagues []struct {
		Name string `json:"name"`
	} `json:"leagues"`
	Events []struct {
		Name   string `json:"name"`
		Date   string `json:"date"`
		Status struct {
			Type struct {
				ShortDetail string `json:"shortDetail"`
			} `json:"type"`
		} `json:"status"`
		Competitions []struct {
			Competitors []struct {
				HomeAway string `json:"homeAway"`
				Score    string `json:"score"`
				Team     struct {
					DisplayName string `json:"displayName"`
				} `json:"team"`
			} `json:"competitors"`
		} `json:"competitions"`
	} `json:"events"`
}

func (c *Client) one(ctx context.Context, code string) League {
	var resp espnScoreboard
	if err := c.http.DoJSON(ctx, "GET", c.base+code+"/scoreboard", nil, nil, &resp); err != nil {
		c.logger.Printf("scoreboard fetch failed for %s: %v", code, err)
		return League{Code: code, Error: err.Error()}
	}

	league := League{Code: code}
	if len(resp.Leagues) > 0 {
		league.Name = resp.Leagues[0].Name
	}
	for _, ev := range resp.Events {
		m := Match{
			Name:   ev.Name,
			Status: ev.Status.Type.ShortDetail,
			Date:   ev.Date,
		}
		if len(ev.Competitions) > 0 {
			for _, comp := range ev.Competitions[0].Competitors {
				score, _ := strconv.Atoi(comp.Score)
				switch comp.HomeAway {
				case "home":
					m.Home = comp.Team.DisplayName
					m.HomeScore = score
				case "away":
					m.Away = comp.Team.DisplayName
					m.AwayScore = score
				}
			}
		}
		league.Matches = append(league.Matches, m)
	}
	return league
}
