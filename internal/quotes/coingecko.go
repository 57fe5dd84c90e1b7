package quotes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/homeboard/homeboard/internal/httpx"
)

// Coin identifies a crypto asset at the market-data provider.
type Coin struct {
	ID   string
	Name string
}

// CryptoProvider is the market-data surface the resolver needs for the
// crypto path: symbol to coin id, then id to price.
type CryptoProvider interface {
	Lookup(ctx context.Context, symbol string) (Coin, error)
	Price(ctx context.Context, id, currency string) (price, pctChange float64, err error)
}

const coingeckoBase = "https://api.coingecko.com/api/v3"

// CoinGecko implements CryptoProvider against the public CoinGecko API.
type CoinGecko struct {
	http *httpx.Client
}

func NewCoinGecko(timeout time.Duration) *CoinGecko {
	return &CoinGecko{http: httpx.New(timeout, 1, 0)}
}

// Lookup searches coins by symbol. An exact symbol match wins; failing
// that, the first result does.
func (c *CoinGecko) Lookup(ctx context.Context, symbol string) (Coin, error) {
	var resp struct {
		Coins []struct {
			ID     string `json:"id"`
			Name   string `json:"name"`
			Symbol string `json:"symbol"`
		} `json:"coins"`
	}
	u := coingeckoBase + "/search?query=" + strings.ToLower(symbol)
	if err := c.http.DoJSON(ctx, "GET", u, nil, nil, &resp); err != nil {
		return Coin{}, fmt.Errorf("coingecko search: %w", err)
	}
	if len(resp.Coins) == 0 {
		return Coin{}, fmt.Errorf("%w: no coin matches %q", ErrNotFound, symbol)
	}
	for _, coin := range resp.Coins {
		if strings.EqualFold(coin.Symbol, symbol) {
			return Coin{ID: coin.ID, Name: coin.Name}, nil
		}
	}
	first := resp.Coins[0]
	return Coin{ID: first.ID, Name: first.Name}, nil
}

// Price fetches the simple price plus 24h percent change for a coin id.
func (c *CoinGecko) Price(ctx context.Context, id, currency string) (float64, float64, error) {
	cur := strings.ToLower(currency)
	var resp map[string]map[string]float64
	u := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s&include_24hr_change=true", coingeckoBase, id, cur)
	if err := c.http.DoJSON(ctx, "GET", u, nil, nil, &resp); err != nil {
		return 0, 0, fmt.Errorf("coingecko price: %w", err)
	}
	row, ok := resp[id]
	if !ok {
		return 0, 0, fmt.Errorf("no price row for coin %q", id)
	}
	price, ok := row[cur]
	if !ok {
		return 0, 0, fmt.Errorf("no %s price for coin %q", cur, id)
	}
	return price, row[cur+"_24h_change"], nil
}
