package quotes

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/homeboard/homeboard/internal/httpx"
)

// EquityRow is one daily quote row from the equity provider.
type EquityRow struct {
	Symbol string
	Date   string
	Time   string
	Open   float64
	Close  float64
}

// EquityProvider fetches a quote row for a provider-notation symbol.
// A symbol the provider does not know yields an error, which the
// resolver treats as "try the next suffix".
type EquityProvider interface {
	Row(ctx context.Context, providerSymbol string) (EquityRow, error)
}

// Stooq implements EquityProvider against stooq.com's CSV endpoint.
// Row format: Symbol,Date,Time,Open,High,Low,Close,Volume with N/D in
// place of unknown values.
type Stooq struct {
	http *httpx.Client
}

func NewStooq(timeout time.Duration) *Stooq {
	return &Stooq{http: httpx.New(timeout, 0, 0)}
}

func (s *Stooq) Row(ctx context.Context, providerSymbol string) (EquityRow, error) {
	u := "https://stooq.com/q/l/?s=" + strings.ToLower(providerSymbol) + "&f=sd2t2ohlcv&h&e=csv"
	body, err := s.http.GetText(ctx, u, 64<<10)
	if err != nil {
		return EquityRow{}, fmt.Errorf("stooq fetch %s: %w", providerSymbol, err)
	}
	return parseStooqCSV(providerSymbol, body)
}

// parseStooqCSV pulls the single data row out of a header+row CSV body.
// Stooq answers 200 with N/D fields for unknown symbols, so the parse is
// where "not found" is actually detected; those errors wrap ErrNotFound
// while malformed bodies and fetch failures stay plain.
func parseStooqCSV(symbol, body string) (EquityRow, error) {
	lines := strings.Split(strings.TrimSpace(body), "\n")
	if len(lines) < 2 {
		return EquityRow{}, fmt.Errorf("stooq %s: no data row", symbol)
	}
	fields := strings.Split(strings.TrimSpace(lines[1]), ",")
	if len(fields) < 7 {
		return EquityRow{}, fmt.Errorf("stooq %s: malformed row %q", symbol, lines[1])
	}

	open, err := stooqFloat(fields[3])
	if err != nil {
		return EquityRow{}, fmt.Errorf("stooq %s: open: %w", symbol, err)
	}
	closePx, err := stooqFloat(fields[6])
	if err != nil {
		return EquityRow{}, fmt.Errorf("stooq %s: close: %w", symbol, err)
	}
	if !isFinite(closePx) {
		return EquityRow{}, fmt.Errorf("stooq %s: non-finite close", symbol)
	}

	return EquityRow{
		Symbol: fields[0],
		Date:   fields[1],
		Time:   fields[2],
		Open:   open,
		Close:  closePx,
	}, nil
}

func stooqFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "N/D") {
		return 0, fmt.Errorf("%w: no value", ErrNotFound)
	}
	return strconv.ParseFloat(s, 64)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
