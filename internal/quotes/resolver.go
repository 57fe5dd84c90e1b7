package quotes

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/homeboard/homeboard/internal/telemetry"
)

// Quote is one resolved symbol. Exactly one of the price fields or
// Error is populated; a Quote with a non-empty Error carries nothing
// else besides the symbol it failed for.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name,omitempty"`
	Price         float64   `json:"price,omitempty"`
	Change        float64   `json:"change,omitempty"`
	ChangePercent float64   `json:"changePercent,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	Source        string    `json:"source,omitempty"`
	AsOf          time.Time `json:"asOf,omitempty"`
	Error         string    `json:"error,omitempty"`
}

const (
	sourceCoinGecko = "coingecko"
	sourceStooq     = "stooq"

	// Cache value marking a memoized negative result.
	cacheMiss = "!"
)

// ErrNotFound marks a provider's definitive "no such symbol" answer, as
// opposed to a transport or upstream failure. Only these negatives are
// memoized; a transient outage must leave the caches untouched so the
// symbol resolves again once the provider recovers.
var ErrNotFound = errors.New("symbol not found")

// Resolver turns ticker-like symbols into quotes, trying a crypto path
// and an equity path with exchange-suffix probing. The cache memoizes
// coin ids and working suffixes for the life of the process (or across
// processes when backed by Redis).
type Resolver struct {
	crypto    CryptoProvider
	equity    EquityProvider
	cache     Cache
	timeout   time.Duration
	telemetry *telemetry.Telemetry
	logger    *log.Logger
}

func NewResolver(crypto CryptoProvider, equity EquityProvider, cache Cache, timeout time.Duration, tele *telemetry.Telemetry) *Resolver {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Resolver{
		crypto:    crypto,
		equity:    equity,
		cache:     cache,
		timeout:   timeout,
		telemetry: tele,
		logger:    log.New(log.Writer(), "[QUOTES] ", log.LstdFlags),
	}
}

// exchangeSuffixes are probed in order; the bare symbol first, then the
// major national exchange codes stooq understands.
var exchangeSuffixes = []string{"", ".US", ".UK", ".DE", ".JP", ".HK"}

// indexOverrides maps common index tickers to stooq's own notation, so
// indices never go through suffix probing.
var indexOverrides = map[string]string{
	"^SPX":   "^SPX",
	"^GSPC":  "^SPX",
	"^DJI":   "^DJI",
	"^IXIC":  "^NDQ",
	"^NDX":   "^NDX",
	"^FTSE":  "^UKX",
	"^GDAXI": "^DAX",
	"^N225":  "^NKX",
}

var suffixCurrency = map[string]string{
	"":    "USD",
	".US": "USD",
	".UK": "GBP",
	".DE": "EUR",
	".JP": "JPY",
	".HK": "HKD",
}

// quoteCurrencies are the pair quote legs recognised in BASE-QUOTE and
// BASE/QUOTE symbols.
var quoteCurrencies = map[string]bool{
	"USD": true, "USDT": true, "USDC": true,
	"EUR": true, "GBP": true,
	"BTC": true, "ETH": true,
}

var symbolSeparatorRE = regexp.MustCompile(`[\s_]+`)

// Normalize canonicalizes a raw symbol: uppercase, internal whitespace
// and underscores collapsed to a single hyphen.
func Normalize(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	return symbolSeparatorRE.ReplaceAllString(s, "-")
}

// Resolve looks up every symbol concurrently and returns one result per
// input, order preserved. A symbol that cannot be resolved yields its
// error variant; it never shortens the batch or aborts the others.
func (r *Resolver) Resolve(ctx context.Context, symbols []string) []Quote {
	results := make([]Quote, len(symbols))
	var wg sync.WaitGroup
	for i, raw := range symbols {
		wg.Add(1)
		go func(i int, raw string) {
			defer wg.Done()
			symCtx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()
			results[i] = r.resolveOne(symCtx, raw)
		}(i, raw)
	}
	wg.Wait()
	return results
}

func (r *Resolver) resolveOne(ctx context.Context, raw string) Quote {
	sym := Normalize(raw)
	if sym == "" {
		return Quote{Symbol: raw, Error: "empty symbol"}
	}

	switch classify(sym) {
	case classCrypto:
		q, err := r.resolveCrypto(ctx, sym)
		if err != nil {
			r.logger.Printf("crypto resolution failed for %s: %v", sym, err)
			return Quote{Symbol: sym, Error: err.Error()}
		}
		return q
	case classAmbiguous:
		// Short bare tokens could be either; the coin search decides,
		// with the equity path as the fallback.
		if q, err := r.resolveCrypto(ctx, sym); err == nil {
			return q
		}
		q, err := r.resolveEquity(ctx, sym)
		if err != nil {
			r.logger.Printf("resolution failed for %s: %v", sym, err)
			return Quote{Symbol: sym, Error: err.Error()}
		}
		return q
	default:
		q, err := r.resolveEquity(ctx, sym)
		if err != nil {
			r.logger.Printf("equity resolution failed for %s: %v", sym, err)
			return Quote{Symbol: sym, Error: err.Error()}
		}
		return q
	}
}

type symbolClass int

const (
	classEquity symbolClass = iota
	classCrypto
	classAmbiguous
)

var bareTokenRE = regexp.MustCompile(`^[A-Z0-9]{2,10}$`)

func classify(sym string) symbolClass {
	if strings.HasPrefix(sym, "^") || strings.Contains(sym, ".") {
		return classEquity
	}
	if strings.HasSuffix(sym, "-USD") {
		return classCrypto
	}
	if base, quote, ok := splitPair(sym); ok && base != "" && quoteCurrencies[quote] {
		return classCrypto
	}
	if bareTokenRE.MatchString(sym) {
		return classAmbiguous
	}
	return classEquity
}

// splitPair splits BASE-QUOTE or BASE/QUOTE symbols into their legs.
func splitPair(sym string) (base, quote string, ok bool) {
	for _, sep := range []string{"-", "/"} {
		parts := strings.Split(sym, sep)
		if len(parts) == 2 {
			return parts[0], parts[1], true
		}
	}
	return "", "", false
}

func (r *Resolver) resolveCrypto(ctx context.Context, sym string) (Quote, error) {
	base, currency := sym, "USD"
	if b, q, ok := splitPair(sym); ok {
		base, currency = b, q
	}

	coin, err := r.lookupCoin(ctx, base)
	if err != nil {
		return Quote{}, err
	}

	price, pct, err := r.crypto.Price(ctx, coin.ID, currency)
	r.recordProvider(sourceCoinGecko, err)
	if err != nil {
		return Quote{}, err
	}
	if !isFinite(price) {
		return Quote{}, fmt.Errorf("non-finite price for %s", sym)
	}

	return Quote{
		Symbol:        sym,
		Name:          coin.Name,
		Price:         price,
		Change:        price * pct / 100,
		ChangePercent: pct,
		Currency:      currency,
		Source:        sourceCoinGecko,
		AsOf:          time.Now().UTC(),
	}, nil
}

// lookupCoin memoizes symbol to coin-id resolution, including definitive
// misses so an unknown symbol triggers at most one upstream search per
// process. Transport failures are never memoized.
func (r *Resolver) lookupCoin(ctx context.Context, base string) (Coin, error) {
	key := "coin:" + base
	if v, ok := r.cache.Get(ctx, key); ok {
		if v == cacheMiss {
			return Coin{}, fmt.Errorf("no coin matches %q", base)
		}
		id, name, _ := strings.Cut(v, "|")
		return Coin{ID: id, Name: name}, nil
	}

	coin, err := r.crypto.Lookup(ctx, base)
	r.recordProvider(sourceCoinGecko, err)
	if err != nil {
		if errors.Is(err, ErrNotFound) && ctx.Err() == nil {
			r.cache.Set(ctx, key, cacheMiss)
		}
		return Coin{}, err
	}
	r.cache.Set(ctx, key, coin.ID+"|"+coin.Name)
	return coin, nil
}

func (r *Resolver) resolveEquity(ctx context.Context, sym string) (Quote, error) {
	if provider, ok := indexOverrides[sym]; ok {
		row, err := r.equity.Row(ctx, provider)
		r.recordProvider(sourceStooq, err)
		if err != nil {
			return Quote{}, err
		}
		return equityQuote(sym, "USD", row), nil
	}

	if _, bad := r.cache.Get(ctx, "bad:"+sym); bad {
		return Quote{}, fmt.Errorf("no exchange listing found for %s", sym)
	}

	if sfx, ok := r.cache.Get(ctx, "sfx:"+sym); ok {
		row, err := r.equity.Row(ctx, sym+sfx)
		r.recordProvider(sourceStooq, err)
		if err != nil {
			return Quote{}, err
		}
		return equityQuote(sym, suffixCurrency[sfx], row), nil
	}

	// The symbol is only marked bad when every probe was a definitive
	// not-found; one transport failure in the loop leaves it unmarked.
	definitive := true
	for _, sfx := range exchangeSuffixes {
		row, err := r.equity.Row(ctx, sym+sfx)
		r.recordProvider(sourceStooq, err)
		if err != nil {
			if ctx.Err() != nil {
				return Quote{}, ctx.Err()
			}
			if !errors.Is(err, ErrNotFound) {
				definitive = false
			}
			continue
		}
		if row.Close == 0 || !isFinite(row.Close) {
			continue
		}
		r.cache.Set(ctx, "sfx:"+sym, sfx)
		return equityQuote(sym, suffixCurrency[sfx], row), nil
	}

	if definitive {
		r.cache.Set(ctx, "bad:"+sym, "1")
	}
	return Quote{}, fmt.Errorf("no exchange listing found for %s", sym)
}

// equityQuote derives change from open/close, guarding a zero or
// non-finite open.
func equityQuote(sym, currency string, row EquityRow) Quote {
	if currency == "" {
		currency = "USD"
	}
	q := Quote{
		Symbol:   sym,
		Name:     sym,
		Price:    row.Close,
		Currency: currency,
		Source:   sourceStooq,
		AsOf:     rowTime(row),
	}
	if row.Open != 0 && isFinite(row.Open) {
		q.Change = row.Close - row.Open
		q.ChangePercent = (row.Close/row.Open - 1) * 100
	}
	return q
}

func rowTime(row EquityRow) time.Time {
	if t, err := time.Parse("2006-01-02 15:04:05", row.Date+" "+row.Time); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse("2006-01-02", row.Date); err == nil {
		return t.UTC()
	}
	return time.Now().UTC()
}

func (r *Resolver) recordProvider(provider string, err error) {
	if r.telemetry == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.telemetry.RecordProviderRequest(provider, status)
}
