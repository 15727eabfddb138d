package yahooadapter

import (
    "context"
    "fmt"
    "time"

    "marketsnapshot/internal/quote"
    "marketsnapshot/internal/quote/yahoo"
    "golang.org/x/sync/singleflight"
)

type Config struct {
    Name     string // display name, default: Yahoo
    Range    string // chart range, default: 1d
    Interval string // chart interval, default: 1m
}

// Adapter turns the Yahoo chart client into a quote.Source.
// The price is the newest non-null intraday close; when the series is empty
// or all-null it degrades to the snapshot field of the chart meta
// (regularMarketPrice, then previous close).
type Adapter struct {
    cfg    Config
    client *yahoo.Client

    // coalesce concurrent fetches of the same ticker
    sf singleflight.Group
}

func New(cfg Config, client *yahoo.Client) *Adapter {
    if cfg.Name == "" { cfg.Name = "Yahoo" }
    if cfg.Range == "" { cfg.Range = "1d" }
    if cfg.Interval == "" { cfg.Interval = "1m" }
    return &Adapter{cfg: cfg, client: client}
}

func (a *Adapter) Name() string { return a.cfg.Name }

func (a *Adapter) Fetch(ctx context.Context, ticker string) (quote.Quote, error) {
    v, err, _ := a.sf.Do(ticker, func() (any, error) {
        return a.fetch(ctx, ticker)
    })
    if err != nil {
        return quote.Quote{}, err
    }
    return v.(quote.Quote), nil
}

func (a *Adapter) fetch(ctx context.Context, ticker string) (quote.Quote, error) {
    ch, err := a.client.GetChart(ctx, ticker, a.cfg.Range, a.cfg.Interval)
    if err != nil {
        return quote.Quote{}, err
    }

    now := time.Now().UTC()
    if price, at, ok := ch.LastClose(); ok {
        if at.IsZero() { at = now }
        return quote.Quote{
            Ticker:     ticker,
            Price:      price,
            Source:     fmt.Sprintf("%s:intraday", a.cfg.Name),
            ReceivedAt: at,
        }, nil
    }
    if price, ok := ch.SnapshotPrice(); ok {
        at := now
        if ch.Meta.RegularMarketTime > 0 {
            at = time.Unix(ch.Meta.RegularMarketTime, 0).UTC()
        }
        return quote.Quote{
            Ticker:     ticker,
            Price:      price,
            Source:     fmt.Sprintf("%s:snapshot", a.cfg.Name),
            ReceivedAt: at,
        }, nil
    }
    return quote.Quote{}, fmt.Errorf("no price data for %q", ticker)
}
