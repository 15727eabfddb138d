package cache

import (
    "context"
    "sync"
    "time"

    "marketsnapshot/internal/quote"
)

// entry stores the cached quote for a single ticker with expiry.
type entry struct {
    expiresAt time.Time
    q         quote.Quote
}

// Source caches per-ticker quotes for a TTL. Fetch errors are not cached,
// so a transient failure does not suppress the next attempt.
type Source struct {
    S        quote.Source
    TTL      time.Duration
    MaxItems int

    mu    sync.RWMutex
    items map[string]entry // key: ticker
}

func (c *Source) Name() string { return c.S.Name() }

func (c *Source) Fetch(ctx context.Context, ticker string) (quote.Quote, error) {
    if c.S == nil || c.TTL <= 0 {
        return c.S.Fetch(ctx, ticker)
    }

    now := time.Now()
    c.mu.RLock()
    e, ok := c.items[ticker]
    c.mu.RUnlock()
    if ok && now.Before(e.expiresAt) {
        return e.q, nil
    }

    q, err := c.S.Fetch(ctx, ticker)
    if err != nil {
        // Serve a stale quote if we still hold one rather than failing.
        if ok {
            return e.q, nil
        }
        return quote.Quote{}, err
    }

    c.mu.Lock()
    if c.items == nil {
        c.items = make(map[string]entry)
    }
    c.items[ticker] = entry{expiresAt: now.Add(c.TTL), q: q}
    // best-effort cap cache size: drop expired first, then arbitrary keys
    if c.MaxItems > 0 && len(c.items) > c.MaxItems {
        for k, v := range c.items {
            if now.After(v.expiresAt) {
                delete(c.items, k)
            }
            if len(c.items) <= c.MaxItems {
                break
            }
        }
        for k := range c.items {
            if len(c.items) <= c.MaxItems { break }
            delete(c.items, k)
        }
    }
    c.mu.Unlock()
    return q, nil
}
