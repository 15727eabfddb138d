package quote

import (
    "context"
    "time"
)

// Quote is the normalized shape returned by all sources.
// Price is a plain float64; absence of a price is an error from Fetch,
// never a zero-value Quote.
type Quote struct {
    Ticker     string    `json:"ticker"`
    Price      float64   `json:"price"`
    Source     string    `json:"source"`
    ReceivedAt time.Time `json:"received_at"`
}

type Source interface {
    Name() string
    Fetch(ctx context.Context, ticker string) (Quote, error)
}
