package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"time"
)

// Chart is the decoded per-ticker payload of the v8 chart endpoint.
type Chart struct {
	Ticker     string
	Currency   string
	Timestamps []int64
	// Closes is position-aligned with Timestamps; entries can be null
	// when the exchange reported no trade for that minute.
	Closes []*float64
	Meta   Meta
}

// Meta carries the snapshot fields reported alongside the series.
type Meta struct {
	RegularMarketPrice *float64
	ChartPreviousClose *float64
	PreviousClose      *float64
	RegularMarketTime  int64
}

// GetChart retrieves the price chart for a single ticker, e.g.
// GetChart(ctx, "^GSPC", "1d", "1m").
func (c *Client) GetChart(ctx context.Context, ticker, chartRange, interval string, opts ...ClientOption) (*Chart, error) {
	var override = &Client{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		header:     c.header.Clone(),
		query:      c.query,
	}
	for _, opt := range opts {
		opt(override)
	}

	query := maps.Clone(override.query)
	if query == nil {
		query = url.Values{}
	}
	query.Set("range", chartRange)
	query.Set("interval", interval)

	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", override.baseURL, url.PathEscape(ticker), query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = override.header

	res, err := override.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusNotFound:
		return nil, fmt.Errorf("unknown ticker %q", ticker)

	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("rate limited")

	default:
		return nil, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	var body chartResponse
	dec := json.NewDecoder(res.Body)
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding chart response: %w", err)
	}
	if body.Chart.Error != nil {
		return nil, fmt.Errorf("chart error: %s: %s", body.Chart.Error.Code, body.Chart.Error.Description)
	}
	if len(body.Chart.Result) == 0 {
		return nil, fmt.Errorf("empty chart result for %q", ticker)
	}

	r := body.Chart.Result[0]
	out := &Chart{
		Ticker:     ticker,
		Currency:   r.Meta.Currency,
		Timestamps: r.Timestamp,
		Meta: Meta{
			RegularMarketPrice: r.Meta.RegularMarketPrice,
			ChartPreviousClose: r.Meta.ChartPreviousClose,
			PreviousClose:      r.Meta.PreviousClose,
			RegularMarketTime:  r.Meta.RegularMarketTime,
		},
	}
	if len(r.Indicators.Quote) > 0 {
		out.Closes = r.Indicators.Quote[0].Close
	}
	return out, nil
}

// LastClose returns the newest non-null close of the series together with
// its observation time. ok is false when the series is empty or all-null.
func (ch *Chart) LastClose() (price float64, at time.Time, ok bool) {
	for i := len(ch.Closes) - 1; i >= 0; i-- {
		if ch.Closes[i] == nil {
			continue
		}
		at = time.Time{}
		if i < len(ch.Timestamps) && ch.Timestamps[i] > 0 {
			at = time.Unix(ch.Timestamps[i], 0).UTC()
		}
		return *ch.Closes[i], at, true
	}
	return 0, time.Time{}, false
}

// SnapshotPrice returns the single last-known-price field of the meta block,
// preferring the regular market price over the previous close.
func (ch *Chart) SnapshotPrice() (float64, bool) {
	if ch.Meta.RegularMarketPrice != nil {
		return *ch.Meta.RegularMarketPrice, true
	}
	if ch.Meta.ChartPreviousClose != nil {
		return *ch.Meta.ChartPreviousClose, true
	}
	if ch.Meta.PreviousClose != nil {
		return *ch.Meta.PreviousClose, true
	}
	return 0, false
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Currency           string   `json:"currency"`
		Symbol             string   `json:"symbol"`
		RegularMarketPrice *float64 `json:"regularMarketPrice"`
		ChartPreviousClose *float64 `json:"chartPreviousClose"`
		PreviousClose      *float64 `json:"previousClose"`
		RegularMarketTime  int64    `json:"regularMarketTime"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
