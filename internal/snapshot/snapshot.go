package snapshot

import (
    "context"
    "fmt"
    "log"
    "strconv"
    "strings"
    "time"

    "github.com/google/uuid"
    "marketsnapshot/internal/quote"
)

// Symbol pairs a display name with the ordered list of tickers to try.
// Fallback tickers exist because some Yahoo symbols are region-dependent;
// the printed line always names the primary ticker.
type Symbol struct {
    Name    string
    Tickers []string
}

// Symbols is the fixed set reported by every run, in output order.
var Symbols = []Symbol{
    {Name: NameUS10Y, Tickers: []string{"^TNX"}},
    {Name: NameBrent, Tickers: []string{"BZ=F"}},
    {Name: NameDXY, Tickers: []string{"DX-Y.NYB", "^DXY"}},
    {Name: NameUSDINR, Tickers: []string{"USDINR=X"}},
    {Name: NameSPX, Tickers: []string{"^GSPC"}},
}

const (
    NameUS10Y  = "US 10Y (approx)"
    NameBrent  = "Brent (USD/bbl)"
    NameDXY    = "DXY (Dollar Index)"
    NameUSDINR = "USD/INR"
    NameSPX    = "S&P 500"
)

// Quick-read thresholds. Fixed by design, not configurable.
const (
    us10yHigh  = 4.6
    us10yLow   = 4.2
    dxyStrong  = 105
    brentHigh  = 95
)

const defaultQuickRead = "No major global red flags detected"

// Entry is one symbol's outcome for a single run.
// Quote is nil when every ticker in the fallback list failed.
type Entry struct {
    Name   string       `json:"name"`
    Ticker string       `json:"ticker"`
    Quote  *quote.Quote `json:"quote,omitempty"`
}

// Report is the assembled snapshot for one run. It is built once,
// rendered, delivered, and discarded; nothing outlives the run.
type Report struct {
    ID      string    `json:"id"`
    BuiltAt time.Time `json:"built_at"`
    Entries []Entry   `json:"entries"`
    Flags   []string  `json:"flags"`
}

// Builder assembles a Report from a quote source.
type Builder struct {
    src quote.Source
}

func New(src quote.Source) *Builder { return &Builder{src: src} }

// Build fetches every symbol in order and assembles the report.
// Per-symbol failures are logged and surfaced as N/A entries; Build
// itself never fails.
func (b *Builder) Build(ctx context.Context) Report {
    r := Report{
        ID:      uuid.NewString(),
        BuiltAt: time.Now().UTC(),
        Entries: make([]Entry, 0, len(Symbols)),
    }
    for _, sym := range Symbols {
        e := Entry{Name: sym.Name, Ticker: sym.Tickers[0]}
        for _, t := range sym.Tickers {
            q, err := b.src.Fetch(ctx, t)
            if err != nil {
                log.Printf("fetch error %s: %v", t, err)
                continue
            }
            e.Quote = &q
            break
        }
        r.Entries = append(r.Entries, e)
    }
    r.Flags = QuickFlags(r.Entries)
    return r
}

// QuickFlags applies the three independent threshold rules to the
// fetched values. Rules for symbols that came back N/A simply do not fire.
func QuickFlags(entries []Entry) []string {
    price := func(name string) (float64, bool) {
        for _, e := range entries {
            if e.Name == name && e.Quote != nil {
                return e.Quote.Price, true
            }
        }
        return 0, false
    }

    var flags []string
    if v, ok := price(NameUS10Y); ok {
        if v > us10yHigh {
            flags = append(flags, "US10Y high → risk-off")
        } else if v < us10yLow {
            flags = append(flags, "US10Y low → risk-on possible")
        }
    }
    if v, ok := price(NameDXY); ok && v > dxyStrong {
        flags = append(flags, "DXY strong → INR pressure possible")
    }
    if v, ok := price(NameBrent); ok && v > brentHigh {
        flags = append(flags, "Brent high → inflation pressure")
    }
    return flags
}

// istZone renders timestamps the way the report's readers expect them.
var istZone = time.FixedZone("IST", 5*3600+30*60)

// Text renders the report as the message body sent to the chat.
func (r Report) Text() string {
    lines := make([]string, 0, len(r.Entries)+4)
    lines = append(lines, fmt.Sprintf("📊 Morning Market Snapshot — %s", r.BuiltAt.In(istZone).Format("2006-01-02 15:04 IST")))
    lines = append(lines, "")
    for _, e := range r.Entries {
        val := "N/A"
        if e.Quote != nil {
            val = formatPrice(e.Quote.Price)
        }
        lines = append(lines, fmt.Sprintf("%s: %s  (ticker: %s)", e.Name, val, e.Ticker))
    }
    lines = append(lines, "")
    quick := defaultQuickRead
    if len(r.Flags) > 0 {
        quick = strings.Join(r.Flags, " | ")
    }
    lines = append(lines, "⚡ Quick read: "+quick)
    return strings.Join(lines, "\n")
}

func formatPrice(v float64) string {
    // Preserve precision without trailing zeros
    return strconv.FormatFloat(v, 'f', -1, 64)
}
