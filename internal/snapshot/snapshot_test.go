package snapshot

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "testing"
    "time"

    "marketsnapshot/internal/quote"
)

// fakeSource serves canned prices by ticker; unknown tickers fail.
type fakeSource struct {
    prices map[string]float64
    calls  []string
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(_ context.Context, ticker string) (quote.Quote, error) {
    f.calls = append(f.calls, ticker)
    v, ok := f.prices[ticker]
    if !ok {
        return quote.Quote{}, errors.New("no data")
    }
    return quote.Quote{Ticker: ticker, Price: v, Source: "fake:intraday", ReceivedAt: time.Now().UTC()}, nil
}

func allTickersUp(extra map[string]float64) map[string]float64 {
    m := map[string]float64{
        "^TNX":     4.3,
        "BZ=F":     80,
        "DX-Y.NYB": 100,
        "USDINR=X": 83.2,
        "^GSPC":    5000,
    }
    for k, v := range extra { m[k] = v }
    return m
}

func TestBuild_AllSymbolsReported_InDeclaredOrder(t *testing.T) {
    src := &fakeSource{prices: allTickersUp(nil)}
    r := New(src).Build(t.Context())

    if len(r.Entries) != 5 {
        t.Fatalf("want 5 entries, got %d: %+v", len(r.Entries), r.Entries)
    }
    wantOrder := []string{NameUS10Y, NameBrent, NameDXY, NameUSDINR, NameSPX}
    for i, name := range wantOrder {
        if r.Entries[i].Name != name {
            t.Fatalf("entry %d: want %q, got %q", i, name, r.Entries[i].Name)
        }
        if r.Entries[i].Quote == nil {
            t.Fatalf("entry %d (%s): unexpected N/A", i, name)
        }
    }
    if r.ID == "" || r.BuiltAt.IsZero() {
        t.Fatalf("missing run metadata: %+v", r)
    }
}

func TestBuild_FallbackTicker_UsedWhenPrimaryFails(t *testing.T) {
    // DX-Y.NYB absent, ^DXY present: the alternate must serve the value.
    prices := allTickersUp(map[string]float64{"^DXY": 104.5})
    delete(prices, "DX-Y.NYB")
    src := &fakeSource{prices: prices}

    r := New(src).Build(t.Context())
    var dxy Entry
    for _, e := range r.Entries {
        if e.Name == NameDXY { dxy = e }
    }
    if dxy.Quote == nil || dxy.Quote.Price != 104.5 {
        t.Fatalf("fallback not used: %+v", dxy)
    }
    // The printed line still names the primary ticker.
    if dxy.Ticker != "DX-Y.NYB" {
        t.Fatalf("want primary ticker on entry, got %q", dxy.Ticker)
    }

    // Fallback order: primary tried before alternate.
    iPrimary, iAlt := -1, -1
    for i, c := range src.calls {
        if c == "DX-Y.NYB" && iPrimary < 0 { iPrimary = i }
        if c == "^DXY" && iAlt < 0 { iAlt = i }
    }
    if iPrimary < 0 || iAlt < 0 || iPrimary > iAlt {
        t.Fatalf("fallback order wrong: calls=%v", src.calls)
    }
}

func TestBuild_AllSourcesFail_LineContainsNA(t *testing.T) {
    src := &fakeSource{prices: map[string]float64{}}
    r := New(src).Build(t.Context())

    text := r.Text()
    for _, sym := range Symbols {
        want := fmt.Sprintf("%s: N/A  (ticker: %s)", sym.Name, sym.Tickers[0])
        if !strings.Contains(text, want) {
            t.Fatalf("missing line %q in:\n%s", want, text)
        }
    }
}

func TestQuickFlags_RiskOffAndINRPressure_NoInflationNote(t *testing.T) {
    src := &fakeSource{prices: allTickersUp(map[string]float64{
        "^TNX":     4.7,
        "DX-Y.NYB": 106,
        "BZ=F":     90,
    })}
    r := New(src).Build(t.Context())

    joined := strings.Join(r.Flags, " | ")
    if !strings.Contains(joined, "risk-off") {
        t.Fatalf("want risk-off flag, got %q", joined)
    }
    if !strings.Contains(joined, "INR pressure") {
        t.Fatalf("want INR pressure flag, got %q", joined)
    }
    if strings.Contains(joined, "inflation") {
        t.Fatalf("unexpected inflation flag at Brent=90: %q", joined)
    }
}

func TestQuickFlags_AllBelowThresholds_DefaultPhraseExactly(t *testing.T) {
    src := &fakeSource{prices: allTickersUp(nil)}
    r := New(src).Build(t.Context())

    if len(r.Flags) != 0 {
        t.Fatalf("want no flags, got %v", r.Flags)
    }
    lines := strings.Split(r.Text(), "\n")
    last := lines[len(lines)-1]
    if last != "⚡ Quick read: No major global red flags detected" {
        t.Fatalf("unexpected quick read line: %q", last)
    }
}

func TestQuickFlags_LowYield_RiskOnPossible(t *testing.T) {
    entries := []Entry{
        {Name: NameUS10Y, Ticker: "^TNX", Quote: &quote.Quote{Ticker: "^TNX", Price: 4.1}},
    }
    flags := QuickFlags(entries)
    if len(flags) != 1 || flags[0] != "US10Y low → risk-on possible" {
        t.Fatalf("unexpected flags: %v", flags)
    }
}

func TestQuickFlags_MissingSymbols_RulesDoNotFire(t *testing.T) {
    // N/A entries must not trip any rule.
    entries := []Entry{
        {Name: NameUS10Y, Ticker: "^TNX"},
        {Name: NameDXY, Ticker: "DX-Y.NYB"},
        {Name: NameBrent, Ticker: "BZ=F"},
    }
    if flags := QuickFlags(entries); len(flags) != 0 {
        t.Fatalf("want no flags for N/A entries, got %v", flags)
    }
}

func TestText_HeaderRendersISTTimestamp(t *testing.T) {
    r := Report{
        ID:      "test",
        BuiltAt: time.Date(2025, 3, 4, 2, 0, 0, 0, time.UTC), // 07:30 IST
    }
    header := strings.Split(r.Text(), "\n")[0]
    if header != "📊 Morning Market Snapshot — 2025-03-04 07:30 IST" {
        t.Fatalf("unexpected header: %q", header)
    }
}
