package main

import (
    "context"
    "errors"
    "flag"
    "fmt"
    "log"
    "net/http"
    "os"
    "time"

    "github.com/joho/godotenv"
    "marketsnapshot/internal/config"
    "marketsnapshot/internal/httpx"
    "marketsnapshot/internal/quote"
    "marketsnapshot/internal/quote/cache"
    "marketsnapshot/internal/quote/ratelimit"
    "marketsnapshot/internal/quote/yahoo"
    "marketsnapshot/internal/snapshot"
    "marketsnapshot/internal/telegram"
    "marketsnapshot/internal/quote/yahooadapter"
)

func main() {
    var configPath string
    var timeout int
    var dryRun bool

    flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.json (optional)")
    flag.IntVar(&timeout, "timeout", 0, "request timeout seconds (overrides config)")
    flag.BoolVar(&dryRun, "dry-run", false, "build and print the report without sending")
    flag.Parse()

    // .env is optional; real deployments use repo/CI secrets.
    _ = godotenv.Load()

    cfg, err := config.Load(configPath)
    if err != nil { log.Fatalf("config: %v", err) }
    if timeout > 0 { cfg.Server.RequestTimeoutSec = timeout }

    httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

    yc, err := newYahooClient(cfg.Yahoo.Endpoint, httpClient)
    if err != nil { log.Fatalf("yahoo client: %v", err) }

    src := wireSource(cfg.Yahoo, yc)
    builder := snapshot.New(src)

    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
    defer cancel()

    report := builder.Build(ctx)
    fmt.Println(report.Text())

    if dryRun {
        log.Printf("run %s: dry run, not sending", report.ID)
        return
    }

    tg := telegram.New(telegram.Config{
        Token:     cfg.Telegram.Token,
        ChatID:    cfg.Telegram.ChatID,
        Endpoint:  cfg.Telegram.Endpoint,
        ParseMode: cfg.Telegram.ParseMode,
        Timeout:   time.Duration(cfg.Telegram.TimeoutSec) * time.Second,
    }, httpClient)

    // Delivery is best-effort: every failure mode is logged, none changes
    // the exit status.
    switch err := tg.Send(ctx, report.Text()); {
    case err == nil:
        log.Printf("run %s: message sent", report.ID)
    case errors.Is(err, telegram.ErrMissingCredentials):
        log.Printf("run %s: missing TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID; skipping send", report.ID)
    default:
        log.Printf("run %s: failed to send message: %v", report.ID, err)
    }
}

// newYahooClient builds the chart client against the shared httpx settings.
// The client talks to the raw *http.Client, so the User-Agent has to be set
// here; the chart endpoint blocks Go's default one.
func newYahooClient(endpoint string, hc *httpx.Client) (*yahoo.Client, error) {
    return yahoo.NewClient(
        yahoo.WithBaseURL(endpoint),
        yahoo.WithHTTPClient(hc.HTTP),
        yahoo.WithHeader(http.Header{"User-Agent": []string{hc.UserAgent}}),
    )
}

// wireSource applies the optional rate-limit and cache decorators the same
// way for every binary.
func wireSource(yc config.Yahoo, client *yahoo.Client) quote.Source {
    var src quote.Source = yahooadapter.New(yahooadapter.Config{
        Range:    yc.Range,
        Interval: yc.Interval,
    }, client)
    // Prefer token bucket with burst if RPM is set, otherwise use min-interval
    if yc.MaxRequestsPerMinute > 0 {
        rate := float64(yc.MaxRequestsPerMinute) / 60.0
        burst := yc.Burst
        if burst <= 0 { burst = 1 }
        src = &ratelimit.TokenBucketSource{S: src, TB: ratelimit.NewTokenBucket(rate, burst)}
    } else if yc.MinRequestIntervalSec > 0 {
        src = &ratelimit.MinInterval{S: src, Interval: time.Duration(yc.MinRequestIntervalSec) * time.Second}
    }
    if yc.CacheTTLSeconds > 0 {
        src = &cache.Source{S: src, TTL: time.Duration(yc.CacheTTLSeconds) * time.Second, MaxItems: yc.CacheMaxItems}
    }
    return src
}

func getenv(key, def string) string { if v := os.Getenv(key); v != "" { return v }; return def }
