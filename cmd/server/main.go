package main

import (
    "context"
    "encoding/json"
    "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/joho/godotenv"
    "marketsnapshot/internal/config"
    "marketsnapshot/internal/httpx"
    "marketsnapshot/internal/quote"
    "marketsnapshot/internal/quote/cache"
    "marketsnapshot/internal/quote/ratelimit"
    "marketsnapshot/internal/quote/yahoo"
    "marketsnapshot/internal/snapshot"
    "marketsnapshot/internal/quote/yahooadapter"
)

// snapshotResponse is the read-only preview of what a run would send.
type snapshotResponse struct {
    ID      string           `json:"id"`
    BuiltAt time.Time        `json:"built_at"`
    Entries []snapshot.Entry `json:"entries"`
    Flags   []string         `json:"flags"`
    Text    string           `json:"text"`
}

func main() {
    _ = godotenv.Load()

    cfgPath := os.Getenv("CONFIG_FILE")
    cfg, err := config.Load(cfgPath)
    if err != nil { log.Fatalf("config: %v", err) }
    port := cfg.Server.Port

    httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

    yc, err := newYahooClient(cfg.Yahoo.Endpoint, httpClient)
    if err != nil { log.Fatalf("yahoo client: %v", err) }
    builder := snapshot.New(wireSource(cfg.Yahoo, yc))

    srv := &http.Server{
        Addr:              ":" + port,
        Handler:           recoverPanic(newMux(builder)),
        ReadHeaderTimeout: 5 * time.Second,
        ReadTimeout:       15 * time.Second,
        WriteTimeout:      60 * time.Second,
        IdleTimeout:       60 * time.Second,
    }

    go func() {
        log.Printf("server listening on :%s", port)
        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatalf("server: %v", err)
        }
    }()

    // graceful shutdown
    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()
    <-ctx.Done()
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    _ = srv.Shutdown(shutdownCtx)
}

// newMux registers the routes; each handler declares its own content type.
func newMux(builder *snapshot.Builder) *http.ServeMux {
    mux := http.NewServeMux()
    mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Content-Type", "text/plain; charset=utf-8")
        w.WriteHeader(http.StatusOK)
        _, _ = w.Write([]byte("ok"))
    })
    mux.HandleFunc("/api/snapshot", func(w http.ResponseWriter, r *http.Request) {
        if r.Method != http.MethodGet {
            http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
            return
        }
        handleSnapshot(w, r, builder)
    })
    return mux
}

func newYahooClient(endpoint string, hc *httpx.Client) (*yahoo.Client, error) {
    return yahoo.NewClient(
        yahoo.WithBaseURL(endpoint),
        yahoo.WithHTTPClient(hc.HTTP),
        yahoo.WithHeader(http.Header{"User-Agent": []string{hc.UserAgent}}),
    )
}

func handleSnapshot(w http.ResponseWriter, r *http.Request, builder *snapshot.Builder) {
    ctx, cancel := context.WithTimeout(r.Context(), 45*time.Second)
    defer cancel()
    report := builder.Build(ctx)
    resp := snapshotResponse{
        ID:      report.ID,
        BuiltAt: report.BuiltAt,
        Entries: report.Entries,
        Flags:   report.Flags,
        Text:    report.Text(),
    }
    w.Header().Set("Content-Type", "application/json; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    enc := json.NewEncoder(w)
    enc.SetEscapeHTML(false)
    enc.Encode(resp)
}

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

// recoverPanic protects handlers from panics.
func recoverPanic(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        defer func() {
            if rec := recover(); rec != nil {
                http.Error(w, "internal server error", http.StatusInternalServerError)
            }
        }()
        next.ServeHTTP(w, r)
    })
}
