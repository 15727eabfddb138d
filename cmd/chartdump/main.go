// Binary chartdump fetches the raw chart payload for one ticker and writes
// it out pretty-printed. Useful when a symbol starts coming back N/A and the
// question is what the feed actually returned.
package main

import (
    "bytes"
    "context"
    "encoding/json"
    "flag"
    "fmt"
    "io"
    "log"
    "net/http"
    "net/url"
    "os"
    "time"

    "marketsnapshot/internal/config"
    "marketsnapshot/internal/httpx"
)

func main() {
    var (
        ticker     string
        chartRange string
        interval   string
        outPath    string
        cfgPath    string
        timeoutSec int
    )
    flag.StringVar(&ticker, "ticker", "^GSPC", "ticker to dump")
    flag.StringVar(&chartRange, "range", "1d", "chart range")
    flag.StringVar(&interval, "interval", "1m", "chart interval")
    flag.StringVar(&outPath, "out", "", "output file path (default stdout)")
    flag.StringVar(&cfgPath, "config", "", "path to config.json (optional)")
    flag.IntVar(&timeoutSec, "timeout", 15, "HTTP timeout seconds")
    flag.Parse()

    cfg, err := config.Load(cfgPath)
    if err != nil {
        log.Fatalf("config: %v", err)
    }

    client := httpx.New(time.Duration(timeoutSec) * time.Second)

    u := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s",
        cfg.Yahoo.Endpoint, url.PathEscape(ticker), url.QueryEscape(chartRange), url.QueryEscape(interval))
    ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSec)*time.Second)
    defer cancel()

    req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
    if err != nil {
        log.Fatalf("request: %v", err)
    }
    resp, err := client.Do(ctx, req)
    if err != nil {
        log.Fatalf("fetch: %v", err)
    }
    defer resp.Body.Close()
    body, err := io.ReadAll(resp.Body)
    if err != nil {
        log.Fatalf("read body: %v", err)
    }
    if resp.StatusCode != http.StatusOK {
        log.Fatalf("http %d: %s", resp.StatusCode, string(body))
    }

    var pretty bytes.Buffer
    if err := json.Indent(&pretty, body, "", "  "); err != nil {
        // not JSON after all; dump as-is
        pretty.Write(body)
    }
    pretty.WriteByte('\n')

    if outPath == "" {
        os.Stdout.Write(pretty.Bytes())
        return
    }
    if err := os.WriteFile(outPath, pretty.Bytes(), 0o644); err != nil {
        log.Fatalf("write %s: %v", outPath, err)
    }
    log.Printf("wrote %s (%d bytes)", outPath, pretty.Len())
}
