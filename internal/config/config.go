package config

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
)

type Server struct {
    Port              string `json:"port"`
    RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type Yahoo struct {
    Endpoint              string `json:"endpoint"`
    Range                 string `json:"range"`
    Interval              string `json:"interval"`
    MaxRequestsPerMinute  int    `json:"max_requests_per_minute"`
    MinRequestIntervalSec int    `json:"min_request_interval_sec"`
    Burst                 int    `json:"burst"`
    CacheTTLSeconds       int    `json:"cache_ttl_sec"`
    CacheMaxItems         int    `json:"cache_max_items"`
}

type Telegram struct {
    // Token and ChatID are secrets; they are normally supplied via
    // TELEGRAM_BOT_TOKEN / TELEGRAM_CHAT_ID rather than the config file.
    Token      string `json:"token"`
    ChatID     string `json:"chat_id"`
    Endpoint   string `json:"endpoint"`
    ParseMode  string `json:"parse_mode"`
    TimeoutSec int    `json:"timeout_sec"`
}

type Config struct {
    Server   Server   `json:"server"`
    Yahoo    Yahoo    `json:"yahoo"`
    Telegram Telegram `json:"telegram"`
}

func Default() Config {
    return Config{
        Server: Server{Port: "8080", RequestTimeoutSec: 15},
        Yahoo: Yahoo{
            Endpoint:        "https://query1.finance.yahoo.com",
            Range:           "1d",
            Interval:        "1m",
            CacheTTLSeconds: 60,
            CacheMaxItems:   64,
        },
        Telegram: Telegram{
            Endpoint:   "https://api.telegram.org",
            ParseMode:  "HTML",
            TimeoutSec: 15,
        },
    }
}

// Load reads JSON config from path. If path is empty or file does not exist,
// it returns defaults. Environment variables override select fields for secrecy.
func Load(path string) (Config, error) {
    cfg := Default()
    if path == "" {
        if _, err := os.Stat("config.json"); err == nil {
            path = "config.json"
        }
    }
    if path != "" {
        b, err := os.ReadFile(path)
        if err != nil && !errors.Is(err, os.ErrNotExist) {
            return cfg, fmt.Errorf("read config: %w", err)
        }
        if err == nil {
            if err := json.Unmarshal(b, &cfg); err != nil {
                return cfg, fmt.Errorf("parse config: %w", err)
            }
        }
    }
    applyEnv(&cfg)
    return cfg, nil
}

func applyEnv(cfg *Config) {
    if v := os.Getenv("PORT"); v != "" { cfg.Server.Port = v }
    if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Server.RequestTimeoutSec = x }
    }
    if v := os.Getenv("YAHOO_ENDPOINT"); v != "" { cfg.Yahoo.Endpoint = v }
    if v := os.Getenv("YAHOO_RANGE"); v != "" { cfg.Yahoo.Range = v }
    if v := os.Getenv("YAHOO_INTERVAL"); v != "" { cfg.Yahoo.Interval = v }
    if v := os.Getenv("YAHOO_MAX_RPM"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Yahoo.MaxRequestsPerMinute = x }
    }
    if v := os.Getenv("YAHOO_MIN_INTERVAL_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Yahoo.MinRequestIntervalSec = x }
    }
    if v := os.Getenv("YAHOO_BURST"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Yahoo.Burst = x }
    }
    if v := os.Getenv("YAHOO_CACHE_TTL_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Yahoo.CacheTTLSeconds = x }
    }
    if v := os.Getenv("YAHOO_CACHE_MAX_ITEMS"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Yahoo.CacheMaxItems = x }
    }
    if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" { cfg.Telegram.Token = v }
    if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" { cfg.Telegram.ChatID = v }
    if v := os.Getenv("TELEGRAM_ENDPOINT"); v != "" { cfg.Telegram.Endpoint = v }
    if v := os.Getenv("TELEGRAM_PARSE_MODE"); v != "" { cfg.Telegram.ParseMode = v }
    if v := os.Getenv("TELEGRAM_TIMEOUT_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Telegram.TimeoutSec = x }
    }
}
