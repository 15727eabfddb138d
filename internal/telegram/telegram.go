package telegram

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "strings"
    "time"

    "marketsnapshot/internal/httpx"
)

// ErrMissingCredentials is returned when the bot token or chat id is unset.
// The caller is expected to keep going; delivery is best-effort.
var ErrMissingCredentials = errors.New("telegram: missing bot token or chat id")

type Config struct {
    Token     string
    ChatID    string
    Endpoint  string        // default: https://api.telegram.org
    ParseMode string        // default: HTML
    Timeout   time.Duration // per-send bound, default: 15s
}

// Client delivers a text message to a single chat via the Bot API.
// One POST per send, no retry.
type Client struct {
    cfg    Config
    client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Client {
    if cfg.Endpoint == "" { cfg.Endpoint = "https://api.telegram.org" }
    if cfg.ParseMode == "" { cfg.ParseMode = "HTML" }
    if cfg.Timeout <= 0 { cfg.Timeout = 15 * time.Second }
    return &Client{cfg: cfg, client: hc}
}

// Configured reports whether both credentials are present.
func (c *Client) Configured() bool {
    return c.cfg.Token != "" && c.cfg.ChatID != ""
}

// Send posts text to the configured chat. Missing credentials fail
// immediately without any network call.
func (c *Client) Send(ctx context.Context, text string) error {
    if !c.Configured() {
        return ErrMissingCredentials
    }

    ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
    defer cancel()

    form := url.Values{}
    form.Set("chat_id", c.cfg.ChatID)
    form.Set("text", text)
    form.Set("parse_mode", c.cfg.ParseMode)

    u := fmt.Sprintf("%s/bot%s/sendMessage", c.cfg.Endpoint, c.cfg.Token)
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
    if err != nil { return err }
    req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

    resp, err := c.client.Do(ctx, req)
    if err != nil {
        return fmt.Errorf("telegram send: %w", err)
    }
    defer resp.Body.Close()

    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        // The Bot API explains failures in the body; surface the description
        // but never the request URL, which embeds the token.
        var apiErr struct {
            OK          bool   `json:"ok"`
            ErrorCode   int    `json:"error_code"`
            Description string `json:"description"`
        }
        b, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<10))
        if json.Unmarshal(b, &apiErr) == nil && apiErr.Description != "" {
            return fmt.Errorf("telegram send: status %d: %s", resp.StatusCode, apiErr.Description)
        }
        return fmt.Errorf("telegram send: status %d", resp.StatusCode)
    }
    return nil
}
