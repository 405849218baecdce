package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"spot_bot/internal/exchange"
	"spot_bot/internal/models"
)

const (
	DefaultBaseURL = "https://api.binance.com"
	DefaultWSURL   = "wss://stream.binance.com:9443/ws"
)

type Config struct {
	BaseURL    string
	WSURL      string
	Timeout    time.Duration
	RecvWindow time.Duration
}

// Client is the Binance spot REST gateway.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
	now  func() time.Time
}

var _ exchange.Gateway = (*Client)(nil)

func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.WSURL == "" {
		cfg.WSURL = DefaultWSURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RecvWindow <= 0 {
		cfg.RecvWindow = 5 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log.Named("binance"),
		now:  time.Now,
	}
}

func sign(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// public sends an unsigned request and decodes the JSON body into out.
func (c *Client) public(ctx context.Context, method, path string, params url.Values, out any) error {
	return c.do(ctx, method, path, params, "", out)
}

// signed adds timestamp, recvWindow and the HMAC signature of the query string.
func (c *Client) signed(ctx context.Context, method, path string, params url.Values, creds models.Credentials, out any) error {
	if creds.APIKey == "" || creds.APISecret == "" {
		return errors.Wrap(exchange.ErrOrderRejected, "api credentials are empty")
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
	params.Set("recvWindow", strconv.FormatInt(c.cfg.RecvWindow.Milliseconds(), 10))
	query := params.Encode()
	params.Set("signature", sign(creds.APISecret, query))
	return c.do(ctx, method, path, params, creds.APIKey, out)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, apiKey string, out any) error {
	u := strings.TrimRight(c.cfg.BaseURL, "/") + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return errors.Wrapf(err, "build %s %s", method, path)
	}
	if apiKey != "" {
		req.Header.Set("X-MBX-APIKEY", apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return exchange.Unavailable(err, method+" "+path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return exchange.Unavailable(err, "read "+path)
	}

	if resp.StatusCode/100 != 2 {
		apiErr := &exchange.APIError{Status: resp.StatusCode}
		if jerr := sonic.Unmarshal(body, apiErr); jerr != nil || apiErr.Msg == "" {
			apiErr.Msg = strings.TrimSpace(string(body))
		}
		c.log.Warn("request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.Int("code", apiErr.Code),
			zap.String("msg", apiErr.Msg),
		)
		return errors.Wrapf(apiErr, "%s %s", method, path)
	}

	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return nil
}

func parseFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		f, _ := strconv.ParseFloat(x, 64)
		return f
	case int64:
		return float64(x)
	case int:
		return float64(x)
	default:
		return 0
	}
}

func parseInt(v any) int64 {
	switch x := v.(type) {
	case float64:
		return int64(x)
	case int64:
		return x
	case int:
		return int64(x)
	case string:
		n, _ := strconv.ParseInt(x, 10, 64)
		return n
	default:
		return 0
	}
}
