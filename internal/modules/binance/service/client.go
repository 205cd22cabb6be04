package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"trade_assistant/internal/modules/config"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// Client — REST-клиент Binance Spot. Один на процесс, ключи из конфига.
type Client struct {
	http       *http.Client
	baseURL    string
	apiKey     string
	apiSecret  string
	recvWindow int64
	limiter    *rate.Limiter

	now func() time.Time
}

func NewClient(cfg *config.Config) *Client {
	rps := cfg.Binance.RPS
	if rps <= 0 {
		rps = 10
	}
	timeout := cfg.Binance.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	recv := cfg.Binance.RecvWindow
	if recv == 0 {
		recv = 5000
	}
	return &Client{
		http:       &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.Binance.BaseURL, "/"),
		apiKey:     cfg.Binance.APIKey,
		apiSecret:  cfg.Binance.APISecret,
		recvWindow: recv,
		limiter:    rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		now:        time.Now,
	}
}

// APIError — ошибка, которую вернула сама биржа ({"code":-2010,"msg":"..."}).
type APIError struct {
	Status int
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance: code=%d msg=%s", e.Code, e.Msg)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, false, out)
}

func (c *Client) signed(ctx context.Context, method, path string, params url.Values, out any) error {
	if c.apiKey == "" || c.apiSecret == "" {
		return errors.New("binance: API key/secret required")
	}
	return c.do(ctx, method, path, params, true, out)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, sign bool, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "binance rate limiter")
	}
	if params == nil {
		params = url.Values{}
	}
	if sign {
		params.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
		params.Set("recvWindow", strconv.FormatInt(c.recvWindow, 10))
		params.Set("signature", c.sign(params.Encode()))
	}

	encoded := params.Encode()
	endpoint := c.baseURL + path

	var (
		req *http.Request
		err error
	)
	if method == http.MethodPost {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(encoded))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		if encoded != "" {
			endpoint += "?" + encoded
		}
		req, err = http.NewRequestWithContext(ctx, method, endpoint, nil)
	}
	if err != nil {
		return errors.Wrapf(err, "build request %s %s", method, path)
	}
	if sign {
		req.Header.Set("X-MBX-APIKEY", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "do request %s %s", method, path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "read body %s %s", method, path)
	}

	if resp.StatusCode/100 != 2 {
		apiErr := &APIError{Status: resp.StatusCode}
		if jerr := sonic.Unmarshal(body, apiErr); jerr != nil || apiErr.Msg == "" {
			apiErr.Code = resp.StatusCode
			apiErr.Msg = strings.TrimSpace(string(body))
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) sign(query string) string {
	h := hmac.New(sha256.New, []byte(c.apiSecret))
	h.Write([]byte(query))
	return hex.EncodeToString(h.Sum(nil))
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
