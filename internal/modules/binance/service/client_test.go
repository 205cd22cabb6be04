package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"trade_assistant/internal/models"

	"golang.org/x/time/rate"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &Client{
		http:       srv.Client(),
		baseURL:    srv.URL,
		apiKey:     "key",
		apiSecret:  "secret",
		recvWindow: 5000,
		limiter:    rate.NewLimiter(rate.Inf, 1),
		now:        func() time.Time { return time.UnixMilli(1700000000000) },
	}
}

func TestKlinesParsesRows(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/klines" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("symbol") != "BTCUSDT" || q.Get("interval") != "1M" {
			t.Fatalf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`[
			[1700000060000,"101.5","102","101","101.8","12.5",1700000119999,"0",1,"0","0","0"],
			[1700000000000,"100","101","99.5","101.5","10",1700000059999,"0",1,"0","0","0"]
		]`))
	})

	got, err := c.Klines(context.Background(), "BTCUSDT", "1mon", time.Unix(0, 0), time.Unix(1, 0))
	if err != nil {
		t.Fatalf("Klines: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(got))
	}
	if !got[0].OpenTime.Before(got[1].OpenTime) {
		t.Fatalf("candles not ascending: %v, %v", got[0].OpenTime, got[1].OpenTime)
	}
	if got[1].Close != 101.8 || got[0].Volume != 10 {
		t.Fatalf("unexpected values: %+v", got)
	}
}

func TestPlaceMarketSignsRequestAndAveragesFills(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v3/order" {
			t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-MBX-APIKEY") != "key" {
			t.Fatalf("api key header missing")
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		form := r.PostForm
		sig := form.Get("signature")
		form.Del("signature")
		if want := (&Client{apiSecret: "secret"}).sign(form.Encode()); sig != want {
			t.Fatalf("signature mismatch: got %s want %s", sig, want)
		}
		if form.Get("type") != "MARKET" || form.Get("side") != "BUY" || form.Get("quantity") != "2.5" {
			t.Fatalf("unexpected form %v", form)
		}
		if form.Get("newClientOrderId") == "" {
			t.Fatalf("client order id missing")
		}
		_, _ = w.Write([]byte(`{"symbol":"ETHUSDT","orderId":42,"clientOrderId":"abc","status":"FILLED",
			"fills":[{"price":"10","qty":"1.5"},{"price":"20","qty":"1"}]}`))
	})

	res, err := c.PlaceMarket(context.Background(), models.SideBuy, "ETHUSDT", 2.5)
	if err != nil {
		t.Fatalf("PlaceMarket: %v", err)
	}
	if res.OrderID != 42 || res.Status != "FILLED" {
		t.Fatalf("unexpected result %+v", res)
	}
	if want := 35.0 / 2.5; res.AvgPrice != want {
		t.Fatalf("avg price %v, want %v", res.AvgPrice, want)
	}
}

func TestAPIErrorIsTyped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":-2010,"msg":"Account has insufficient balance for requested action."}`))
	})

	_, err := c.PlaceMarket(context.Background(), models.SideSell, "ETHUSDT", 1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T %v", err, err)
	}
	if apiErr.Code != -2010 || apiErr.Msg == "" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}

func TestSignedRequiresCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("request must not be sent")
	})
	c.apiKey = ""

	if _, err := c.Balances(context.Background()); err == nil {
		t.Fatal("expected error without credentials")
	}
}

func TestExchangeInfoMergesPermissionSets(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"symbols":[
			{"symbol":"BTCUSDT","status":"TRADING","quoteAsset":"USDT","permissions":[],"permissionSets":[["SPOT","MARGIN"]]},
			{"symbol":"OLDUSDT","status":"BREAK","quoteAsset":"USDT","permissions":["SPOT"]}
		]}`))
	})

	got, err := c.ExchangeInfo(context.Background())
	if err != nil {
		t.Fatalf("ExchangeInfo: %v", err)
	}
	if len(got) != 2 || !got[0].HasPermission("SPOT") || !got[1].HasPermission("SPOT") {
		t.Fatalf("unexpected symbols %+v", got)
	}
}

func TestBalancesSumsFreeAndLocked(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("signature") == "" {
			t.Fatalf("signed GET must carry signature in query")
		}
		_, _ = w.Write([]byte(`{"balances":[{"asset":"BTC","free":"0.5","locked":"0.25"},{"asset":"ETH","free":"0","locked":"0"}]}`))
	})

	got, err := c.Balances(context.Background())
	if err != nil {
		t.Fatalf("Balances: %v", err)
	}
	if len(got) != 2 || got[0].Total != 0.75 || got[0].Locked != 0.25 {
		t.Fatalf("unexpected balances %+v", got)
	}
}
