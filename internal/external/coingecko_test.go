package external_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cryptoalert/internal/external"
)

func newTestClient(srv *httptest.Server) *external.CoinGeckoClient {
	return external.NewCoinGeckoClient(external.Options{
		BaseURL: srv.URL,
		Timeout: 2 * time.Second,
		Retries: 1,
	})
}

func TestGetPrices_Batch(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/simple/price" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"bitcoin":  {"usd": 50000.5, "usd_24h_change": -1.25},
			"ethereum": {"usd": 2500}
		}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	quotes, err := client.GetPrices(context.Background(), []string{"bitcoin", "ethereum", "nosuchcoin"})
	if err != nil {
		t.Fatalf("GetPrices: %v", err)
	}

	if gotQuery["ids"][0] != "bitcoin,ethereum,nosuchcoin" {
		t.Fatalf("ids param: got %q", gotQuery["ids"][0])
	}
	if gotQuery["vs_currencies"][0] != "usd" {
		t.Fatalf("vs_currencies param: got %q", gotQuery["vs_currencies"][0])
	}
	if gotQuery["include_24hr_change"][0] != "true" {
		t.Fatalf("include_24hr_change param: got %q", gotQuery["include_24hr_change"][0])
	}

	btc, ok := quotes["bitcoin"]
	if !ok || btc.Price != 50000.5 {
		t.Fatalf("bitcoin quote: %+v (ok=%v)", btc, ok)
	}
	if btc.Change24h == nil || *btc.Change24h != -1.25 {
		t.Fatalf("bitcoin change24h: %v", btc.Change24h)
	}

	eth, ok := quotes["ethereum"]
	if !ok || eth.Price != 2500 {
		t.Fatalf("ethereum quote: %+v (ok=%v)", eth, ok)
	}
	if eth.Change24h != nil {
		t.Fatalf("ethereum change24h should be absent, got %v", eth.Change24h)
	}

	// Unknown ids are absent, not zero-filled.
	if _, ok := quotes["nosuchcoin"]; ok {
		t.Fatal("unknown coin should be absent from the result")
	}
}

func TestGetPrices_EmptyInputSkipsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty id set")
	}))
	defer srv.Close()

	quotes, err := newTestClient(srv).GetPrices(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetPrices: %v", err)
	}
	if len(quotes) != 0 {
		t.Fatalf("expected empty result, got %v", quotes)
	}
}

func TestGetPrice_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GetPrice(context.Background(), "nosuchcoin")
	if !errors.Is(err, external.ErrCoinNotFound) {
		t.Fatalf("expected ErrCoinNotFound, got %v", err)
	}
}

func TestGetPrice_Found(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bitcoin": {"usd": 42000, "usd_24h_change": 3.5}}`))
	}))
	defer srv.Close()

	quote, err := newTestClient(srv).GetPrice(context.Background(), "bitcoin")
	if err != nil {
		t.Fatalf("GetPrice: %v", err)
	}
	if quote.Price != 42000 {
		t.Fatalf("price: got %.2f", quote.Price)
	}
}

func TestGetPrices_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GetPrices(context.Background(), []string{"bitcoin"})
	if err == nil {
		t.Fatal("expected error from 502 response")
	}
	if errors.Is(err, external.ErrCoinNotFound) {
		t.Fatal("transport failure must be distinguishable from not-found")
	}
}

func TestGetCoins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/list" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": "bitcoin", "symbol": "btc", "name": "Bitcoin"},
			{"id": "ethereum", "symbol": "eth", "name": "Ethereum"}
		]`))
	}))
	defer srv.Close()

	coins, err := newTestClient(srv).GetCoins(context.Background())
	if err != nil {
		t.Fatalf("GetCoins: %v", err)
	}
	if len(coins) != 2 {
		t.Fatalf("expected 2 coins, got %d", len(coins))
	}
	if coins[0].Symbol != "BTC" {
		t.Fatalf("symbol should be upper-cased, got %q", coins[0].Symbol)
	}
	if coins[1].ID != "ethereum" || coins[1].Name != "Ethereum" {
		t.Fatalf("coin mapping wrong: %+v", coins[1])
	}
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ping" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"gecko_says": "(V3) To the Moon!"}`))
	}))
	defer srv.Close()

	if err := newTestClient(srv).Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestPing_Unreachable(t *testing.T) {
	client := external.NewCoinGeckoClient(external.Options{
		BaseURL: "http://localhost:1",
		Timeout: 500 * time.Millisecond,
		Retries: 1,
	})
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected error for unreachable provider")
	}
}
