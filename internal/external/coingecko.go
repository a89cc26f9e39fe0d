package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cryptoalert/internal/httputil"
	"cryptoalert/internal/models"
)

// ErrCoinNotFound means the provider does not recognize the coin id.
// Distinct from transport failures so callers can answer 404 instead of 502.
var ErrCoinNotFound = errors.New("coin not found")

type CoinGeckoClient struct {
	baseURL    string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

type Options struct {
	BaseURL string
	Timeout time.Duration
	Retries int
}

func NewCoinGeckoClient(opts Options) *CoinGeckoClient {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Retries <= 0 {
		opts.Retries = 3
	}
	return &CoinGeckoClient{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: &http.Client{Timeout: opts.Timeout},
		retry: httputil.RetryConfig{
			MaxAttempts: opts.Retries,
			BaseDelay:   2 * time.Second,
			MaxDelay:    10 * time.Second,
		},
	}
}

// GetPrices fetches current USD prices and 24h change for a set of coin ids
// in a single request. Ids the provider does not recognize are simply absent
// from the result.
func (c *CoinGeckoClient) GetPrices(ctx context.Context, coinIDs []string) (map[string]models.Quote, error) {
	if len(coinIDs) == 0 {
		return map[string]models.Quote{}, nil
	}

	q := url.Values{}
	q.Set("ids", strings.Join(coinIDs, ","))
	q.Set("vs_currencies", "usd")
	q.Set("include_24hr_change", "true")
	reqURL := c.baseURL + "/simple/price?" + q.Encode()

	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("coingecko fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko returned status %d", resp.StatusCode)
	}

	var data map[string]struct {
		USD       *float64 `json:"usd"`
		Change24h *float64 `json:"usd_24h_change"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	quotes := make(map[string]models.Quote, len(data))
	for id, entry := range data {
		if entry.USD == nil {
			continue
		}
		quotes[id] = models.Quote{Price: *entry.USD, Change24h: entry.Change24h}
	}
	return quotes, nil
}

// GetPrice is the single-coin variant. Returns ErrCoinNotFound when the
// provider has no quote for the id.
func (c *CoinGeckoClient) GetPrice(ctx context.Context, coinID string) (*models.Quote, error) {
	quotes, err := c.GetPrices(ctx, []string{coinID})
	if err != nil {
		return nil, err
	}
	quote, ok := quotes[coinID]
	if !ok {
		return nil, ErrCoinNotFound
	}
	return &quote, nil
}

// GetCoins lists the coins the provider supports.
func (c *CoinGeckoClient) GetCoins(ctx context.Context) ([]models.Coin, error) {
	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/coins/list", nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("coingecko coins list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko returned status %d", resp.StatusCode)
	}

	var raw []struct {
		ID     string `json:"id"`
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	coins := make([]models.Coin, len(raw))
	for i, r := range raw {
		coins[i] = models.Coin{ID: r.ID, Symbol: strings.ToUpper(r.Symbol), Name: r.Name}
	}
	return coins, nil
}

// Ping checks provider reachability for the health endpoint. No retries;
// health checks should answer fast.
func (c *CoinGeckoClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ping", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("coingecko ping: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("coingecko ping returned status %d", resp.StatusCode)
	}
	return nil
}
