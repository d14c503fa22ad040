// Package market fetches crypto market data and turns it into a market
// condition signal.
//
// Prices come from the CoinGecko simple price API. Responses are cached on
// disk for the day, and any failure falls back to a fixed snapshot so that a
// signal can always be produced.
package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/retirement"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is the CoinGecko API root.
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// Data is a market snapshot.
type Data struct {
	Time       time.Time
	BTC        retirement.Money
	ETH        retirement.Money
	MarketCap  float64 // USD, BTC and ETH combined
	Volume24h  float64 // USD, BTC and ETH combined
	Volatility float64 // absolute 24h BTC change, in percent
	Fallback   bool    // true when the snapshot is not live data
}

// Fallback returns the fixed snapshot used when live data is unavailable.
func Fallback(now time.Time) Data {
	return Data{
		Time:       now,
		BTC:        retirement.Dollars(52500),
		ETH:        retirement.Dollars(3200),
		MarketCap:  1.5e12,
		Volume24h:  3.5e10,
		Volatility: 2.5,
		Fallback:   true,
	}
}

// Client fetches market data.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	log     zerolog.Logger
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the http client, a daily disk cached client by default.
func WithHTTPClient(c *http.Client) Option { return func(m *Client) { m.http = c } }

// WithBaseURL sets the API root.
func WithBaseURL(u string) Option { return func(m *Client) { m.baseURL = u } }

// WithAPIKey sets the API key sent with every request.
func WithAPIKey(key string) Option { return func(m *Client) { m.apiKey = key } }

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option { return func(m *Client) { m.log = l } }

// NewClient returns a market data client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		log:     zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = Daily("", c.log)
	}
	return c
}

// Fetch retrieves the current BTC and ETH market data.
func (c *Client) Fetch(ctx context.Context) (Data, error) {
	q := url.Values{}
	q.Set("ids", "bitcoin,ethereum")
	q.Set("vs_currencies", "usd")
	q.Set("include_market_cap", "true")
	q.Set("include_24hr_vol", "true")
	q.Set("include_24hr_change", "true")
	addr := c.baseURL + "/simple/price?" + q.Encode()

	var jobj any
	if err := c.jwget(ctx, addr, &jobj); err != nil {
		return Data{}, fmt.Errorf("cannot fetch market data: %w", err)
	}

	var v struct {
		btc, eth, btcCap, ethCap, btcVol, ethVol, btcChange float64
	}
	fields := []struct {
		path string
		dst  *float64
	}{
		{"$.bitcoin.usd", &v.btc},
		{"$.ethereum.usd", &v.eth},
		{"$.bitcoin.usd_market_cap", &v.btcCap},
		{"$.ethereum.usd_market_cap", &v.ethCap},
		{"$.bitcoin.usd_24h_vol", &v.btcVol},
		{"$.ethereum.usd_24h_vol", &v.ethVol},
		{"$.bitcoin.usd_24h_change", &v.btcChange},
	}
	for _, f := range fields {
		val, err := number(f.path, jobj)
		if err != nil {
			return Data{}, err
		}
		*f.dst = val
	}

	return Data{
		Time:       c.now(),
		BTC:        retirement.Dollars(v.btc),
		ETH:        retirement.Dollars(v.eth),
		MarketCap:  v.btcCap + v.ethCap,
		Volume24h:  v.btcVol + v.ethVol,
		Volatility: math.Abs(v.btcChange),
	}, nil
}

// FetchOrFallback retrieves the current market data, or the fallback snapshot
// when it cannot.
func (c *Client) FetchOrFallback(ctx context.Context) Data {
	d, err := c.Fetch(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("using fallback market data")
		return Fallback(c.now())
	}
	return d
}

// number extracts a number at path from a decoded json object.
func number(path string, jobj any) (float64, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return 0, fmt.Errorf("error parsing %q: %w", path, err)
	}
	// jsonpath may return a list of one answer
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return 0, fmt.Errorf("error parsing %q: not a number: %v", path, jval)
	}
	return val, nil
}

// jwget performs an HTTP GET request and unmarshals the JSON response into data.
func (c *Client) jwget(ctx context.Context, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	return json.Unmarshal(buf.Bytes(), data)
}
