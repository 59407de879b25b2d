// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package alphavantage wraps the Alpha Vantage TIME_SERIES_DAILY endpoint.
// The API reports semantic failures inside an HTTP 200 body, so the client
// translates the payload into distinct error classes the orchestrator can
// base retry decisions on.
package alphavantage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/Vaheem/stock-market-analysis/store"
)

var (
	// ErrInvalidSymbol means the API did not recognize the ticker. Permanent;
	// never retried.
	ErrInvalidSymbol = errors.New("symbol not recognized by quote source")

	// ErrRateLimited means the API refused the call with a rate-limit notice.
	ErrRateLimited = errors.New("quote source rate limit reached")

	// ErrNoData means the response carried no time series. Markets may simply
	// be closed; treated as a skip rather than a failure.
	ErrNoData = errors.New("no time series data in response")

	// ErrBadStatus is returned for non-2xx HTTP responses.
	ErrBadStatus = errors.New("invalid status code received")
)

const defaultBaseURL = "https://www.alphavantage.co/query"

// Client fetches daily quotes from Alpha Vantage.
type Client struct {
	client  *resty.Client
	apiKey  string
	baseURL string
}

// New creates a quote client. Every request is bounded by the given timeout.
func New(apiKey string, timeout time.Duration) *Client {
	client := resty.New().SetTimeout(timeout)

	return &Client{
		client:  client,
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
	}
}

// timeSeriesResponse mirrors the Alpha Vantage payload. Semantic errors
// arrive as top-level message fields; quote data is keyed by date strings.
type timeSeriesResponse struct {
	ErrorMessage string                 `json:"Error Message"`
	Note         string                 `json:"Note"`
	Information  string                 `json:"Information"`
	TimeSeries   map[string]rawDailyBar `json:"Time Series (Daily)"`
}

type rawDailyBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// FetchLatest retrieves the most recent trading day's bar for a ticker. The
// response may contain a long history; only the latest dated entry is used.
func (av *Client) FetchLatest(ctx context.Context, ticker string) (*store.PriceBar, error) {
	resp, err := av.client.R().
		SetContext(ctx).
		SetQueryParam("function", "TIME_SERIES_DAILY").
		SetQueryParam("symbol", ticker).
		SetQueryParam("apikey", av.apiKey).
		Get(av.baseURL)
	if err != nil {
		return nil, fmt.Errorf("quote request failed: %w", err)
	}

	if resp.StatusCode() >= 300 {
		log.Error().Int("StatusCode", resp.StatusCode()).Str("Ticker", ticker).
			Msg("quote source returned an invalid HTTP response")
		return nil, fmt.Errorf("%w (%d)", ErrBadStatus, resp.StatusCode())
	}

	var payload timeSeriesResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("could not decode quote response: %w", err)
	}

	switch {
	case payload.ErrorMessage != "":
		return nil, fmt.Errorf("%w: %s", ErrInvalidSymbol, ticker)
	case payload.Note != "":
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, payload.Note)
	case payload.Information != "":
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, payload.Information)
	case len(payload.TimeSeries) == 0:
		return nil, fmt.Errorf("%w: %s", ErrNoData, ticker)
	}

	dateStr, raw := latestEntry(payload.TimeSeries)

	return parseBar(ticker, dateStr, raw)
}

// latestEntry picks the most recent date key from the time series.
func latestEntry(series map[string]rawDailyBar) (string, rawDailyBar) {
	var latest string
	for date := range series {
		if date > latest {
			latest = date
		}
	}

	return latest, series[latest]
}

func parseBar(ticker string, dateStr string, raw rawDailyBar) (*store.PriceBar, error) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("could not parse quote date %q: %w", dateStr, err)
	}

	bar := &store.PriceBar{
		Ticker: ticker,
		Date:   date,
	}

	if bar.Open, err = strconv.ParseFloat(raw.Open, 64); err != nil {
		return nil, fmt.Errorf("could not parse open price %q: %w", raw.Open, err)
	}

	if bar.High, err = strconv.ParseFloat(raw.High, 64); err != nil {
		return nil, fmt.Errorf("could not parse high price %q: %w", raw.High, err)
	}

	if bar.Low, err = strconv.ParseFloat(raw.Low, 64); err != nil {
		return nil, fmt.Errorf("could not parse low price %q: %w", raw.Low, err)
	}

	if bar.Close, err = strconv.ParseFloat(raw.Close, 64); err != nil {
		return nil, fmt.Errorf("could not parse close price %q: %w", raw.Close, err)
	}

	if bar.Volume, err = strconv.ParseInt(raw.Volume, 10, 64); err != nil {
		return nil, fmt.Errorf("could not parse volume %q: %w", raw.Volume, err)
	}

	return bar, nil
}
