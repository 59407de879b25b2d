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
package alphavantage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, status int, body string) *Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client := New("test-key", 5*time.Second)
	client.baseURL = srv.URL

	return client
}

func TestFetchLatestInvalidSymbol(t *testing.T) {
	client := newTestClient(t, http.StatusOK,
		`{"Error Message": "Invalid API call. Please retry or visit the documentation."}`)

	_, err := client.FetchLatest(context.Background(), "NOPE")
	if !errors.Is(err, ErrInvalidSymbol) {
		t.Fatalf("err=%v want ErrInvalidSymbol", err)
	}
}

func TestFetchLatestRateLimited(t *testing.T) {
	for _, body := range []string{
		`{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`,
		`{"Information": "You have reached the 25 requests/day limit."}`,
	} {
		client := newTestClient(t, http.StatusOK, body)

		_, err := client.FetchLatest(context.Background(), "NVDA")
		if !errors.Is(err, ErrRateLimited) {
			t.Fatalf("err=%v want ErrRateLimited for body %s", err, body)
		}
	}
}

func TestFetchLatestNoData(t *testing.T) {
	client := newTestClient(t, http.StatusOK, `{"Meta Data": {"2. Symbol": "NVDA"}}`)

	_, err := client.FetchLatest(context.Background(), "NVDA")
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("err=%v want ErrNoData", err)
	}
}

func TestFetchLatestBadStatus(t *testing.T) {
	client := newTestClient(t, http.StatusServiceUnavailable, `{}`)

	_, err := client.FetchLatest(context.Background(), "NVDA")
	if !errors.Is(err, ErrBadStatus) {
		t.Fatalf("err=%v want ErrBadStatus", err)
	}
}

func TestFetchLatestPicksNewestEntry(t *testing.T) {
	client := newTestClient(t, http.StatusOK, `{
		"Meta Data": {"2. Symbol": "NVDA"},
		"Time Series (Daily)": {
			"2026-08-27": {
				"1. open": "181.50",
				"2. high": "184.20",
				"3. low": "180.10",
				"4. close": "183.75",
				"5. volume": "31250000"
			},
			"2026-08-26": {
				"1. open": "179.00",
				"2. high": "182.00",
				"3. low": "178.40",
				"4. close": "181.20",
				"5. volume": "28900000"
			}
		}
	}`)

	bar, err := client.FetchLatest(context.Background(), "NVDA")
	if err != nil {
		t.Fatalf("FetchLatest returned error: %v", err)
	}

	want := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	if !bar.Date.Equal(want) {
		t.Fatalf("date=%s want=%s", bar.Date, want)
	}

	if bar.Ticker != "NVDA" {
		t.Fatalf("ticker=%s want=NVDA", bar.Ticker)
	}

	if bar.Open != 181.50 || bar.High != 184.20 || bar.Low != 180.10 || bar.Close != 183.75 {
		t.Fatalf("unexpected OHLC: %+v", bar)
	}

	if bar.Volume != 31250000 {
		t.Fatalf("volume=%d want=31250000", bar.Volume)
	}
}

func TestFetchLatestMalformedPrice(t *testing.T) {
	client := newTestClient(t, http.StatusOK, `{
		"Time Series (Daily)": {
			"2026-08-27": {
				"1. open": "not-a-number",
				"2. high": "184.20",
				"3. low": "180.10",
				"4. close": "183.75",
				"5. volume": "31250000"
			}
		}
	}`)

	_, err := client.FetchLatest(context.Background(), "NVDA")
	if err == nil {
		t.Fatal("expected error for malformed price field")
	}
}
