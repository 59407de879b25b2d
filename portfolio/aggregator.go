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

// Package portfolio values an equal-weight portfolio over the tracked
// tickers from their latest cumulative returns.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Vaheem/stock-market-analysis/store"
)

// AllocationPerTicker is the fixed dollar amount hypothetically invested in
// each tracked stock on its first stored trading day.
const AllocationPerTicker = 100.0

var (
	// ErrNoPrices means stock_prices is empty so no snapshot date exists.
	ErrNoPrices = errors.New("no stock prices stored")

	// ErrNoReturns means no return records exist for the latest price date.
	ErrNoReturns = errors.New("no return records for latest date")
)

// Store is the slice of the price store the aggregator needs.
type Store interface {
	LatestDate(ctx context.Context) (time.Time, error)
	ReturnsOn(ctx context.Context, date time.Time) ([]*store.ReturnRecord, error)
	SaveSnapshot(ctx context.Context, snap *store.PortfolioSnapshot) error
}

// Aggregator computes portfolio valuations. Tickers are visited in
// configured order so best/worst performer ties resolve deterministically to
// the first-listed ticker.
type Aggregator struct {
	store   Store
	tickers []string
}

func New(s Store, tickers []string) *Aggregator {
	return &Aggregator{store: s, tickers: tickers}
}

// RecomputeLatest values the portfolio as of the most recent trading date in
// stock_prices and upserts one snapshot row for that date. Every ticker with
// a return record for the date participates, including records left behind
// by a watch-list change; a configured ticker without a record is excluded
// from both the total and the allocation base, not counted as zero.
func (agg *Aggregator) RecomputeLatest(ctx context.Context) (*store.PortfolioSnapshot, error) {
	latest, err := agg.store.LatestDate(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not determine latest trading date: %w", err)
	}

	if latest.IsZero() {
		return nil, ErrNoPrices
	}

	records, err := agg.store.ReturnsOn(ctx, latest)
	if err != nil {
		return nil, fmt.Errorf("could not load return records: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoReturns, latest.Format("2006-01-02"))
	}

	byTicker := make(map[string]*store.ReturnRecord, len(records))
	for _, rec := range records {
		byTicker[rec.Ticker] = rec
	}

	snap := &store.PortfolioSnapshot{Date: latest}

	var (
		included    int
		bestReturn  float64
		worstReturn float64
	)

	include := func(ticker string, rec *store.ReturnRecord) {
		positionValue := AllocationPerTicker * (1 + rec.Cumulative/100)
		snap.TotalValue += positionValue
		included++

		// strict comparisons: the first ticker encountered wins ties
		if snap.BestPerformer == "" || rec.Cumulative > bestReturn {
			bestReturn = rec.Cumulative
			snap.BestPerformer = ticker
		}

		if snap.WorstPerformer == "" || rec.Cumulative < worstReturn {
			worstReturn = rec.Cumulative
			snap.WorstPerformer = ticker
		}
	}

	seen := make(map[string]bool, len(agg.tickers))
	for _, ticker := range agg.tickers {
		rec, ok := byTicker[ticker]
		if !ok {
			continue
		}

		seen[ticker] = true
		include(ticker, rec)
	}

	// records for tickers no longer on the watch list still count; the sum
	// covers exactly the tickers with a record for the date
	for _, rec := range records {
		if seen[rec.Ticker] {
			continue
		}

		include(rec.Ticker, rec)
	}

	if included == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoReturns, latest.Format("2006-01-02"))
	}

	totalAllocation := AllocationPerTicker * float64(included)
	snap.PortfolioReturn = (snap.TotalValue - totalAllocation) / totalAllocation * 100

	if err := agg.store.SaveSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("could not save portfolio snapshot: %w", err)
	}

	log.Info().Object("PortfolioSnapshot", snap).Int("Included", included).
		Msg("portfolio valuation recomputed")

	return snap, nil
}
