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

// Package returns derives per-ticker daily and cumulative returns from
// stored price history.
package returns

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Vaheem/stock-market-analysis/store"
)

var (
	// ErrNoHistory means no price bars exist for the ticker; the caller
	// treats this as a skip, not a failure.
	ErrNoHistory = errors.New("no price history for ticker")

	// ErrZeroClose means a stored close price of zero would force a division
	// by zero. The stored history is corrupt for this ticker; the condition
	// is surfaced rather than coerced to a zero return.
	ErrZeroClose = errors.New("stored close price is zero")
)

// Store is the slice of the price store the engine needs.
type Store interface {
	History(ctx context.Context, ticker string, limit int) ([]*store.PriceBar, error)
	SaveReturn(ctx context.Context, rec *store.ReturnRecord) error
}

// Engine recomputes returns for a ticker's most recent trading day.
type Engine struct {
	store Store
}

func New(s Store) *Engine {
	return &Engine{store: s}
}

// Recompute derives the daily and cumulative return for the ticker's latest
// stored bar and upserts the result. Daily return compares against the
// immediately preceding stored trading day, cumulative against the earliest
// stored bar. A single stored bar yields zero for both. Recomputation over
// unchanged history writes an identical row.
func (engine *Engine) Recompute(ctx context.Context, ticker string) (*store.ReturnRecord, error) {
	history, err := engine.store.History(ctx, ticker, 0)
	if err != nil {
		return nil, fmt.Errorf("could not load price history: %w", err)
	}

	if len(history) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoHistory, ticker)
	}

	today := history[0]

	rec := &store.ReturnRecord{
		Ticker: ticker,
		Date:   today.Date,
	}

	if len(history) > 1 {
		yesterday := history[1]
		first := history[len(history)-1]

		if yesterday.Close == 0 || first.Close == 0 {
			return nil, fmt.Errorf("%w: %s", ErrZeroClose, ticker)
		}

		rec.Daily = (today.Close - yesterday.Close) / yesterday.Close * 100
		rec.Cumulative = (today.Close - first.Close) / first.Close * 100
	}

	if err := engine.store.SaveReturn(ctx, rec); err != nil {
		return nil, fmt.Errorf("could not save return record: %w", err)
	}

	log.Debug().Object("ReturnRecord", rec).Msg("recomputed returns")

	return rec, nil
}
