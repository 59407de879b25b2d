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

// Package pipeline orchestrates the daily fetch and compute stages. Fetch
// walks the configured tickers sequentially under the source's rate limit;
// compute recomputes returns per ticker and values the portfolio once, only
// after every ticker has been attempted.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Vaheem/stock-market-analysis/alphavantage"
	"github.com/Vaheem/stock-market-analysis/config"
	"github.com/Vaheem/stock-market-analysis/portfolio"
	"github.com/Vaheem/stock-market-analysis/returns"
	"github.com/Vaheem/stock-market-analysis/store"
)

var (
	// ErrMissingAPIKey means the fetch stage cannot start at all.
	ErrMissingAPIKey = errors.New("quote source API key is not configured")

	// ErrNoComputeResults means the return engine succeeded for zero tickers.
	ErrNoComputeResults = errors.New("return engine produced no results")
)

const (
	fetchAttempts      = 3
	defaultBackoffBase = 5 * time.Second
)

// QuoteClient fetches the latest daily bar for one ticker.
type QuoteClient interface {
	FetchLatest(ctx context.Context, ticker string) (*store.PriceBar, error)
}

// BarStore persists fetched price bars.
type BarStore interface {
	UpsertBar(ctx context.Context, bar *store.PriceBar) (store.UpsertResult, error)
}

// ReturnEngine recomputes returns for one ticker.
type ReturnEngine interface {
	Recompute(ctx context.Context, ticker string) (*store.ReturnRecord, error)
}

// Valuer recomputes the portfolio snapshot for the latest trading date.
type Valuer interface {
	RecomputeLatest(ctx context.Context) (*store.PortfolioSnapshot, error)
}

// Pipeline runs complete fetch-then-compute cycles.
type Pipeline struct {
	cfg     *config.Config
	client  QuoteClient
	bars    BarStore
	engine  ReturnEngine
	valuer  Valuer
	limiter *rate.Limiter

	backoffBase time.Duration
}

func New(cfg *config.Config, client QuoteClient, bars BarStore, engine ReturnEngine, valuer Valuer) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		client:      client,
		bars:        bars,
		engine:      engine,
		valuer:      valuer,
		limiter:     rate.NewLimiter(rate.Every(cfg.RateLimitDelay), 1),
		backoffBase: defaultBackoffBase,
	}
}

// Result describes one finished cycle.
type Result struct {
	ID       uuid.UUID
	State    State
	Started  time.Time
	Finished time.Time

	// Fetch holds the per-ticker fetch outcome; every configured ticker has
	// an entry unless the stage failed its precondition.
	Fetch map[string]Outcome

	// Compute holds per-ticker return engine errors. Tickers that succeeded
	// or were skipped for lack of history have no entry.
	Compute map[string]error

	// Computed is the number of tickers the return engine succeeded for.
	Computed int

	Snapshot *store.PortfolioSnapshot
}

// RunCycle executes one fetch-then-compute cycle. Per-ticker failures are
// recorded and skipped; the error return is non-nil only when a whole stage
// failed. Each call starts fresh regardless of earlier cycles.
func (pipe *Pipeline) RunCycle(ctx context.Context) (*Result, error) {
	res := &Result{
		ID:      uuid.New(),
		State:   Fetching,
		Started: time.Now(),
		Fetch:   make(map[string]Outcome, len(pipe.cfg.Tickers)),
		Compute: make(map[string]error),
	}

	defer func() {
		res.Finished = time.Now()
	}()

	logger := log.With().Str("CycleID", res.ID.String()[:8]).Logger()
	logger.Info().Int("NumTickers", len(pipe.cfg.Tickers)).Msg("starting fetch stage")

	// global precondition: without a key no ticker can be attempted
	if pipe.cfg.APIKey == "" {
		res.State = FetchFailed
		return res, ErrMissingAPIKey
	}

	for _, ticker := range pipe.cfg.Tickers {
		// spacing between calls honors the source's rate limit and doubles
		// as the cancellation point between ticker operations
		if err := pipe.limiter.Wait(ctx); err != nil {
			res.State = FetchFailed
			return res, fmt.Errorf("fetch stage aborted: %w", err)
		}

		outcome := pipe.fetchTicker(ctx, ticker, logger)
		res.Fetch[ticker] = outcome
		logger.Info().Str("Ticker", ticker).Stringer("Outcome", outcome).Msg("ticker fetched")
	}

	res.State = Computing
	logger.Info().Msg("starting compute stage")

	for _, ticker := range pipe.cfg.Tickers {
		if err := ctx.Err(); err != nil {
			res.State = ComputeFailed
			return res, fmt.Errorf("compute stage aborted: %w", err)
		}

		if _, err := pipe.engine.Recompute(ctx, ticker); err != nil {
			if errors.Is(err, returns.ErrNoHistory) {
				logger.Debug().Str("Ticker", ticker).Msg("no stored history, skipping returns")
				continue
			}

			logger.Error().Err(err).Str("Ticker", ticker).Msg("could not recompute returns")
			res.Compute[ticker] = err
			continue
		}

		res.Computed++
	}

	if res.Computed == 0 {
		res.State = ComputeFailed
		return res, ErrNoComputeResults
	}

	// the portfolio valuation reads return records, so it must run strictly
	// after every per-ticker recomputation
	snap, err := pipe.valuer.RecomputeLatest(ctx)
	if err != nil {
		if errors.Is(err, portfolio.ErrNoPrices) || errors.Is(err, portfolio.ErrNoReturns) {
			logger.Warn().Err(err).Msg("nothing to value, leaving previous snapshots untouched")
			res.State = Complete
			return res, nil
		}

		res.State = ComputeFailed
		return res, fmt.Errorf("portfolio valuation failed: %w", err)
	}

	res.Snapshot = snap
	res.State = Complete
	logger.Info().Int("Computed", res.Computed).Msg("cycle complete")

	return res, nil
}

// fetchTicker fetches and stores one ticker's latest bar, retrying transient
// errors with exponential backoff up to the attempt budget. Storage failures
// are transient like transport failures; the fetched bar is kept across
// attempts so only the upsert is retried. Permanent errors return
// immediately.
func (pipe *Pipeline) fetchTicker(ctx context.Context, ticker string, logger zerolog.Logger) Outcome {
	backoff := pipe.backoffBase

	var bar *store.PriceBar

	for attempt := 1; ; attempt++ {
		var err error
		if bar == nil {
			bar, err = pipe.client.FetchLatest(ctx, ticker)
		}

		if err == nil {
			var upsert store.UpsertResult
			upsert, err = pipe.bars.UpsertBar(ctx, bar)
			if err == nil {
				if upsert == store.AlreadyPresent {
					return OutcomeDuplicate
				}

				return OutcomeStored
			}
		}

		switch {
		case errors.Is(err, alphavantage.ErrInvalidSymbol):
			logger.Error().Err(err).Str("Ticker", ticker).Msg("quote source does not recognize ticker")
			return OutcomeInvalidSymbol

		case errors.Is(err, alphavantage.ErrNoData):
			logger.Info().Str("Ticker", ticker).Msg("no quote data available")
			return OutcomeNoData
		}

		// rate limited, transport or storage failure; all are transient
		if attempt >= fetchAttempts {
			logger.Error().Err(err).Str("Ticker", ticker).Int("Attempts", attempt).
				Msg("giving up on ticker for this cycle")

			if errors.Is(err, alphavantage.ErrRateLimited) {
				return OutcomeRateLimited
			}

			return OutcomeFailed
		}

		logger.Warn().Err(err).Str("Ticker", ticker).Int("Attempt", attempt).
			Dur("Backoff", backoff).Msg("transient error, backing off")

		select {
		case <-ctx.Done():
			return OutcomeFailed
		case <-time.After(backoff):
		}

		backoff *= 2
	}
}

// Execute runs a cycle and re-runs it after a fixed delay when it fails,
// up to the configured retry count. Retries start from scratch: nothing
// carries over from the failed attempt.
func (pipe *Pipeline) Execute(ctx context.Context) (*Result, error) {
	var (
		res *Result
		err error
	)

	for attempt := 0; ; attempt++ {
		res, err = pipe.RunCycle(ctx)
		if err == nil {
			return res, nil
		}

		if attempt >= pipe.cfg.RetryCount {
			log.Error().Err(err).Stringer("State", res.State).Msg("cycle permanently failed for this interval")
			return res, err
		}

		log.Warn().Err(err).Stringer("State", res.State).Int("Attempt", attempt+1).
			Dur("RetryDelay", pipe.cfg.RetryDelay).Msg("cycle failed, retrying")

		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-time.After(pipe.cfg.RetryDelay):
		}
	}
}
