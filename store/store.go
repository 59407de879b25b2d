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
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Store owns the relational tables the pipeline writes: stock_info,
// stock_prices, daily_returns and portfolio_performance. Every operation
// runs in its own short-lived transaction scoped to a single statement.
type Store struct {
	DBUrl string

	Pool *pgxpool.Pool
}

// opTimeout bounds every database operation independently of the caller's
// context. A hung statement surfaces as a transient error instead of
// stalling the whole cycle.
const opTimeout = 30 * time.Second

func opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, opTimeout)
}

// Open connects to the database at the given URL
func Open(ctx context.Context, dbURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	myStore := &Store{
		DBUrl: dbURL,
		Pool:  pool,
	}

	return myStore, nil
}

// Close the database pool
func (myStore *Store) Close() {
	myStore.Pool.Close()
}

// UpsertBar saves a price bar if the (ticker, date) pair has not been seen
// before. Existing rows are kept as-is: the first write for a trading day is
// authoritative and a later re-fetch never silently changes history.
func (myStore *Store) UpsertBar(ctx context.Context, bar *PriceBar) (UpsertResult, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	conn, err := myStore.Pool.Acquire(ctx)
	if err != nil {
		return AlreadyPresent, err
	}
	defer conn.Release()

	log.Debug().Object("PriceBar", bar).Msg("saving price bar to database")

	tag, err := conn.Exec(ctx, `INSERT INTO stock_prices (
		"ticker",
		"date",
		"open_price",
		"high_price",
		"low_price",
		"close_price",
		"volume",
		"created_at"
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, NOW()
	) ON CONFLICT (ticker, date) DO NOTHING`,
		bar.Ticker, bar.Date, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
	if err != nil {
		return AlreadyPresent, err
	}

	if tag.RowsAffected() == 0 {
		return AlreadyPresent, nil
	}

	return Inserted, nil
}

// SaveReturn upserts a return record keyed by (ticker, date). Returns are
// derived data and may be recomputed, so conflicts overwrite.
func (myStore *Store) SaveReturn(ctx context.Context, rec *ReturnRecord) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	conn, err := myStore.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `INSERT INTO daily_returns (
		"ticker",
		"date",
		"daily_return_percent",
		"cumulative_return_percent"
	) VALUES (
		$1, $2, $3, $4
	) ON CONFLICT (ticker, date) DO UPDATE SET
		daily_return_percent = EXCLUDED.daily_return_percent,
		cumulative_return_percent = EXCLUDED.cumulative_return_percent`,
		rec.Ticker, rec.Date, rec.Daily, rec.Cumulative)

	return err
}

// SaveSnapshot upserts the portfolio valuation for a date.
func (myStore *Store) SaveSnapshot(ctx context.Context, snap *PortfolioSnapshot) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	conn, err := myStore.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	log.Debug().Object("PortfolioSnapshot", snap).Msg("saving portfolio snapshot to database")

	_, err = conn.Exec(ctx, `INSERT INTO portfolio_performance (
		"date",
		"total_portfolio_value",
		"best_performer",
		"worst_performer",
		"daily_return_percent"
	) VALUES (
		$1, $2, $3, $4, $5
	) ON CONFLICT (date) DO UPDATE SET
		total_portfolio_value = EXCLUDED.total_portfolio_value,
		best_performer = EXCLUDED.best_performer,
		worst_performer = EXCLUDED.worst_performer,
		daily_return_percent = EXCLUDED.daily_return_percent`,
		snap.Date, snap.TotalValue, snap.BestPerformer, snap.WorstPerformer, snap.PortfolioReturn)

	return err
}

// SeedStockInfo inserts reference rows for tracked companies, leaving any
// existing rows untouched.
func (myStore *Store) SeedStockInfo(ctx context.Context, stocks []*StockInfo) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	conn, err := myStore.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	for _, stock := range stocks {
		_, err := conn.Exec(ctx, `INSERT INTO stock_info (
			"ticker",
			"company_name",
			"sector",
			"market_cap"
		) VALUES (
			$1, $2, $3, $4
		) ON CONFLICT (ticker) DO NOTHING`,
			stock.Ticker, stock.CompanyName, stock.Sector, stock.MarketCap)
		if err != nil {
			return err
		}
	}

	return nil
}

// LatestDate returns the most recent trading date present in stock_prices,
// or the zero time when no bars have been stored yet.
func (myStore *Store) LatestDate(ctx context.Context) (time.Time, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	conn, err := myStore.Pool.Acquire(ctx)
	if err != nil {
		return time.Time{}, err
	}
	defer conn.Release()

	var latest time.Time
	err = conn.QueryRow(ctx,
		`SELECT coalesce(max(date), '0001-01-01'::date) FROM stock_prices`).Scan(&latest)
	if err != nil {
		return time.Time{}, err
	}

	return latest, nil
}
