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

	"github.com/georgysavva/scany/v2/pgxscan"
)

// History returns price bars for a ticker ordered newest first. A limit of
// zero or less returns the full stored history.
func (myStore *Store) History(ctx context.Context, ticker string, limit int) ([]*PriceBar, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	var bars []*PriceBar

	sql := `SELECT ticker, date, open_price, high_price, low_price, close_price, volume, created_at
FROM stock_prices WHERE ticker = $1 ORDER BY date DESC`

	if limit > 0 {
		err := pgxscan.Select(ctx, myStore.Pool, &bars, sql+` LIMIT $2`, ticker, limit)
		return bars, err
	}

	err := pgxscan.Select(ctx, myStore.Pool, &bars, sql, ticker)
	return bars, err
}

// BarsOn returns the closing price of every ticker that traded on the given
// date, joined with company reference data.
func (myStore *Store) BarsOn(ctx context.Context, date time.Time) ([]*ClosePrice, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	var prices []*ClosePrice
	err := pgxscan.Select(ctx, myStore.Pool, &prices,
		`SELECT sp.ticker, sp.close_price, si.company_name
FROM stock_prices sp
JOIN stock_info si ON sp.ticker = si.ticker
WHERE sp.date = $1
ORDER BY sp.ticker`, date)
	return prices, err
}

// ReturnsOn returns every return record computed for the given date.
func (myStore *Store) ReturnsOn(ctx context.Context, date time.Time) ([]*ReturnRecord, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	var records []*ReturnRecord
	err := pgxscan.Select(ctx, myStore.Pool, &records,
		`SELECT ticker, date, daily_return_percent, cumulative_return_percent
FROM daily_returns WHERE date = $1 ORDER BY ticker`, date)
	return records, err
}

// LatestQuotes returns the most recent bar for every ticker joined with
// reference data and any computed returns. Rows only appear here after the
// fetch stage commits them, so the view always reflects completed work.
func (myStore *Store) LatestQuotes(ctx context.Context) ([]*Quote, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	var quotes []*Quote
	err := pgxscan.Select(ctx, myStore.Pool, &quotes,
		`SELECT sp.ticker, si.company_name, sp.date, sp.close_price, sp.volume,
	dr.daily_return_percent, dr.cumulative_return_percent
FROM stock_prices sp
JOIN stock_info si ON sp.ticker = si.ticker
LEFT JOIN daily_returns dr ON sp.ticker = dr.ticker AND sp.date = dr.date
WHERE sp.date = (SELECT max(date) FROM stock_prices)
ORDER BY sp.ticker`)
	return quotes, err
}

// AllReturns returns the full return history for every ticker, newest first.
func (myStore *Store) AllReturns(ctx context.Context) ([]*TickerReturn, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	var returns []*TickerReturn
	err := pgxscan.Select(ctx, myStore.Pool, &returns,
		`SELECT dr.ticker, si.company_name, dr.date, dr.daily_return_percent,
	dr.cumulative_return_percent
FROM daily_returns dr
JOIN stock_info si ON dr.ticker = si.ticker
ORDER BY dr.date DESC, dr.ticker`)
	return returns, err
}

// PortfolioHistory returns every stored portfolio snapshot, newest first.
func (myStore *Store) PortfolioHistory(ctx context.Context) ([]*PortfolioSnapshot, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	var snapshots []*PortfolioSnapshot
	err := pgxscan.Select(ctx, myStore.Pool, &snapshots,
		`SELECT date, total_portfolio_value, best_performer, worst_performer, daily_return_percent
FROM portfolio_performance ORDER BY date DESC`)
	return snapshots, err
}

// Stocks returns the static reference data for every tracked company.
func (myStore *Store) Stocks(ctx context.Context) ([]*StockInfo, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	var stocks []*StockInfo
	err := pgxscan.Select(ctx, myStore.Pool, &stocks,
		`SELECT ticker, company_name, sector, market_cap FROM stock_info ORDER BY ticker`)
	return stocks, err
}

// NumStocks returns the count of companies in stock_info.
func (myStore *Store) NumStocks(ctx context.Context) (int, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	conn, err := myStore.Pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	count := 0
	err = conn.QueryRow(ctx, "SELECT count(*) FROM stock_info").Scan(&count)
	return count, err
}

// NumPriceRecords returns the total count of stored price bars.
func (myStore *Store) NumPriceRecords(ctx context.Context) (int, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	conn, err := myStore.Pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	count := 0
	err = conn.QueryRow(ctx, "SELECT count(*) FROM stock_prices").Scan(&count)
	return count, err
}
