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
	"time"

	"github.com/rs/zerolog"
)

// UpsertResult reports whether an upsert created a new row or hit an
// existing one.
type UpsertResult int

const (
	Inserted UpsertResult = iota
	AlreadyPresent
)

func (res UpsertResult) String() string {
	if res == Inserted {
		return "inserted"
	}
	return "already-present"
}

// StockInfo is static reference data about a tracked company. Seeded once,
// never touched by the pipeline afterwards.
type StockInfo struct {
	Ticker      string `db:"ticker" csv:"ticker"`
	CompanyName string `db:"company_name" csv:"company_name"`
	Sector      string `db:"sector" csv:"sector"`
	MarketCap   int64  `db:"market_cap" csv:"market_cap"`
}

// PriceBar is one trading day's OHLCV quote for a ticker. Rows are
// append-only: once a (ticker, date) pair exists it is never overwritten.
type PriceBar struct {
	Ticker    string    `db:"ticker"`
	Date      time.Time `db:"date"`
	Open      float64   `db:"open_price"`
	High      float64   `db:"high_price"`
	Low       float64   `db:"low_price"`
	Close     float64   `db:"close_price"`
	Volume    int64     `db:"volume"`
	CreatedAt time.Time `db:"created_at"`
}

func (bar *PriceBar) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Ticker", bar.Ticker)
	e.Time("Date", bar.Date)
	e.Float64("Open", bar.Open)
	e.Float64("High", bar.High)
	e.Float64("Low", bar.Low)
	e.Float64("Close", bar.Close)
	e.Int64("Volume", bar.Volume)
}

// ReturnRecord holds the derived daily and cumulative percentage return for
// a ticker on a given date. Unlike price bars these rows may be recomputed.
type ReturnRecord struct {
	Ticker     string    `db:"ticker"`
	Date       time.Time `db:"date"`
	Daily      float64   `db:"daily_return_percent"`
	Cumulative float64   `db:"cumulative_return_percent"`
}

func (rec *ReturnRecord) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Ticker", rec.Ticker)
	e.Time("Date", rec.Date)
	e.Float64("Daily", rec.Daily)
	e.Float64("Cumulative", rec.Cumulative)
}

// PortfolioSnapshot is the equal-weight portfolio valuation for one date.
type PortfolioSnapshot struct {
	Date            time.Time `db:"date"`
	TotalValue      float64   `db:"total_portfolio_value"`
	BestPerformer   string    `db:"best_performer"`
	WorstPerformer  string    `db:"worst_performer"`
	PortfolioReturn float64   `db:"daily_return_percent"`
}

func (snap *PortfolioSnapshot) MarshalZerologObject(e *zerolog.Event) {
	e.Time("Date", snap.Date)
	e.Float64("TotalValue", snap.TotalValue)
	e.Str("BestPerformer", snap.BestPerformer)
	e.Str("WorstPerformer", snap.WorstPerformer)
	e.Float64("PortfolioReturn", snap.PortfolioReturn)
}

// Quote is the latest-date view of a ticker joined with its reference data
// and, when already computed, its return record.
type Quote struct {
	Ticker      string    `db:"ticker"`
	CompanyName string    `db:"company_name"`
	Date        time.Time `db:"date"`
	Close       float64   `db:"close_price"`
	Volume      int64     `db:"volume"`
	Daily       *float64  `db:"daily_return_percent"`
	Cumulative  *float64  `db:"cumulative_return_percent"`
}

// TickerReturn is a return record joined with company reference data.
type TickerReturn struct {
	Ticker      string    `db:"ticker"`
	CompanyName string    `db:"company_name"`
	Date        time.Time `db:"date"`
	Daily       float64   `db:"daily_return_percent"`
	Cumulative  float64   `db:"cumulative_return_percent"`
}

// ClosePrice is one ticker's closing price on a date, joined with the
// company name.
type ClosePrice struct {
	Ticker      string  `db:"ticker"`
	Close       float64 `db:"close_price"`
	CompanyName string  `db:"company_name"`
}
