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
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

var (
	ErrNoTickers = errors.New("no tickers configured")
	ErrNoDBUrl   = errors.New("db.url is not set")
)

// Config holds every runtime option for the pipeline. It is built once at
// process start and passed into each component; nothing reads viper after
// Load returns.
type Config struct {
	// Tickers is the fixed watch list. Order matters: best/worst performer
	// ties resolve to the ticker listed first.
	Tickers []string

	// APIKey authenticates requests against the Alpha Vantage API.
	APIKey string

	// DatabaseURL is a postgres:// DSN.
	DatabaseURL string

	// Schedule is a cron expression for the daily pipeline trigger.
	Schedule string

	// RetryCount is the number of times a failed cycle is re-run within
	// one scheduled interval.
	RetryCount int

	// RetryDelay is the fixed wait between cycle retries.
	RetryDelay time.Duration

	// RateLimitDelay is the minimum spacing between consecutive quote
	// requests. The Alpha Vantage free tier allows 5 calls per minute.
	RateLimitDelay time.Duration

	// HTTPTimeout bounds each outbound quote request.
	HTTPTimeout time.Duration

	// HealthCheckID, when set, is pinged at the end of every cycle so an
	// external monitor notices missed or failed runs.
	HealthCheckID string
}

// Load builds a Config from viper. Scheduling knobs default to the values
// the pipeline has always run with; tickers, API key and database DSN must
// be set explicitly.
func Load() (*Config, error) {
	viper.SetDefault("schedule.cron", "0 22 * * *")
	viper.SetDefault("schedule.retryCount", 2)
	viper.SetDefault("schedule.retryDelay", 5*time.Minute)
	viper.SetDefault("fetch.rateLimitDelay", 12*time.Second)
	viper.SetDefault("fetch.httpTimeout", 30*time.Second)

	cfg := &Config{
		Tickers:        viper.GetStringSlice("tickers"),
		APIKey:         viper.GetString("alphavantage.apikey"),
		DatabaseURL:    viper.GetString("db.url"),
		Schedule:       viper.GetString("schedule.cron"),
		RetryCount:     viper.GetInt("schedule.retryCount"),
		RetryDelay:     viper.GetDuration("schedule.retryDelay"),
		RateLimitDelay: viper.GetDuration("fetch.rateLimitDelay"),
		HTTPTimeout:    viper.GetDuration("fetch.httpTimeout"),
		HealthCheckID:  viper.GetString("healthchecks.id"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports the first missing required option.
func (cfg *Config) Validate() error {
	if len(cfg.Tickers) == 0 {
		return ErrNoTickers
	}

	if cfg.DatabaseURL == "" {
		return ErrNoDBUrl
	}

	return nil
}
