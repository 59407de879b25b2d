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
package cmd

import (
	"context"
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/gocarina/gocsv"
	"github.com/jackc/pgx/v5"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Vaheem/stock-market-analysis/db"
	"github.com/Vaheem/stock-market-analysis/store"
)

//go:embed stock_info.csv
var stockInfoCSV []byte

type fileConfig struct {
	Tickers []string `toml:"tickers"`

	DB struct {
		URL string `toml:"url"`
	} `toml:"db"`

	AlphaVantage struct {
		APIKey string `toml:"apikey"`
	} `toml:"alphavantage"`
}

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Gather configuration, create the schema and seed the watch list",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		var (
			dbURL  string
			apiKey string
		)

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Provide the DSN for connecting to your PostgreSQL database (postgres://[user[:password]@][netloc][:port][/dbname][?param1=value1&...])").
					Value(&dbURL).
					Validate(func(dsn string) error {
						_, err := pgx.ParseConfig(dsn)
						return err
					}),

				huh.NewInput().
					Title("Enter your Alpha Vantage API key:").
					Value(&apiKey),
			),
		)

		err := form.Run()
		if err != nil {
			log.Fatal().Err(err).Msg("error gathering database settings")
		}

		log.Info().Msg("creating database tables")

		// run migration
		migrateURL := strings.Replace(dbURL, "postgres://", "pgx5://", -1)
		err = db.Migrate(migrateURL)
		if err != nil {
			log.Fatal().Err(err).Msg("error running database migration")
		}

		log.Info().Msg("database tables created")

		// seed the watch list from the embedded reference data
		var stocks []*store.StockInfo
		if err := gocsv.UnmarshalBytes(stockInfoCSV, &stocks); err != nil {
			log.Fatal().Err(err).Msg("could not parse embedded stock reference data")
		}

		myStore, err := store.Open(ctx, dbURL)
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to database")
		}
		defer myStore.Close()

		if err := myStore.SeedStockInfo(ctx, stocks); err != nil {
			log.Fatal().Err(err).Msg("error seeding stock_info")
		}

		log.Info().Int("NumStocks", len(stocks)).Msg("watch list seeded")

		// save settings to config file
		cfg := fileConfig{}
		cfg.DB.URL = dbURL
		cfg.AlphaVantage.APIKey = apiKey
		for _, stock := range stocks {
			cfg.Tickers = append(cfg.Tickers, stock.Ticker)
		}

		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal().Err(err).Msg("could not determine user home directory")
		}

		configFN := filepath.Join(home, ".stockpipe.toml")
		log.Info().Str("ConfigFile", configFN).Msg("Saving settings to config file")
		configData, err := toml.Marshal(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal configuration data")
		}

		err = os.WriteFile(configFN, configData, 0644)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", configFN).Msg("could not save configuration to file")
		}

		log.Info().Msg("Your market database has been initialized")
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
