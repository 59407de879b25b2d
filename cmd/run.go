/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hako/durafmt"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Vaheem/stock-market-analysis/alphavantage"
	"github.com/Vaheem/stock-market-analysis/config"
	"github.com/Vaheem/stock-market-analysis/pipeline"
	"github.com/Vaheem/stock-market-analysis/portfolio"
	"github.com/Vaheem/stock-market-analysis/returns"
	"github.com/Vaheem/stock-market-analysis/store"
)

var daemon bool

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the fetch and compute pipeline",
	Long: `The run sub-command executes one complete pipeline cycle: fetch the latest
quote for every tracked ticker, then recompute returns and the portfolio
valuation. With --daemon the process stays up and runs a cycle at the
configured cron schedule instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("invalid configuration")
		}

		myStore, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to market database")
		}
		defer myStore.Close()

		client := alphavantage.New(cfg.APIKey, cfg.HTTPTimeout)
		engine := returns.New(myStore)
		valuer := portfolio.New(myStore, cfg.Tickers)
		pipe := pipeline.New(cfg, client, myStore, engine, valuer)

		if daemon {
			if err := pipe.Run(ctx); err != nil && ctx.Err() == nil {
				log.Fatal().Err(err).Msg("scheduler exited with an error")
			}
			return
		}

		res, err := pipe.Execute(ctx)

		runTime := res.Finished.Sub(res.Started)
		if err != nil {
			log.Fatal().Err(err).Stringer("State", res.State).
				Str("RunTime", durafmt.Parse(runTime).String()).Msg("cycle failed")
		}

		log.Info().Stringer("State", res.State).Int("Computed", res.Computed).
			Str("RunTime", durafmt.Parse(runTime).String()).Msg("cycle finished")
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVarP(&daemon, "daemon", "d", false, "keep running and execute cycles on the configured schedule")
}
