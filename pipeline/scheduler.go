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
package pipeline

import (
	"context"

	"github.com/hako/durafmt"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/Vaheem/stock-market-analysis/healthcheck"
)

// Run executes cycles on the configured cron schedule until the context is
// cancelled. SkipIfStillRunning serializes cycles: a retry that overruns
// into the next trigger suppresses it instead of racing it.
func (pipe *Pipeline) Run(ctx context.Context) error {
	cronLogger := cron.PrintfLogger(&log.Logger)
	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger)))

	_, err := scheduler.AddFunc(pipe.cfg.Schedule, func() {
		res, err := pipe.Execute(ctx)

		runTime := res.Finished.Sub(res.Started)
		if err != nil {
			log.Error().Err(err).Stringer("State", res.State).
				Str("RunTime", durafmt.Parse(runTime).String()).Msg("scheduled cycle failed")
		} else {
			log.Info().Stringer("State", res.State).Int("Computed", res.Computed).
				Str("RunTime", durafmt.Parse(runTime).String()).Msg("scheduled cycle finished")
		}

		if pipe.cfg.HealthCheckID != "" {
			if pingErr := healthcheck.Ping(pipe.cfg.HealthCheckID, err == nil); pingErr != nil {
				log.Error().Err(pingErr).Msg("could not ping health check")
			}
		}
	})
	if err != nil {
		return err
	}

	log.Info().Str("Schedule", pipe.cfg.Schedule).Msg("pipeline scheduler started")
	scheduler.Start()

	<-ctx.Done()

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()

	log.Info().Msg("pipeline scheduler stopped")

	return ctx.Err()
}
