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
	"fmt"
	"strings"

	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary returns a description of the market database in markdown
func (myStore *Store) Summary(ctx context.Context) (string, error) {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	if _, err := builder.WriteString("# Stock Market Analysis\n"); err != nil {
		return "", err
	}

	if _, err := builder.WriteString("## Details\n\n"); err != nil {
		return "", err
	}

	// Tracked company count
	numStocks, err := myStore.NumStocks(ctx)
	if err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Stocks Tracked: %d\n", numStocks)); err != nil {
		return "", err
	}

	// Total price record count
	numRecords, err := myStore.NumPriceRecords(ctx)
	if err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Price Records: %d\n\n", numRecords)); err != nil {
		return "", err
	}

	// Most recent trading day with data
	latestDate, err := myStore.LatestDate(ctx)
	if err != nil {
		return "", err
	}

	if latestDate.IsZero() {
		if _, err := builder.WriteString("Last Updated: Never\n\n"); err != nil {
			return "", err
		}

		return builder.String(), nil
	}

	age := timeago.English.Format(latestDate)

	if _, err := builder.WriteString(fmt.Sprintf("Last Updated: %s (%s)\n\n", age, latestDate.Format("01/02/2006"))); err != nil {
		return "", err
	}

	// Latest quotes
	if _, err := builder.WriteString("## Latest Quotes\n\n"); err != nil {
		return "", err
	}

	quotes, err := myStore.LatestQuotes(ctx)
	if err != nil {
		return "", err
	}

	for _, quote := range quotes {
		line := p.Sprintf("  * %s (%s): $%.2f", quote.Ticker, quote.CompanyName, quote.Close)
		if quote.Daily != nil && quote.Cumulative != nil {
			line = p.Sprintf("%s (%+.2f%% today, %+.2f%% overall)", line, *quote.Daily, *quote.Cumulative)
		}

		if _, err := builder.WriteString(line + "\n"); err != nil {
			return "", err
		}
	}

	// Portfolio performance
	snapshots, err := myStore.PortfolioHistory(ctx)
	if err != nil {
		return "", err
	}

	if len(snapshots) > 0 {
		if _, err := builder.WriteString("\n## Portfolio\n\n"); err != nil {
			return "", err
		}

		latest := snapshots[0]
		if _, err := builder.WriteString(p.Sprintf("  * Total Value: $%.2f (%+.2f%%)\n", latest.TotalValue, latest.PortfolioReturn)); err != nil {
			return "", err
		}

		if _, err := builder.WriteString(p.Sprintf("  * Best Performer: %s\n", latest.BestPerformer)); err != nil {
			return "", err
		}

		if _, err := builder.WriteString(p.Sprintf("  * Worst Performer: %s\n", latest.WorstPerformer)); err != nil {
			return "", err
		}
	}

	return builder.String(), nil
}
