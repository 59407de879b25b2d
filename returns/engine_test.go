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
package returns

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Vaheem/stock-market-analysis/store"
)

type fakeStore struct {
	bars  []*store.PriceBar
	saved []*store.ReturnRecord
}

func (f *fakeStore) History(_ context.Context, _ string, _ int) ([]*store.PriceBar, error) {
	return f.bars, nil
}

func (f *fakeStore) SaveReturn(_ context.Context, rec *store.ReturnRecord) error {
	f.saved = append(f.saved, rec)
	return nil
}

func day(dayOfMonth int) time.Time {
	return time.Date(2026, 8, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

// newestFirst builds a history from closes listed oldest to newest, the way
// prices arrive, ordered the way the store returns them.
func newestFirst(closes ...float64) []*store.PriceBar {
	bars := make([]*store.PriceBar, 0, len(closes))
	for i := len(closes) - 1; i >= 0; i-- {
		bars = append(bars, &store.PriceBar{Ticker: "NVDA", Date: day(i + 1), Close: closes[i]})
	}
	return bars
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRecomputeSingleBar(t *testing.T) {
	fake := &fakeStore{bars: newestFirst(100)}
	engine := New(fake)

	rec, err := engine.Recompute(context.Background(), "NVDA")
	if err != nil {
		t.Fatalf("Recompute returned error: %v", err)
	}

	if rec.Daily != 0 || rec.Cumulative != 0 {
		t.Fatalf("daily=%f cumulative=%f, want both 0", rec.Daily, rec.Cumulative)
	}

	if !rec.Date.Equal(day(1)) {
		t.Fatalf("date=%s want=%s", rec.Date, day(1))
	}

	if len(fake.saved) != 1 {
		t.Fatalf("saved %d records, want 1", len(fake.saved))
	}
}

func TestRecomputeDailyAndCumulative(t *testing.T) {
	fake := &fakeStore{bars: newestFirst(100, 110, 121)}
	engine := New(fake)

	rec, err := engine.Recompute(context.Background(), "NVDA")
	if err != nil {
		t.Fatalf("Recompute returned error: %v", err)
	}

	if !almostEqual(rec.Daily, 10.0) {
		t.Fatalf("daily=%f want=10.0", rec.Daily)
	}

	if !almostEqual(rec.Cumulative, 21.0) {
		t.Fatalf("cumulative=%f want=21.0", rec.Cumulative)
	}

	// latest bar carries the newest date
	if !rec.Date.Equal(day(3)) {
		t.Fatalf("date=%s want=%s", rec.Date, day(3))
	}
}

func TestRecomputeIdempotent(t *testing.T) {
	fake := &fakeStore{bars: newestFirst(100, 110, 121)}
	engine := New(fake)

	first, err := engine.Recompute(context.Background(), "NVDA")
	if err != nil {
		t.Fatalf("first Recompute returned error: %v", err)
	}

	second, err := engine.Recompute(context.Background(), "NVDA")
	if err != nil {
		t.Fatalf("second Recompute returned error: %v", err)
	}

	if *first != *second {
		t.Fatalf("recompute over unchanged history differs: %+v vs %+v", first, second)
	}
}

func TestRecomputeNoHistory(t *testing.T) {
	fake := &fakeStore{}
	engine := New(fake)

	_, err := engine.Recompute(context.Background(), "NVDA")
	if !errors.Is(err, ErrNoHistory) {
		t.Fatalf("err=%v want ErrNoHistory", err)
	}

	if len(fake.saved) != 0 {
		t.Fatalf("saved %d records, want 0", len(fake.saved))
	}
}

func TestRecomputeZeroClose(t *testing.T) {
	fake := &fakeStore{bars: newestFirst(0, 110, 121)}
	engine := New(fake)

	_, err := engine.Recompute(context.Background(), "NVDA")
	if !errors.Is(err, ErrZeroClose) {
		t.Fatalf("err=%v want ErrZeroClose", err)
	}

	if len(fake.saved) != 0 {
		t.Fatalf("corrupt history must not produce a return record, saved %d", len(fake.saved))
	}
}
