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
	"testing"
)

func TestValidateNoTickers(t *testing.T) {
	cfg := &Config{DatabaseURL: "postgres://localhost/market"}
	if err := cfg.Validate(); !errors.Is(err, ErrNoTickers) {
		t.Fatalf("err=%v want ErrNoTickers", err)
	}
}

func TestValidateNoDBUrl(t *testing.T) {
	cfg := &Config{Tickers: []string{"NVDA"}}
	if err := cfg.Validate(); !errors.Is(err, ErrNoDBUrl) {
		t.Fatalf("err=%v want ErrNoDBUrl", err)
	}
}

func TestValidateOK(t *testing.T) {
	cfg := &Config{
		Tickers:     []string{"NVDA", "AAPL"},
		DatabaseURL: "postgres://localhost/market",
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
