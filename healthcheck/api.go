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

// Package healthcheck signals cycle completion to healthchecks.io so an
// external monitor notices missed or failed pipeline runs.
package healthcheck

import (
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

var (
	ErrStatus = errors.New("status code is invalid")
)

// Ping reports the end of a cycle for the check with the given id. A failed
// cycle pings the /fail endpoint so the check trips immediately instead of
// waiting out its grace period.
func Ping(id string, success bool) error {
	url := fmt.Sprintf("https://hc-ping.com/%s", id)
	if !success {
		url += "/fail"
	}

	client := resty.New()
	resp, err := client.R().Get(url)

	if err != nil {
		return err
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	return nil
}
