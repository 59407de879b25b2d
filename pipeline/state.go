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

// State tracks a cycle through the two pipeline stages. A cycle always ends
// in FetchFailed, ComputeFailed or Complete.
type State int

const (
	Idle State = iota
	Fetching
	FetchFailed
	Computing
	ComputeFailed
	Complete
)

func (state State) String() string {
	switch state {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case FetchFailed:
		return "fetch-failed"
	case Computing:
		return "computing"
	case ComputeFailed:
		return "compute-failed"
	case Complete:
		return "complete"
	}

	return "unknown"
}

// Outcome records what happened to a single ticker during the fetch stage.
type Outcome int

const (
	// OutcomeStored means a new price bar was written.
	OutcomeStored Outcome = iota

	// OutcomeDuplicate means the bar already existed; the stored row wins.
	OutcomeDuplicate

	// OutcomeInvalidSymbol means the quote source rejected the ticker.
	// Permanent; the ticker is skipped without aborting the stage.
	OutcomeInvalidSymbol

	// OutcomeRateLimited means every attempt hit the source's rate limit.
	OutcomeRateLimited

	// OutcomeNoData means the source returned an empty series, e.g. when
	// markets are closed.
	OutcomeNoData

	// OutcomeFailed means transport or storage errors exhausted the attempt
	// budget.
	OutcomeFailed
)

func (outcome Outcome) String() string {
	switch outcome {
	case OutcomeStored:
		return "stored"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeInvalidSymbol:
		return "invalid-symbol"
	case OutcomeRateLimited:
		return "rate-limited"
	case OutcomeNoData:
		return "no-data"
	case OutcomeFailed:
		return "failed"
	}

	return "unknown"
}
