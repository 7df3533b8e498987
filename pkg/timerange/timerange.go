/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package timerange resolves the query windows the commands pass to the
// backend: explicit RFC-3339 bounds, or a default look-back ending now.
package timerange

import (
	"errors"
	"fmt"
	"time"
)

const rangeLayout = "2006-01-02T15:04:05Z"

var ErrInvalidTime = errors.New("invalid time format")

// Window is one resolved query window.
type Window struct {
	Start time.Time
	Stop  time.Time
}

// Resolve parses optional RFC-3339 bounds. Stop defaults to now; Start
// defaults to lookback before Stop.
func Resolve(startISO, stopISO string, lookback time.Duration) (Window, error) {
	stop := time.Now().UTC()

	if stopISO != "" {
		t, err := parseISO(stopISO)
		if err != nil {
			return Window{}, err
		}

		stop = t
	}

	start := stop.Add(-lookback)

	if startISO != "" {
		t, err := parseISO(startISO)
		if err != nil {
			return Window{}, err
		}

		start = t
	}

	return Window{Start: start, Stop: stop}, nil
}

func parseISO(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}

	return t.UTC(), nil
}

// StartMs returns the window start in epoch milliseconds.
func (w Window) StartMs() int64 {
	return w.Start.UnixMilli()
}

// StopMs returns the window stop in epoch milliseconds.
func (w Window) StopMs() int64 {
	return w.Stop.UnixMilli()
}

// RangeString renders the window the way the topology API wants it,
// "start/end" at seconds precision in UTC.
func (w Window) RangeString() string {
	return w.Start.UTC().Format(rangeLayout) + "/" + w.Stop.UTC().Format(rangeLayout)
}
