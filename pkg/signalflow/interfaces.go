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

// Package signalflow pkg/signalflow/interfaces.go

package signalflow

import "context"

//go:generate mockgen -destination=mock_signalflow.go -package=signalflow github.com/carverauto/apmquery/pkg/signalflow LineSource,Executor

// LineSource yields the lines of an event stream one at a time.
type LineSource interface {
	// Next returns the next line and true, or "" and false at end of stream.
	Next() (string, bool)
	// Err reports the transport error that ended the stream, if any.
	Err() error
}

// Executor runs a SignalFlow program and returns the accumulated stream.
// Both the SSE and the websocket transport satisfy it.
type Executor interface {
	Execute(ctx context.Context, req *ExecuteRequest) (*StreamResult, error)
}
