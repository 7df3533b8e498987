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

// Command trace retrieves APM trace data: the latest segment by default, the
// segment list, or a specific segment by timestamp.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/carverauto/apmquery/pkg/apm"
	"github.com/carverauto/apmquery/pkg/config"
)

const requestTimeout = 30 * time.Second

var (
	errTraceIDRequired      = fmt.Errorf("trace id argument is required")
	errConflictingSelectors = fmt.Errorf("--segments and --segment-timestamp are mutually exclusive")
	errUnknownFormat        = fmt.Errorf("unknown format")
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	segments := flag.Bool("segments", false, "Get the list of segments for the trace")
	segmentTimestamp := flag.Int64("segment-timestamp", 0, "Get the segment at this timestamp (microseconds)")
	format := flag.String("format", "json", "Output format: json or ndjson")
	configPath := flag.String("config", "", "Optional config file with token/realm")
	flag.Parse()

	traceID := flag.Arg(0)
	if traceID == "" {
		return errTraceIDRequired
	}

	if *segments && *segmentTimestamp != 0 {
		return errConflictingSelectors
	}

	outputFormat := apm.Format(*format)
	if outputFormat != apm.FormatJSON && outputFormat != apm.FormatNDJSON {
		return fmt.Errorf("%w: %s", errUnknownFormat, *format)
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		return err
	}

	client := apm.NewClient(cfg.Token, cfg.Realm, nil)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var body []byte

	switch {
	case *segments:
		body, err = client.TraceSegments(ctx, traceID, outputFormat)
	case *segmentTimestamp != 0:
		body, err = client.TraceSegmentAt(ctx, traceID, *segmentTimestamp, outputFormat)
	default:
		body, err = client.TraceLatest(ctx, traceID, outputFormat)
	}

	if err != nil {
		return err
	}

	if outputFormat == apm.FormatNDJSON {
		fmt.Print(string(body))
		return nil
	}

	pretty, err := json.MarshalIndent(json.RawMessage(body), "", "  ")
	if err != nil {
		// not valid JSON after all; pass it through untouched
		fmt.Println(string(body))
		return nil
	}

	fmt.Println(string(pretty))

	return nil
}
