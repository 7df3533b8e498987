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

// Command metrics retrieves APM service metrics (error rate, latency,
// throughput) through the SignalFlow execute API and prints one aggregated
// JSON document per service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/carverauto/apmquery/pkg/config"
	"github.com/carverauto/apmquery/pkg/signalflow"
	"github.com/carverauto/apmquery/pkg/timerange"
)

const (
	defaultLookback    = 10 * time.Minute
	defaultResolution  = 60000
	executeTimeout     = 60 * time.Second
	transportSSE       = "sse"
	transportWebsocket = "websocket"
)

var (
	errEnvironmentRequired = fmt.Errorf("--environment is required")
	errMetricRequired      = fmt.Errorf("--metric is required")
	errUnknownTransport    = fmt.Errorf("unknown transport")
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	environment := flag.String("environment", "", "Environment name (required)")
	metric := flag.String("metric", "", "Metric type: error-rate, latency or throughput (required)")
	service := flag.String("service", "", "Filter by service name (optional)")
	startTime := flag.String("start-time", "", "Start time, RFC-3339 (default: 10 minutes before end)")
	endTime := flag.String("end-time", "", "End time, RFC-3339 (default: now)")
	resolution := flag.Int64("resolution", defaultResolution, "Resolution in ms")
	transport := flag.String("transport", transportSSE, "Stream transport: sse or websocket")
	configPath := flag.String("config", "", "Optional config file with token/realm")
	flag.Parse()

	if *environment == "" {
		return errEnvironmentRequired
	}

	if *metric == "" {
		return errMetricRequired
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		return err
	}

	window, err := timerange.Resolve(*startTime, *endTime, defaultLookback)
	if err != nil {
		return err
	}

	metricType := signalflow.MetricType(*metric)

	program, err := signalflow.BuildProgram(metricType, *environment, *service)
	if err != nil {
		return err
	}

	executor, err := newExecutor(*transport, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), executeTimeout)
	defer cancel()

	stream, err := executor.Execute(ctx, &signalflow.ExecuteRequest{
		Program:      program,
		StartMs:      window.StartMs(),
		StopMs:       window.StopMs(),
		ResolutionMs: *resolution,
	})
	if err != nil {
		if stream == nil {
			return err
		}

		// the stream dropped mid-flight; report what made it across
		log.Printf("Warning: stream ended early: %v", err)
	}

	results := signalflow.Aggregate(stream, metricType)
	report := signalflow.NewReport(metricType, *environment, window.StartMs(), window.StopMs(), results)

	return report.WriteJSON(os.Stdout)
}

func newExecutor(transport string, cfg *config.Config) (signalflow.Executor, error) {
	switch transport {
	case transportSSE:
		return signalflow.NewClient(cfg.Token, cfg.Realm, &http.Client{Timeout: executeTimeout}), nil
	case transportWebsocket:
		return signalflow.NewWSClient(cfg.Token, cfg.Realm, nil), nil
	default:
		return nil, fmt.Errorf("%w: %s", errUnknownTransport, transport)
	}
}
