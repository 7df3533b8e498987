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

// Command topology retrieves the APM service topology for an environment,
// or the dependency view for a single service.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/carverauto/apmquery/pkg/apm"
	"github.com/carverauto/apmquery/pkg/config"
	"github.com/carverauto/apmquery/pkg/timerange"
)

const (
	defaultLookback = time.Hour
	requestTimeout  = 30 * time.Second
)

var errEnvironmentRequired = fmt.Errorf("--environment is required")

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	environment := flag.String("environment", "", "Environment name (required)")
	service := flag.String("service", "", "Service name to get dependencies for (optional)")
	startTime := flag.String("start-time", "", "Start time, RFC-3339 (default: 1 hour before end)")
	endTime := flag.String("end-time", "", "End time, RFC-3339 (default: now)")
	configPath := flag.String("config", "", "Optional config file with token/realm")
	flag.Parse()

	if *environment == "" {
		return errEnvironmentRequired
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		return err
	}

	window, err := timerange.Resolve(*startTime, *endTime, defaultLookback)
	if err != nil {
		return err
	}

	client := apm.NewClient(cfg.Token, cfg.Realm, nil)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	doc, err := client.Topology(ctx, *environment, window.RangeString(), *service)
	if err != nil {
		return err
	}

	return printJSON(os.Stdout, doc)
}

// printJSON pretty-prints the document; a body that is not valid JSON is
// passed through untouched.
func printJSON(w io.Writer, doc json.RawMessage) error {
	pretty, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		_, werr := fmt.Fprintln(w, string(doc))
		return werr
	}

	_, err = fmt.Fprintln(w, string(pretty))

	return err
}
