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

package signalflow

import (
	"fmt"
	"strings"
)

// metricDefinition pairs a human description with a program template. The
// template takes the environment as %[1]s and an optional pre-rendered
// service filter clause as %[2]s.
type metricDefinition struct {
	description string
	program     string
}

var metricDefinitions = map[MetricType]metricDefinition{
	MetricErrorRate: {
		description: "Error rate per service (%)",
		program: "errors = data('service.request.count', " +
			"filter=filter('sf_error', 'true') and filter('sf_environment', '%[1]s')%[2]s)" +
			".sum(by=['sf_service']).publish('errors')\n" +
			"total = data('service.request.count', " +
			"filter=filter('sf_environment', '%[1]s')%[2]s)" +
			".sum(by=['sf_service']).publish('total')",
	},
	MetricLatency: {
		description: "Request duration P99 per service (ms)",
		program: "data('service.request.duration.ns.p99', " +
			"filter=filter('sf_environment', '%[1]s')%[2]s)" +
			".mean(by=['sf_service']).publish('latency_p99')",
	},
	MetricThroughput: {
		description: "Request throughput per service (req/sec)",
		program: "data('service.request.count', " +
			"filter=filter('sf_environment', '%[1]s')%[2]s)" +
			".sum(by=['sf_service']).publish('throughput')",
	},
}

// Describe returns the human description for a metric type, or "" for an
// unknown one.
func Describe(metric MetricType) string {
	return metricDefinitions[metric].description
}

// BuildProgram renders the SignalFlow program for a metric type. Filter
// values are embedded as single-quoted string literals, so values carrying a
// quote character are rejected outright rather than spliced into the program.
func BuildProgram(metric MetricType, environment, service string) (string, error) {
	if environment == "" {
		return "", ErrEmptyEnvironment
	}

	if err := checkFilterValue(environment); err != nil {
		return "", err
	}

	if err := checkFilterValue(service); err != nil {
		return "", err
	}

	def, ok := metricDefinitions[metric]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMetricType, metric)
	}

	svcFilter := ""
	if service != "" {
		svcFilter = fmt.Sprintf(" and filter('sf_service', '%s')", service)
	}

	return fmt.Sprintf(def.program, environment, svcFilter), nil
}

func checkFilterValue(value string) error {
	if strings.ContainsAny(value, `'"`) {
		return fmt.Errorf("%w: %q", ErrUnsafeFilterValue, value)
	}

	return nil
}
