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
	"math"
	"sort"
)

// unknownService buckets timeseries whose metadata never arrived.
const unknownService = "unknown"

// Published stream labels the error-rate program emits.
const (
	labelErrors = "errors"
	labelTotal  = "total"
)

const nsPerMs = 1_000_000

// Aggregate joins a fully consumed stream with its metadata and folds the
// datapoints into one record per service, ordered by service name. The join
// happens only after the stream is complete, so metadata arriving after its
// data frames needs no special handling; a timeseries with no metadata at
// all lands in the "unknown" bucket. Services whose name is empty are
// dropped from the output entirely.
func Aggregate(res *StreamResult, metric MetricType) []ServiceMetrics {
	grouped := make(map[string]map[string][]Point)

	for tsID, points := range res.PointsByID {
		service := unknownService
		label := ""

		if md, ok := res.MetadataByID[tsID]; ok {
			service = md.Service
			label = md.StreamLabel
		}

		byLabel, ok := grouped[service]
		if !ok {
			byLabel = make(map[string][]Point)
			grouped[service] = byLabel
		}

		byLabel[label] = append(byLabel[label], points...)
	}

	services := make([]string, 0, len(grouped))

	for service := range grouped {
		if service == "" {
			continue
		}

		services = append(services, service)
	}

	sort.Strings(services)

	records := make([]ServiceMetrics, 0, len(services))

	for _, service := range services {
		records = append(records, foldService(service, grouped[service], metric))
	}

	return records
}

// foldService computes the metric-specific fields for one service. Nil
// values were already excluded by the pooling helpers; they keep a bucket
// alive but contribute nothing numerically.
func foldService(service string, byLabel map[string][]Point, metric MetricType) ServiceMetrics {
	rec := ServiceMetrics{Service: service}

	switch metric {
	case MetricErrorRate:
		errSum := sumValues(byLabel[labelErrors])
		totalSum := sumValues(byLabel[labelTotal])

		if totalSum > 0 {
			rec.ErrorRatePct = float64Ptr(round2(errSum / totalSum * 100))
			rec.ErrorCount = float64Ptr(errSum)
			rec.TotalCount = float64Ptr(totalSum)
		} else {
			// zero denominator is a defined state, not an error
			rec.ErrorRatePct = float64Ptr(0)
			rec.ErrorCount = float64Ptr(0)
			rec.TotalCount = float64Ptr(0)
		}
	case MetricLatency:
		if vals := poolValues(byLabel); len(vals) > 0 {
			// the backend already aggregated each bucket to p99; this is the
			// mean of that series, converted ns -> ms
			rec.P99Ms = float64Ptr(round2(mean(vals) / nsPerMs))
		}
	case MetricThroughput:
		if vals := poolValues(byLabel); len(vals) > 0 {
			rec.RequestsTotal = float64Ptr(sum(vals))
			rec.AvgPerInterval = float64Ptr(round2(mean(vals)))
		}
	}

	return rec
}

// sumValues totals the non-nil values of a point list.
func sumValues(points []Point) float64 {
	var total float64

	for _, p := range points {
		if p.Value != nil {
			total += *p.Value
		}
	}

	return total
}

// poolValues flattens the non-nil values across every label of a service.
func poolValues(byLabel map[string][]Point) []float64 {
	var vals []float64

	for _, points := range byLabel {
		for _, p := range points {
			if p.Value != nil {
				vals = append(vals, *p.Value)
			}
		}
	}

	return vals
}

func sum(vals []float64) float64 {
	var total float64

	for _, v := range vals {
		total += v
	}

	return total
}

func mean(vals []float64) float64 {
	return sum(vals) / float64(len(vals))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func float64Ptr(v float64) *float64 {
	return &v
}
