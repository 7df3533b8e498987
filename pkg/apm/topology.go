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

package apm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	tagEnvironment = "sf_environment"
	operatorEquals = "equals"
	scopeGlobal    = "GLOBAL"
)

// Topology fetches the service topology for an environment, or the
// dependency view for one service when service is non-empty. timeRange is
// the "startISO/endISO" form the API expects. The document comes back as
// raw JSON for the caller to render.
func (c *Client) Topology(ctx context.Context, environment, timeRange, service string) (json.RawMessage, error) {
	endpoint := c.baseURL + "/apm/topology"
	if service != "" {
		endpoint += "/" + url.PathEscape(service)
	}

	body, err := json.Marshal(topologyRequest{
		TimeRange: timeRange,
		TagFilters: []TagFilter{
			{
				Name:     tagEnvironment,
				Operator: operatorEquals,
				Scope:    scopeGlobal,
				Value:    environment,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	return raw, nil
}
