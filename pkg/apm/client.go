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

// Package apm talks to the Splunk Observability APM REST API: service
// topology and trace retrieval.
package apm

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	apiURLFormat = "https://api.%s.signalfx.com/v2"
	tokenHeader  = "X-SF-Token"
)

const (
	defaultRequestTimeout = 30 * time.Second
	maxErrorBodyBytes     = 64 * 1024
)

// Client issues authenticated requests against one realm's APM API.
type Client struct {
	doer    HTTPDoer
	baseURL string
	token   string
}

// NewClient builds a client for a realm. Passing a nil doer installs an
// http.Client with the default request timeout.
func NewClient(token, realm string, doer HTTPDoer) *Client {
	return newClient(token, fmt.Sprintf(apiURLFormat, realm), doer)
}

// newClient is split out so tests can point the client at a local server.
func newClient(token, baseURL string, doer HTTPDoer) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: defaultRequestTimeout}
	}

	return &Client{
		doer:    doer,
		baseURL: baseURL,
		token:   token,
	}
}

// do sends the request with auth attached and maps a non-2xx status onto a
// one-line diagnostic. The caller owns the returned body.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set(tokenHeader, c.token)

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return resp, nil
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	return nil, c.apiError(resp)
}

// apiError reads the error body and surfaces the backend's message field
// when it has one.
func (c *Client) apiError(resp *http.Response) error {
	msg := fmt.Sprintf("HTTP error: %d", resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err == nil {
		var payload struct {
			Message string `json:"message"`
		}

		if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
			msg += " - " + payload.Message
		}
	}

	return fmt.Errorf("%w: %s", ErrRequestFailed, msg)
}
