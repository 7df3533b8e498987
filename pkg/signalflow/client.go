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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const (
	streamURLFormat = "https://stream.%s.signalfx.com/v2/signalflow/execute"
	tokenHeader     = "X-SF-Token"
)

const (
	defaultExecuteTimeout = 60 * time.Second
	maxErrorBodyBytes     = 64 * 1024
)

// Client executes SignalFlow programs against the SSE execute endpoint and
// streams the response through the frame parser.
type Client struct {
	httpClient *http.Client
	url        string
	token      string
}

// NewClient builds a client for a realm. Passing a nil httpClient installs
// one with the default execute timeout.
func NewClient(token, realm string, httpClient *http.Client) *Client {
	return newClient(token, fmt.Sprintf(streamURLFormat, realm), httpClient)
}

// newClient is split out so tests can point the client at a local server.
func newClient(token, url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultExecuteTimeout}
	}

	return &Client{
		httpClient: httpClient,
		url:        url,
		token:      token,
	}
}

// Execute POSTs the program and consumes the event stream. A non-2xx status
// is fatal; once the stream is open, a dropped connection still yields the
// partial result (see ParseStream).
func (c *Client) Execute(ctx context.Context, req *ExecuteRequest) (*StreamResult, error) {
	body, err := json.Marshal(map[string]string{"programText": req.Program})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecuteFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecuteFailed, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(tokenHeader, c.token)

	q := httpReq.URL.Query()
	q.Set("start", strconv.FormatInt(req.StartMs, 10))
	q.Set("stop", strconv.FormatInt(req.StopMs, 10))
	q.Set("resolution", strconv.FormatInt(req.ResolutionMs, 10))
	q.Set("immediate", "true")
	httpReq.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecuteFailed, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, apiError(ErrExecuteFailed, resp)
	}

	result, err := ParseStream(NewReaderSource(resp.Body))
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrExecuteFailed, err)
	}

	return result, nil
}

// apiError folds a non-2xx response into a one-line diagnostic, pulling the
// backend's message field out of the body when it has one.
func apiError(sentinel error, resp *http.Response) error {
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

	return fmt.Errorf("%w: %s", sentinel, msg)
}
