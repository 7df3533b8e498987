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
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// TraceLatest returns the most recent segment of a trace.
func (c *Client) TraceLatest(ctx context.Context, traceID string, format Format) ([]byte, error) {
	return c.trace(ctx, c.traceURL(traceID, "latest"), format)
}

// TraceSegments lists the segment timestamps recorded for a trace.
func (c *Client) TraceSegments(ctx context.Context, traceID string, format Format) ([]byte, error) {
	return c.trace(ctx, c.traceURL(traceID, "segments"), format)
}

// TraceSegmentAt returns the segment captured at an exact timestamp
// (microseconds since epoch, as reported by TraceSegments).
func (c *Client) TraceSegmentAt(ctx context.Context, traceID string, timestampMicros int64, format Format) ([]byte, error) {
	return c.trace(ctx, c.traceURL(traceID, strconv.FormatInt(timestampMicros, 10)), format)
}

func (c *Client) traceURL(traceID, suffix string) string {
	return c.baseURL + "/apm/trace/" + url.PathEscape(traceID) + "/" + suffix
}

// trace performs one GET against a trace endpoint. 404 and 429 get their own
// diagnostics; 429 carries the server's Retry-After but is never retried
// here.
func (c *Client) trace(ctx context.Context, endpoint string, format Format) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	req.Header.Set("Accept", format.accept())
	req.Header.Set(tokenHeader, c.token)

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, ErrTraceNotFound
	case http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		if retryAfter == "" {
			retryAfter = "unknown"
		}

		return nil, fmt.Errorf("%w: retry after %s seconds", ErrRateLimited, retryAfter)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, c.apiError(resp)
	}

	return io.ReadAll(resp.Body)
}
