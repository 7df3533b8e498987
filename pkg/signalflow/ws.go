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
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
)

const (
	wsURLFormat = "wss://stream.%s.signalfx.com/v2/signalflow/connect"
	wsChannel   = "channel-1"
)

// Message types on the SignalFlow websocket.
const (
	msgAuthenticate  = "authenticate"
	msgAuthenticated = "authenticated"
	msgExecute       = "execute"
	msgMetadata      = "metadata"
	msgData          = "data"
	msgControl       = "control-message"
	msgError         = "error"
)

// Control events that end a channel.
const (
	controlEndOfChannel = "END_OF_CHANNEL"
	controlChannelAbort = "CHANNEL_ABORT"
)

// wsEnvelope is the union of the JSON message shapes the backend sends;
// fields not relevant to a given type stay zero.
type wsEnvelope struct {
	Type               string          `json:"type"`
	Event              string          `json:"event"`
	Channel            string          `json:"channel"`
	Message            string          `json:"message"`
	TsID               string          `json:"tsId"`
	Properties         json.RawMessage `json:"properties"`
	LogicalTimestampMs int64           `json:"logicalTimestampMs"`
	Data               json.RawMessage `json:"data"`
}

type wsExecuteMessage struct {
	Type       string `json:"type"`
	Channel    string `json:"channel"`
	Program    string `json:"program"`
	Start      int64  `json:"start"`
	Stop       int64  `json:"stop"`
	Resolution int64  `json:"resolution"`
	Immediate  bool   `json:"immediate"`
}

// WSClient executes SignalFlow programs over the websocket connect endpoint.
// It speaks the JSON message framing only; binary-format data is never
// requested, so binary messages are skipped.
type WSClient struct {
	dialer *websocket.Dialer
	url    string
	token  string
}

// NewWSClient builds a websocket client for a realm. A nil dialer installs
// websocket.DefaultDialer.
func NewWSClient(token, realm string, dialer *websocket.Dialer) *WSClient {
	return newWSClient(token, fmt.Sprintf(wsURLFormat, realm), dialer)
}

func newWSClient(token, url string, dialer *websocket.Dialer) *WSClient {
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	return &WSClient{
		dialer: dialer,
		url:    url,
		token:  token,
	}
}

// Execute authenticates, submits the program and consumes messages until the
// channel ends. Like the SSE path, a connection dropped mid-stream returns
// the accumulated partial result alongside the error; malformed messages are
// skipped.
func (c *WSClient) Execute(ctx context.Context, req *ExecuteRequest) (*StreamResult, error) {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecuteFailed, err)
	}

	defer func() {
		_ = conn.Close()
	}()

	if deadline, ok := ctx.Deadline(); ok {
		if err = conn.SetReadDeadline(deadline); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExecuteFailed, err)
		}
	}

	auth := map[string]string{"type": msgAuthenticate, "token": c.token}
	if err = conn.WriteJSON(auth); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthenticateFailed, err)
	}

	acc := newAccumulator()
	authenticated := false

	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return acc.result(), nil
			}

			return acc.result(), fmt.Errorf("%w: %w", ErrExecuteFailed, err)
		}

		if msgType != websocket.TextMessage {
			continue
		}

		var env wsEnvelope
		if err := json.Unmarshal(payload, &env); err != nil {
			continue
		}

		switch env.Type {
		case msgAuthenticated:
			authenticated = true

			exec := wsExecuteMessage{
				Type:       msgExecute,
				Channel:    wsChannel,
				Program:    req.Program,
				Start:      req.StartMs,
				Stop:       req.StopMs,
				Resolution: req.ResolutionMs,
				Immediate:  true,
			}
			if err := conn.WriteJSON(exec); err != nil {
				return acc.result(), fmt.Errorf("%w: %w", ErrExecuteFailed, err)
			}
		case msgMetadata:
			md := metadataPayload{TsID: env.TsID}
			if env.Properties != nil {
				// property decode failures degrade to empty identity, same
				// as a metadata frame with missing fields
				_ = json.Unmarshal(env.Properties, &md.Properties)
			}

			acc.addMetadata(md)
		case msgData:
			var entries []dataEntry
			if env.Data != nil {
				if err := json.Unmarshal(env.Data, &entries); err != nil {
					continue
				}
			}

			acc.addData(dataPayload{
				LogicalTimestampMs: env.LogicalTimestampMs,
				Data:               entries,
			})
		case msgControl:
			switch env.Event {
			case controlEndOfChannel:
				return acc.result(), nil
			case controlChannelAbort:
				return acc.result(), fmt.Errorf("%w: %s", ErrChannelAborted, env.Message)
			}
		case msgError:
			if !authenticated {
				return nil, fmt.Errorf("%w: %s", ErrAuthenticateFailed, env.Message)
			}

			return acc.result(), fmt.Errorf("%w: %s", ErrExecuteFailed, env.Message)
		}
	}
}
