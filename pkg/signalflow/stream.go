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

// Package signalflow parses the SignalFlow execute event stream and folds it
// into per-service metrics.
package signalflow

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

const (
	eventPrefix = "event:"
	dataPrefix  = "data:"
)

const (
	eventKindMetadata = "metadata"
	eventKindData     = "data"
)

// maxLineBytes bounds a single SSE line; metadata frames are split across
// many short data: lines, so this is generous.
const maxLineBytes = 1024 * 1024

// Parser reassembles server-sent-event lines into SignalFlow frames. It is a
// two-state machine: idle until an event: line names a kind, then
// accumulating data: chunks until the blank-line terminator flushes the
// frame. A frame whose payload fails to decode contributes nothing; the
// stream keeps going.
type Parser struct {
	acc    *accumulator
	kind   string
	buffer []string
}

func NewParser() *Parser {
	return &Parser{acc: newAccumulator()}
}

// Consume advances the state machine by one line.
func (p *Parser) Consume(line string) {
	switch {
	case line == "":
		p.flush()
		p.kind = ""
	case strings.HasPrefix(line, eventPrefix):
		if p.kind != "" {
			// the prior frame never saw its terminator; finalize it under
			// the kind it arrived with
			p.flush()
		} else {
			// chunks seen before any event kind belong to no frame
			p.buffer = p.buffer[:0]
		}

		p.kind = strings.TrimSpace(line[len(eventPrefix):])
	case strings.HasPrefix(line, dataPrefix):
		p.buffer = append(p.buffer, line[len(dataPrefix):])
	}
}

// flush joins the buffered chunks, decodes the payload and dispatches it by
// event kind. Kinds other than metadata and data are ignored.
func (p *Parser) flush() {
	if len(p.buffer) == 0 || p.kind == "" {
		return
	}

	raw := strings.Join(p.buffer, "\n")
	p.buffer = p.buffer[:0]

	switch p.kind {
	case eventKindMetadata:
		var md metadataPayload
		if err := json.Unmarshal([]byte(raw), &md); err != nil {
			return
		}

		p.acc.addMetadata(md)
	case eventKindData:
		var dp dataPayload
		if err := json.Unmarshal([]byte(raw), &dp); err != nil {
			return
		}

		p.acc.addData(dp)
	}
}

// Result flushes any pending frame and returns what has accumulated so far.
func (p *Parser) Result() *StreamResult {
	p.flush()
	return p.acc.result()
}

// ParseStream drains src through a fresh parser. When the transport drops
// mid-stream the partial result is still returned alongside the error, so
// the caller can aggregate whatever arrived before the connection closed.
func ParseStream(src LineSource) (*StreamResult, error) {
	p := NewParser()

	for {
		line, ok := src.Next()
		if !ok {
			break
		}

		p.Consume(line)
	}

	return p.Result(), src.Err()
}

type readerSource struct {
	scanner *bufio.Scanner
}

// NewReaderSource adapts an io.Reader (typically a streaming response body)
// into a LineSource. CRLF line endings are tolerated.
func NewReaderSource(r io.Reader) LineSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	return &readerSource{scanner: sc}
}

func (s *readerSource) Next() (string, bool) {
	if s.scanner.Scan() {
		return s.scanner.Text(), true
	}

	return "", false
}

func (s *readerSource) Err() error {
	return s.scanner.Err()
}

type sliceSource struct {
	lines []string
	pos   int
}

// NewSliceSource serves canned lines; handy for tests and replays.
func NewSliceSource(lines []string) LineSource {
	return &sliceSource{lines: lines}
}

func (s *sliceSource) Next() (string, bool) {
	if s.pos >= len(s.lines) {
		return "", false
	}

	line := s.lines[s.pos]
	s.pos++

	return line, true
}

func (s *sliceSource) Err() error {
	return nil
}
