package llm

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/villaops/villaops/src/aisdk"
)

// sseStream reads server-sent-event chunks from a streaming chat completion
// response body.
type sseStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner

	mu     sync.Mutex
	closed bool
}

var _ aisdk.StreamInterface = (*sseStream)(nil)

func newSSEStream(body io.ReadCloser) *sseStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &sseStream{
		body:    body,
		scanner: scanner,
	}
}

// Read returns the next chunk, io.EOF at the "[DONE]" sentinel or end of body.
func (s *sseStream) Read() (*aisdk.StreamChunk, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrStreamClosed
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "[DONE]" {
			return nil, io.EOF
		}

		var chunk aisdk.StreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return nil, fmt.Errorf("failed to decode stream chunk: %w", err)
		}
		return &chunk, nil
	}

	if err := s.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Close closes the underlying response body.
func (s *sseStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
