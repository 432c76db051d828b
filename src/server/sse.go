package server

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/villaops/villaops/src/stream"
)

// sseSink writes events to the response as server-sent events, flushing
// after each one so tokens reach the client as they are generated.
type sseSink struct {
	mu   sync.Mutex
	resp *echo.Response
}

var _ stream.Sink = (*sseSink)(nil)

func newSSESink(resp *echo.Response) *sseSink {
	return &sseSink{resp: resp}
}

func (s *sseSink) Send(event stream.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.resp, "data: %s\n\n", data); err != nil {
		return err
	}
	s.resp.Flush()
	return nil
}

func (s *sseSink) Close() error {
	return nil
}
