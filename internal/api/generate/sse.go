package generate

import (
	"bufio"
	"encoding/json"
	"fmt"
)

// sseWriter frames server-sent events over a buffered stream body.
type sseWriter struct {
	w *bufio.Writer
}

func newSSEWriter(w *bufio.Writer) *sseWriter {
	return &sseWriter{w: w}
}

func (s *sseWriter) Write(event, data string) error {
	if event != "" {
		if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	return s.w.Flush()
}

// WriteDelta sends one text delta as a JSON payload so newlines survive
// SSE framing.
func (s *sseWriter) WriteDelta(delta string) error {
	payload, err := json.Marshal(map[string]string{"delta": delta})
	if err != nil {
		return err
	}
	return s.Write("", string(payload))
}

func (s *sseWriter) WriteError(message string) error {
	payload, _ := json.Marshal(map[string]string{"error": message})
	return s.Write("error", string(payload))
}

func (s *sseWriter) Close() error {
	return s.Write("", "[DONE]")
}
