package generate

import (
	"context"
	"fmt"
)

// Stream is a lazy, finite, single-pass sequence of text deltas in strict
// arrival order. It cannot be restarted; a caller that stops consuming
// simply discards it. A backend error mid-stream ends the sequence and is
// reported by Err; deltas already delivered are not retracted.
type Stream struct {
	src    DeltaSource
	cancel context.CancelFunc
	cur    string
	err    error
	done   bool
}

func newStream(src DeltaSource, cancel context.CancelFunc) *Stream {
	return &Stream{src: src, cancel: cancel}
}

// Next advances to the next delta. It returns false once the stream is
// exhausted or failed; exhaustion with a nil Err signals completion.
func (s *Stream) Next() bool {
	if s.done {
		return false
	}
	if s.src.Next() {
		s.cur = s.src.Current()
		return true
	}
	s.done = true
	if err := s.src.Err(); err != nil {
		s.err = fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if s.cancel != nil {
		s.cancel()
	}
	return false
}

// Current returns the delta Next moved to.
func (s *Stream) Current() string { return s.cur }

// Err returns the terminal error, if any.
func (s *Stream) Err() error { return s.err }

// Close releases the underlying exchange early. Safe to call at any point.
func (s *Stream) Close() {
	s.done = true
	if s.cancel != nil {
		s.cancel()
	}
}
