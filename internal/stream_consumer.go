package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
)

const streamReadSize = 32 * 1024

// EventHandler observes decoded events; dec holds the transcript so far
type EventHandler func(ev Event, dec *StreamDecoder)

// ConsumeStream reads r to the end, feeding every chunk through a
// StreamDecoder and calling onEvent for each event in arrival order.
//
// Cancelling ctx stops consumption before the next chunk or event is applied
// and returns an error matching ErrAborted. Read failures are returned as
// *TransportError. When r is an io.Closer it is closed on cancellation so a
// blocked read returns.
func ConsumeStream(ctx context.Context, r io.Reader, onEvent EventHandler) (*StreamDecoder, error) {
	dec := NewStreamDecoder()
	if c, ok := r.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() { _ = c.Close() })
		defer stop()
	}

	frames := GetMetrics().StreamFramesTotal
	buf := make([]byte, streamReadSize)
	for {
		if err := ctx.Err(); err != nil {
			return dec, abortError(ctx)
		}
		n, readErr := r.Read(buf)
		if n > 0 {
			for _, ev := range dec.Write(buf[:n]) {
				if ctx.Err() != nil {
					return dec, abortError(ctx)
				}
				frames.WithLabelValues(ev.Kind.String()).Inc()
				if onEvent != nil {
					onEvent(ev, dec)
				}
			}
		}
		if readErr == nil {
			continue
		}
		if ctx.Err() != nil {
			return dec, abortError(ctx)
		}
		if errors.Is(readErr, io.EOF) {
			if dropped := dec.Finish(); dropped > 0 {
				LogDebug("Discarded %d bytes of unterminated frame at end of stream", dropped)
			}
			return dec, nil
		}
		return dec, &TransportError{Op: "read", Err: readErr}
	}
}

func abortError(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrAborted, context.Cause(ctx))
}
