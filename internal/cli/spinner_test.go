package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/wiretidy/pkg/beautify"
	"github.com/matzehuels/wiretidy/pkg/circuit"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDraws(t *testing.T) {
	var out syncBuffer
	s := newSpinnerWithContext(context.Background(), &out, "Testing...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !bytes.Contains([]byte(out.String()), []byte("Testing...")) {
		t.Errorf("spinner output = %q", out.String())
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerWithContext(ctx, &syncBuffer{}, "Testing with context...")
	s.Start()
	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), &syncBuffer{}, "Testing idempotent stop...")
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerTracer(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), &syncBuffer{}, "start")
	tr := spinnerTracer{s: s}

	tests := []struct {
		ev   beautify.PassEvent
		want string
	}{
		{beautify.PassEvent{Stage: beautify.StageSeparate, Orientation: circuit.Vertical, Round: 2}, "Separated vertical lines (round 2)..."},
		{beautify.PassEvent{Stage: beautify.StageNudge, Orientation: circuit.Horizontal}, "Nudged horizontal lines..."},
		{beautify.PassEvent{Stage: beautify.StageCorners, Moves: 3}, "Removed 3 corners..."},
		{beautify.PassEvent{Stage: beautify.StageSpikes}, "Removing spikes..."},
	}
	for _, tt := range tests {
		t.Run(string(tt.ev.Stage), func(t *testing.T) {
			tr.PassDone(tt.ev)
			if got := s.Message(); got != tt.want {
				t.Errorf("message = %q, want %q", got, tt.want)
			}
		})
	}
}
