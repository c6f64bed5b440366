package core

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDisplay queues single-shot callbacks the way a display refresh
// primitive does and runs them on demand.
type fakeDisplay struct {
	queue    []func()
	requests int
}

func (d *fakeDisplay) RequestFrame(cb func()) {
	d.requests++
	d.queue = append(d.queue, cb)
}

// refresh fires every callback queued before it was called.
func (d *fakeDisplay) refresh() int {
	q := d.queue
	d.queue = nil
	for _, cb := range q {
		cb()
	}
	return len(q)
}

func TestSchedulerCoalescesRequests(t *testing.T) {
	display := &fakeDisplay{}
	draws := 0
	s := NewScheduler(display, func() error {
		draws++
		return nil
	})

	for i := 0; i < 10; i++ {
		s.RequestRedraw()
	}
	assert.True(t, s.Pending())
	assert.Equal(t, 1, display.requests)
	assert.Equal(t, uint64(9), s.Coalesced())

	assert.Equal(t, 1, display.refresh())
	assert.Equal(t, 1, draws)
	assert.Equal(t, uint64(1), s.Frames())
	assert.False(t, s.Pending())
}

func TestSchedulerIdleWithoutRequests(t *testing.T) {
	display := &fakeDisplay{}
	draws := 0
	s := NewScheduler(display, func() error {
		draws++
		return nil
	})
	s.RequestRedraw()
	display.refresh()

	// The draw does not re-request itself.
	for i := 0; i < 5; i++ {
		assert.Zero(t, display.refresh())
	}
	assert.Equal(t, 1, draws)

	s.RequestRedraw()
	display.refresh()
	assert.Equal(t, 2, draws)
}

func TestSchedulerUsesStateAtFireTime(t *testing.T) {
	display := &fakeDisplay{}
	value := 0
	var drawn []int
	s := NewScheduler(display, func() error {
		drawn = append(drawn, value)
		return nil
	})
	for value = 1; value <= 3; value++ {
		s.RequestRedraw()
	}
	value = 42
	display.refresh()
	assert.Equal(t, []int{42}, drawn)
}

func TestSchedulerRequestDuringDraw(t *testing.T) {
	display := &fakeDisplay{}
	var s *Scheduler
	draws := 0
	s = NewScheduler(display, func() error {
		draws++
		if draws == 1 {
			// State changed while drawing: a new frame must be scheduled.
			s.RequestRedraw()
		}
		return nil
	})
	s.RequestRedraw()
	display.refresh()
	assert.True(t, s.Pending())
	display.refresh()
	assert.Equal(t, 2, draws)
	assert.False(t, s.Pending())
}

func TestSchedulerSkipsFailedFrame(t *testing.T) {
	var buf bytes.Buffer
	orig := Logger()
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { SetLogger(orig) })

	display := &fakeDisplay{}
	fail := true
	s := NewScheduler(display, func() error {
		if fail {
			return errors.New("draw failed")
		}
		return nil
	})
	s.RequestRedraw()
	display.refresh()
	assert.Equal(t, uint64(1), s.Dropped())
	assert.Zero(t, s.Frames())
	assert.False(t, s.Pending())
	assert.True(t, strings.Contains(buf.String(), "frame skipped"), buf.String())

	// The next input-driven request recovers.
	fail = false
	s.RequestRedraw()
	display.refresh()
	assert.Equal(t, uint64(1), s.Frames())
}

func TestSchedulerNilDraw(t *testing.T) {
	display := &fakeDisplay{}
	s := NewScheduler(display, nil)
	s.RequestRedraw()
	require.NotPanics(t, func() { display.refresh() })
	assert.Zero(t, s.Frames())
}

func TestFrameRequesterFunc(t *testing.T) {
	called := false
	var r FrameRequester = FrameRequesterFunc(func(cb func()) { cb() })
	r.RequestFrame(func() { called = true })
	assert.True(t, called)
}

func TestLoggerDefaultSilent(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })
	SetLogger(nil)
	assert.NotNil(t, Logger())
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}
