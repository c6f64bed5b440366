package opengl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameQueueRunsQueuedCallbacksOnce(t *testing.T) {
	q := &frameQueue{}
	assert.False(t, q.pending())

	var order []int
	q.RequestFrame(func() { order = append(order, 1) })
	q.RequestFrame(func() { order = append(order, 2) })
	assert.True(t, q.pending())

	q.run()
	assert.Equal(t, []int{1, 2}, order)
	assert.False(t, q.pending())

	q.run()
	assert.Equal(t, []int{1, 2}, order)
}

func TestFrameQueueDefersRequestsMadeWhileRunning(t *testing.T) {
	q := &frameQueue{}
	runs := 0
	var redraw func()
	redraw = func() {
		runs++
		if runs == 1 {
			q.RequestFrame(redraw)
		}
	}
	q.RequestFrame(redraw)

	q.run()
	assert.Equal(t, 1, runs)
	assert.True(t, q.pending(), "request made by a callback waits for the next iteration")

	q.run()
	assert.Equal(t, 2, runs)
	assert.False(t, q.pending())
}
