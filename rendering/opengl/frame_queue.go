package opengl

// frameQueue is the GLFW host's "run before next repaint" primitive. The
// render loop blocks in glfw.WaitEvents while it is empty and runs the
// queued callbacks once per loop iteration, right before buffers swap.
type frameQueue struct {
	callbacks []func()
}

// RequestFrame queues cb for the next loop iteration.
func (q *frameQueue) RequestFrame(cb func()) {
	q.callbacks = append(q.callbacks, cb)
}

func (q *frameQueue) pending() bool {
	return len(q.callbacks) > 0
}

// run fires the callbacks queued before the call. Callbacks requested while
// running wait for the next iteration.
func (q *frameQueue) run() {
	cbs := q.callbacks
	q.callbacks = nil
	for _, cb := range cbs {
		cb()
	}
}
