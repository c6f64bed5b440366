package core

// FrameRequester is the host's "run before next repaint" primitive. The
// callback runs once, later, on the same thread that requested it.
type FrameRequester interface {
	RequestFrame(cb func())
}

// FrameRequesterFunc adapts a function to FrameRequester.
type FrameRequesterFunc func(cb func())

func (f FrameRequesterFunc) RequestFrame(cb func()) { f(cb) }

// DrawFunc renders one frame from the state current when it is called.
type DrawFunc func() error

// Scheduler issues at most one draw per pending request. Requests made
// before the pending callback fires are coalesced into that one frame. A
// draw never schedules another draw; rendering stays idle until the next
// RequestRedraw.
type Scheduler struct {
	requester FrameRequester
	draw      DrawFunc

	pending   bool
	frames    uint64
	dropped   uint64
	coalesced uint64
}

// NewScheduler binds a draw routine to a host frame requester.
func NewScheduler(requester FrameRequester, draw DrawFunc) *Scheduler {
	return &Scheduler{requester: requester, draw: draw}
}

// SetDraw replaces the draw routine. Used by hosts that finish creating
// their GPU resources after the viewer exists.
func (s *Scheduler) SetDraw(draw DrawFunc) {
	s.draw = draw
}

// RequestRedraw schedules one future frame unless one is already pending.
func (s *Scheduler) RequestRedraw() {
	if s.pending {
		s.coalesced++
		return
	}
	s.pending = true
	s.requester.RequestFrame(s.fire)
}

func (s *Scheduler) fire() {
	s.pending = false
	if s.draw == nil {
		return
	}
	if err := s.draw(); err != nil {
		s.dropped++
		Logger().Warn("frame skipped", "err", err, "dropped", s.dropped)
		return
	}
	s.frames++
}

// Pending reports whether a frame is scheduled but not yet drawn.
func (s *Scheduler) Pending() bool { return s.pending }

// Frames is the number of successfully drawn frames.
func (s *Scheduler) Frames() uint64 { return s.frames }

// Dropped is the number of frames whose draw returned an error.
func (s *Scheduler) Dropped() uint64 { return s.dropped }

// Coalesced is the number of requests folded into an already pending frame.
func (s *Scheduler) Coalesced() uint64 { return s.coalesced }
