package sim

// FrameID identifies a requested frame callback. Zero means none.
type FrameID uint64

// FrameScheduler is the host's display-refresh primitive: a callback
// requested now runs once on the next frame unless cancelled first.
type FrameScheduler interface {
	RequestFrame(fn func()) FrameID
	CancelFrame(id FrameID)
}

type frameRequest struct {
	id FrameID
	fn func()
}

// ManualScheduler queues frame callbacks until the host calls Pump. The
// viewer pumps it from its tick message, the runner from a ticker.
type ManualScheduler struct {
	next  FrameID
	queue []frameRequest
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) RequestFrame(fn func()) FrameID {
	s.next++
	s.queue = append(s.queue, frameRequest{id: s.next, fn: fn})
	return s.next
}

func (s *ManualScheduler) CancelFrame(id FrameID) {
	for i, req := range s.queue {
		if req.id == id {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return
		}
	}
}

// Pump runs every callback queued before the call. Callbacks requested while
// pumping wait for the next Pump.
func (s *ManualScheduler) Pump() int {
	batch := s.queue
	s.queue = nil
	for _, req := range batch {
		req.fn()
	}
	return len(batch)
}

func (s *ManualScheduler) Pending() int { return len(s.queue) }
