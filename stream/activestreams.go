package stream

import (
	"sync/atomic"
	"time"
)

// activeStreams is the process-wide count of in-flight stream generators
// (spec.md §5, P4). It is incremented once per stream at generator start
// and decremented exactly once at finalization, regardless of how the
// stream ends (client disconnect, upstream EOF, or error).
var activeStreams int64

// DrainHook, when non-nil, is invoked roughly 100ms after activeStreams
// returns to zero. It is a no-op extension point in this build — nothing
// in spec.md currently consumes it — kept so a future drain-triggered
// action (e.g. config reload) has somewhere to attach.
var DrainHook func()

const drainHookDelay = 100 * time.Millisecond

// ActiveStreams returns the current number of in-flight streams.
func ActiveStreams() int64 {
	return atomic.LoadInt64(&activeStreams)
}

// beginStream increments the active-stream counter and returns the
// decrement function to defer.
func beginStream() func() {
	atomic.AddInt64(&activeStreams, 1)
	return endStream
}

func endStream() {
	if atomic.AddInt64(&activeStreams, -1) == 0 {
		if DrainHook != nil {
			time.AfterFunc(drainHookDelay, func() {
				if atomic.LoadInt64(&activeStreams) == 0 && DrainHook != nil {
					DrainHook()
				}
			})
		}
	}
}
