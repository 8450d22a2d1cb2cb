package input

import (
	"sort"
	"sync"
	"time"

	appinput "github.com/osa030/buttonbox/internal/app/input"
)

// Step holds one button low from At until At+Hold, relative to the first sample.
type Step struct {
	At     time.Duration
	Button appinput.Button
	Hold   time.Duration
}

// Script replays a fixed sequence of presses.
type Script struct {
	steps     []Step
	end       time.Duration
	exitAfter time.Duration

	mu    sync.Mutex
	start time.Time

	done     chan struct{}
	doneOnce sync.Once
}

// NewScript creates a script source. When exitAfter is positive the source
// requests shutdown that long after the last step is released.
func NewScript(steps []Step, exitAfter time.Duration) *Script {
	sorted := make([]Step, len(steps))
	copy(sorted, steps)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At < sorted[j].At })

	var end time.Duration
	for _, st := range sorted {
		if e := st.At + st.Hold; e > end {
			end = e
		}
	}

	return &Script{
		steps:     sorted,
		end:       end,
		exitAfter: exitAfter,
		done:      make(chan struct{}),
	}
}

// Levels implements appinput.Source.
func (s *Script) Levels(now time.Time) appinput.Levels {
	s.mu.Lock()
	if s.start.IsZero() {
		s.start = now
	}
	elapsed := now.Sub(s.start)
	s.mu.Unlock()

	levels := appinput.Released()
	for _, st := range s.steps {
		if elapsed >= st.At && elapsed < st.At+st.Hold {
			levels[st.Button] = appinput.Low
		}
	}

	if s.exitAfter > 0 && elapsed >= s.end+s.exitAfter {
		s.doneOnce.Do(func() { close(s.done) })
	}
	return levels
}

// End returns the time the last step is released.
func (s *Script) End() time.Duration {
	return s.end
}

// Done is closed once the script has finished and exitAfter elapsed.
func (s *Script) Done() <-chan struct{} {
	return s.done
}

// Close implements Source.
func (s *Script) Close() error {
	return nil
}
