package eval

import (
	"sync"
	"time"

	"github.com/dstanley-scripts/datascript/internal/runtime"
)

// timerRegistry hands out monotonically increasing timer ids for `schedule`
// and owns the background goroutines `sleep`/`schedule` spawn. Environment
// is not goroutine-safe for concurrent writes, so invoke closures passed to
// Schedule must themselves be safe to run outside the evaluator's own
// goroutine (spec.md §5 leaves scheduling/timeout semantics to the native
// library; this registry is that implementation).
type timerRegistry struct {
	mu     sync.Mutex
	nextID int64
}

func newTimerRegistry() *timerRegistry {
	return &timerRegistry{}
}

func (t *timerRegistry) nextTimerID() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	return float64(t.nextID)
}

// Sleep returns a Promise that resolves to Null after d elapses (spec.md
// §4.8: "sleep(ms) returns a Promise that resolves to Null after ms ms").
func (t *timerRegistry) Sleep(d time.Duration) *runtime.Promise {
	p := runtime.NewPromise()
	go func() {
		time.Sleep(d)
		p.Resolve(runtime.Null{}, nil)
	}()
	return p
}

// Schedule runs invoke after d elapses and returns a numeric timer id
// (spec.md §4.8: "schedule(delay, callable, argsArray?) ... returns a
// numeric timer id"). invoke is responsible for reporting its own errors;
// Schedule never blocks the caller.
func (t *timerRegistry) Schedule(d time.Duration, invoke func()) float64 {
	id := t.nextTimerID()
	go func() {
		time.Sleep(d)
		invoke()
	}()
	return id
}
