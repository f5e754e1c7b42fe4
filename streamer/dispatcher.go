package streamer

// Dispatcher runs completion callbacks on the caller's delivery context.
// Implementations decide where the function executes; the streamer only
// guarantees it hands each completion over exactly once.
type Dispatcher interface {
	Dispatch(fn func())
}

type DispatcherFunc func(fn func())

func (d DispatcherFunc) Dispatch(fn func()) { d(fn) }

// InlineDispatcher runs completions directly on the goroutine that produced
// the result. The default when no dispatcher is configured.
func InlineDispatcher() Dispatcher {
	return DispatcherFunc(func(fn func()) { fn() })
}

// SerialDispatcher runs every dispatched function on a single dedicated
// goroutine, in dispatch order. It stands in for a UI or event-loop thread.
type SerialDispatcher struct {
	jobs chan func()
	done chan struct{}
}

func NewSerialDispatcher() *SerialDispatcher {
	d := &SerialDispatcher{
		jobs: make(chan func(), 16),
		done: make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *SerialDispatcher) run() {
	defer close(d.done)
	for fn := range d.jobs {
		fn()
	}
}

func (d *SerialDispatcher) Dispatch(fn func()) { d.jobs <- fn }

// Close stops the dispatcher after draining pending work. Dispatch must not
// be called after Close.
func (d *SerialDispatcher) Close() {
	close(d.jobs)
	<-d.done
}
