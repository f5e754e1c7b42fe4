package streamer

import (
	"sync"

	"github.com/wudi/pubkit/pub"
)

// completion is a write-once result cell. However many times resolve is
// called, the callback is handed to the dispatcher at most once.
type completion struct {
	once       sync.Once
	dispatcher Dispatcher
	callback   func(*pub.Publication, error)
}

func newCompletion(d Dispatcher, callback func(*pub.Publication, error)) *completion {
	return &completion{dispatcher: d, callback: callback}
}

func (c *completion) resolve(p *pub.Publication, err error) {
	c.once.Do(func() {
		c.dispatcher.Dispatch(func() { c.callback(p, err) })
	})
}
