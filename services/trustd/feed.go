package trustd

import (
	"sync"

	"kleotrust/native/reputation"
)

// feedBuffer is the number of batches queued per subscriber before further
// batches are dropped for that subscriber.
const feedBuffer = 32

// feed fans ingested batches out to stream subscribers. Publishing never
// blocks: a subscriber whose buffer is full misses the batch and is counted
// as lagging.
type feed struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscriber
}

type subscriber struct {
	ch      chan []reputation.TrustEvent
	dropped int
}

func newFeed() *feed {
	return &feed{subs: make(map[int]*subscriber)}
}

func (f *feed) subscribe() (<-chan []reputation.TrustEvent, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	sub := &subscriber{ch: make(chan []reputation.TrustEvent, feedBuffer)}
	f.subs[id] = sub
	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
			close(sub.ch)
		})
	}
}

func (f *feed) publish(batch []reputation.TrustEvent) {
	if len(batch) == 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs {
		out := make([]reputation.TrustEvent, len(batch))
		copy(out, batch)
		select {
		case sub.ch <- out:
		default:
			sub.dropped++
		}
	}
}

func (f *feed) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
