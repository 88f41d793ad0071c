// Package feed is a latest-value broadcast: subscribers receive the current
// value on subscribe and then only the newest value after each publish.
// Slow subscribers skip intermediate values instead of blocking publishers.
package feed

import "sync"

type Feed[T any] struct {
	mu     sync.Mutex
	latest T
	has    bool
	subs   map[int]chan T
	next   int
	closed bool
}

func New[T any]() *Feed[T] {
	return &Feed[T]{subs: make(map[int]chan T)}
}

// Publish replaces the latest value and offers it to every subscriber.
// Publishing to a closed feed is a no-op.
func (f *Feed[T]) Publish(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.latest, f.has = v, true
	for _, ch := range f.subs {
		offer(ch, v)
	}
}

// Latest returns the most recent value, if any.
func (f *Feed[T]) Latest() (T, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest, f.has
}

// Subscribe returns a channel of values and a cancel func. Cancel closes the
// channel and is safe to call more than once.
func (f *Feed[T]) Subscribe() (<-chan T, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan T, 1)
	if f.closed {
		close(ch)
		return ch, func() {}
	}
	if f.has {
		ch <- f.latest
	}
	id := f.next
	f.next++
	f.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if c, ok := f.subs[id]; ok {
				delete(f.subs, id)
				close(c)
			}
		})
	}
}

// Close ends every subscription.
func (f *Feed[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
}

// offer replaces any unread value in ch with v. Only Publish sends, under
// f.mu, so the buffer has room once it has been drained.
func offer[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
