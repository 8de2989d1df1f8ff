package memory

import (
	"context"
	"sync"

	"github.com/unkn0wn-root/clustercache/driver"
)

const maxPendingMessages = 1024

var _ driver.PubSub = (*Driver)(nil)

type hub struct {
	mu   sync.Mutex
	subs map[string]map[*subscription]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[*subscription]struct{})}
}

// subscription delivers messages on its own goroutine, in publish order.
type subscription struct {
	h       *hub
	channel string
	msgs    chan []byte
	done    chan struct{}
	once    sync.Once
}

var _ driver.Subscription = (*subscription)(nil)

func (s *subscription) Channel() string { return s.channel }

func (s *subscription) Close() error {
	s.h.remove(s)
	return nil
}

func (s *subscription) loop(handler func([]byte)) {
	for {
		select {
		case <-s.done:
			return
		case m := <-s.msgs:
			handler(m)
		}
	}
}

func (h *hub) add(s *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[s.channel]
	if !ok {
		set = make(map[*subscription]struct{})
		h.subs[s.channel] = set
	}
	set[s] = struct{}{}
}

func (h *hub) remove(s *subscription) {
	h.mu.Lock()
	if set, ok := h.subs[s.channel]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.channel)
		}
	}
	h.mu.Unlock()
	s.once.Do(func() { close(s.done) })
}

func (h *hub) snapshot(channel string) []*subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*subscription, 0, len(h.subs[channel]))
	for s := range h.subs[channel] {
		out = append(out, s)
	}
	return out
}

func (h *hub) closeChannel(channel string) {
	for _, s := range h.snapshot(channel) {
		s.h.remove(s)
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	chans := make([]string, 0, len(h.subs))
	for c := range h.subs {
		chans = append(chans, c)
	}
	h.mu.Unlock()
	for _, c := range chans {
		h.closeChannel(c)
	}
}

func (d *Driver) Publish(ctx context.Context, channel string, message []byte) (int64, error) {
	if err := d.enter(); err != nil {
		return 0, err
	}
	var n int64
	for _, s := range d.hub.snapshot(channel) {
		select {
		case s.msgs <- clone(message):
			n++
		case <-s.done:
		case <-ctx.Done():
			return n, ctx.Err()
		}
	}
	return n, nil
}

func (d *Driver) Subscribe(_ context.Context, channel string, handler func([]byte)) (driver.Subscription, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	s := &subscription{
		h:       d.hub,
		channel: channel,
		msgs:    make(chan []byte, maxPendingMessages),
		done:    make(chan struct{}),
	}
	d.hub.add(s)
	go s.loop(handler)
	return s, nil
}

func (d *Driver) Unsubscribe(_ context.Context, channel string) error {
	if err := d.enter(); err != nil {
		return err
	}
	d.hub.closeChannel(channel)
	return nil
}

func (d *Driver) UnsubscribeAll(_ context.Context) error {
	if err := d.enter(); err != nil {
		return err
	}
	d.hub.closeAll()
	return nil
}
