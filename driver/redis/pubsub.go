package redis

import (
	"context"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/clustercache/driver"
)

type subscription struct {
	d       *Driver
	channel string
	ps      *goredis.PubSub
	once    sync.Once
	err     error
}

var _ driver.Subscription = (*subscription)(nil)

func (s *subscription) Channel() string { return s.channel }

func (s *subscription) Close() error {
	s.d.forget(s)
	s.once.Do(func() { s.err = s.ps.Close() })
	return s.err
}

func (d *Driver) Publish(ctx context.Context, channel string, message []byte) (int64, error) {
	return d.rdb.Publish(ctx, channel, message).Result()
}

// Subscribe waits for the server to confirm the subscription, then delivers
// payloads to handler on one goroutine per subscription.
func (d *Driver) Subscribe(ctx context.Context, channel string, handler func([]byte)) (driver.Subscription, error) {
	ps := d.rdb.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}
	s := &subscription{d: d, channel: channel, ps: ps}

	d.mu.Lock()
	d.subs[channel] = append(d.subs[channel], s)
	d.mu.Unlock()

	ch := ps.Channel()
	go func() {
		for m := range ch {
			handler([]byte(m.Payload))
		}
	}()
	return s, nil
}

func (d *Driver) Unsubscribe(_ context.Context, channel string) error {
	d.mu.Lock()
	subs := d.subs[channel]
	delete(d.subs, channel)
	d.mu.Unlock()
	return closeAll(subs)
}

func (d *Driver) UnsubscribeAll(_ context.Context) error {
	d.mu.Lock()
	var subs []*subscription
	for _, ss := range d.subs {
		subs = append(subs, ss...)
	}
	d.subs = make(map[string][]*subscription)
	d.mu.Unlock()
	return closeAll(subs)
}

func (d *Driver) forget(s *subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ss := d.subs[s.channel]
	for i, x := range ss {
		if x == s {
			d.subs[s.channel] = append(ss[:i:i], ss[i+1:]...)
			break
		}
	}
	if len(d.subs[s.channel]) == 0 {
		delete(d.subs, s.channel)
	}
}

func closeAll(subs []*subscription) error {
	var first error
	for _, s := range subs {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
