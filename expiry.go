package clustercache

import "time"

// Expiry is either an absolute deadline or a relative duration. The zero
// value means no expiry.
//
// An absolute deadline becomes a relative TTL at the moment of the write.
// The result is handed to the driver unchanged even when it is zero or
// negative.
type Expiry struct {
	at  time.Time
	in  time.Duration
	abs bool
}

func ExpireAt(t time.Time) Expiry     { return Expiry{at: t, abs: true} }
func ExpireIn(d time.Duration) Expiry { return Expiry{in: d} }

// TTL resolves e against now.
func (e Expiry) TTL(now time.Time) time.Duration {
	if e.abs {
		return e.at.Sub(now)
	}
	return e.in
}

func (e Expiry) IsZero() bool { return !e.abs && e.in == 0 }
