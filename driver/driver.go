// Package driver defines the capability surface clustercache consumes from a
// connected store driver. The facade never talks to the network itself: it
// asks the driver for endpoints, per-endpoint server handles and byte-level
// key/collection primitives.
//
// Implementations must be safe for concurrent use. Values are opaque []byte:
// the driver must not transcode them.
package driver

import (
	"context"
	"time"
)

// Endpoint is one cluster member as reported by the driver.
type Endpoint struct {
	Addr      string
	Replica   bool // false => primary
	Connected bool
	Scan      bool // server supports incremental key scanning
}

// SaveMode selects the persistence command issued by Server.Save.
type SaveMode int

const (
	SaveBackground SaveMode = iota // BGSAVE
	SaveForeground                 // SAVE
	SaveRewriteAOF                 // BGREWRITEAOF
)

func (m SaveMode) String() string {
	switch m {
	case SaveBackground:
		return "bgsave"
	case SaveForeground:
		return "save"
	case SaveRewriteAOF:
		return "bgrewriteaof"
	default:
		return "unknown"
	}
}

// PTTL replies for keys without a positive remaining lifetime.
const (
	NoExpiry   time.Duration = -1
	KeyMissing time.Duration = -2
)

// KV holds the single-key primitives plus the default-node INFO command.
type KV interface {
	// Get returns (value, true, nil) on hit and (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// MGet returns only the keys that were found.
	MGet(ctx context.Context, keys []string) (map[string][]byte, error)
	// Set writes value. ttl is handed over as-is; 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	MSet(ctx context.Context, items map[string][]byte) (bool, error)
	Del(ctx context.Context, key string) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	// PTTL returns the remaining lifetime, NoExpiry or KeyMissing.
	PTTL(ctx context.Context, key string) (time.Duration, error)
	// Info runs the introspection command on the default node.
	Info(ctx context.Context) (string, error)
}

type Hashes interface {
	HGet(ctx context.Context, key, field string) ([]byte, bool, error)
	// HMGet returns only the fields that exist.
	HMGet(ctx context.Context, key string, fields ...string) (map[string][]byte, error)
	HGetAll(ctx context.Context, key string) (map[string][]byte, error)
	HSet(ctx context.Context, key, field string, value []byte, nx bool) (bool, error)
	HSetMany(ctx context.Context, key string, values map[string][]byte) error
	HDel(ctx context.Context, key string, fields ...string) (int64, error)
	HExists(ctx context.Context, key, field string) (bool, error)
	HKeys(ctx context.Context, key string) ([]string, error)
	HVals(ctx context.Context, key string) ([][]byte, error)
	HLen(ctx context.Context, key string) (int64, error)
	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)
	HIncrByFloat(ctx context.Context, key, field string, delta float64) (float64, error)
	HScan(ctx context.Context, key, pattern string, pageSize int64) (map[string][]byte, error)
}

type Lists interface {
	LPush(ctx context.Context, key string, value []byte) (int64, error)
	// RPop returns (nil, false, nil) when the list is empty or missing.
	RPop(ctx context.Context, key string) ([]byte, bool, error)
}

type Sets interface {
	SAdd(ctx context.Context, key string, members ...[]byte) (int64, error)
	SRem(ctx context.Context, key string, members ...[]byte) (int64, error)
	SMembers(ctx context.Context, key string) ([][]byte, error)
}

// Subscription is a live channel registration.
type Subscription interface {
	Channel() string
	// Close stops delivery. Safe to call more than once.
	Close() error
}

type PubSub interface {
	// Publish returns the number of receivers notified.
	Publish(ctx context.Context, channel string, message []byte) (int64, error)
	// Subscribe registers handler; it runs on the driver's dispatch goroutine.
	Subscribe(ctx context.Context, channel string, handler func([]byte)) (Subscription, error)
	// Unsubscribe closes every subscription registered for channel.
	Unsubscribe(ctx context.Context, channel string) error
	UnsubscribeAll(ctx context.Context) error
}

// Server is a handle to one endpoint for commands that are not keyed.
type Server interface {
	Endpoint() Endpoint
	Keys(ctx context.Context, pattern string) ([]string, error)
	FlushDB(ctx context.Context) error
	Save(ctx context.Context, mode SaveMode) error
	Info(ctx context.Context) (string, error)
}

type Cluster interface {
	// Endpoints returns a fresh snapshot in driver order.
	Endpoints(ctx context.Context) ([]Endpoint, error)
	Server(ctx context.Context, ep Endpoint) (Server, error)
}

// Driver is the full surface. Close releases the connection.
type Driver interface {
	KV
	Hashes
	Lists
	Sets
	PubSub
	Cluster
	Close(ctx context.Context) error
}
