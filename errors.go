package clustercache

import (
	"errors"
	"fmt"
)

var (
	// ErrNoEligibleServer: the topology policy left no node for a fan-out
	// command that needs at least one.
	ErrNoEligibleServer = errors.New("clustercache: no eligible server for command")

	// ErrAdminDisabled: FlushDb/Save were called on a client built without
	// AllowAdmin.
	ErrAdminDisabled = errors.New("clustercache: admin commands are disabled (set AllowAdmin)")
)

// InvalidKeyError rejects an empty key before any I/O.
// Param names the offending argument: "key", "keys", "field" or "channel".
type InvalidKeyError struct {
	Param string
	Index int // position within a bulk argument; -1 when not applicable
}

func (e *InvalidKeyError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("clustercache: %s[%d] must be non-empty", e.Param, e.Index)
	}
	return fmt.Sprintf("clustercache: %s must be non-empty", e.Param)
}

// InvalidItemError rejects a nil item, a nil bulk collection, or a nil element
// inside a bulk collection, before any I/O.
type InvalidItemError struct {
	Param string // "item" or "items"
	Index int    // element position for slices; -1 otherwise
	Key   string // element key for maps
}

func (e *InvalidItemError) Error() string {
	switch {
	case e.Key != "":
		return fmt.Sprintf("clustercache: %s[%q] must not be nil", e.Param, e.Key)
	case e.Index >= 0:
		return fmt.Sprintf("clustercache: %s[%d] must not be nil", e.Param, e.Index)
	default:
		return fmt.Sprintf("clustercache: %s must not be nil", e.Param)
	}
}

// NodeError wraps the first per-node failure of a fan-out command. Nodes
// after Addr were not contacted.
type NodeError struct {
	Cmd  string
	Addr string
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("clustercache: %s on %s: %v", e.Cmd, e.Addr, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }
