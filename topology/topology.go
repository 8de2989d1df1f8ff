// Package topology decides which already-known cluster endpoints a fan-out
// command visits. It never discovers nodes; it only filters the snapshot the
// driver reports.
package topology

import (
	"fmt"
	"iter"
	"strings"

	"github.com/unkn0wn-root/clustercache/driver"
)

type Mode int

const (
	ModeAll Mode = iota
	ModeSingle
)

type Role int

const (
	RoleAny Role = iota
	RolePreferReplica
)

type Unreachable int

const (
	UnreachableThrow Unreachable = iota
	UnreachableSkipIfAlternativeExists
)

// Policy is immutable once built and safe to share across goroutines.
// The zero value is {ModeAll, RoleAny, UnreachableThrow}.
type Policy struct {
	Mode        Mode
	TargetRole  Role
	Unreachable Unreachable
}

// UnsupportedModeError reports an enumeration value outside its closed set.
type UnsupportedModeError struct {
	Kind  string // "mode", "role" or "unreachable"
	Value string
}

func (e *UnsupportedModeError) Error() string {
	return fmt.Sprintf("topology: unsupported %s %q", e.Kind, e.Value)
}

// Nodes returns the eligible endpoints as a lazy sequence. Each range over
// the result re-evaluates eps from the start; nothing is memoized.
func (p Policy) Nodes(eps []driver.Endpoint) (iter.Seq[driver.Endpoint], error) {
	if p.TargetRole != RoleAny && p.TargetRole != RolePreferReplica {
		return nil, &UnsupportedModeError{Kind: "role", Value: p.TargetRole.String()}
	}
	if p.Unreachable != UnreachableThrow && p.Unreachable != UnreachableSkipIfAlternativeExists {
		return nil, &UnsupportedModeError{Kind: "unreachable", Value: p.Unreachable.String()}
	}
	switch p.Mode {
	case ModeAll:
		return p.filtered(eps, -1), nil
	case ModeSingle:
		return p.filtered(eps, 1), nil
	default:
		return nil, &UnsupportedModeError{Kind: "mode", Value: p.Mode.String()}
	}
}

// Select is Nodes collected into a slice.
func (p Policy) Select(eps []driver.Endpoint) ([]driver.Endpoint, error) {
	seq, err := p.Nodes(eps)
	if err != nil {
		return nil, err
	}
	var out []driver.Endpoint
	for ep := range seq {
		out = append(out, ep)
	}
	return out, nil
}

func (p Policy) filtered(eps []driver.Endpoint, limit int) iter.Seq[driver.Endpoint] {
	return func(yield func(driver.Endpoint) bool) {
		n := 0
		for _, ep := range eps {
			if limit >= 0 && n >= limit {
				return
			}
			if !p.eligible(ep) {
				continue
			}
			n++
			if !yield(ep) {
				return
			}
		}
	}
}

// eligible applies the role filter before the reachability filter: a
// reachable node with the wrong role is still excluded.
func (p Policy) eligible(ep driver.Endpoint) bool {
	if p.TargetRole == RolePreferReplica && !ep.Replica {
		return false
	}
	if p.Unreachable == UnreachableSkipIfAlternativeExists && (!ep.Connected || !ep.Scan) {
		return false
	}
	return true
}

func (m Mode) String() string {
	switch m {
	case ModeAll:
		return "All"
	case ModeSingle:
		return "Single"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func (r Role) String() string {
	switch r {
	case RoleAny:
		return "Any"
	case RolePreferReplica:
		return "PreferReplica"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

func (u Unreachable) String() string {
	switch u {
	case UnreachableThrow:
		return "Throw"
	case UnreachableSkipIfAlternativeExists:
		return "SkipIfAlternativeExists"
	default:
		return fmt.Sprintf("Unreachable(%d)", int(u))
	}
}

// ParseMode accepts "All" or "Single" (case-insensitive). Empty => ModeAll.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return ModeAll, nil
	case "single":
		return ModeSingle, nil
	}
	return 0, &UnsupportedModeError{Kind: "mode", Value: s}
}

// ParseRole accepts "Any", "PreferReplica" and the legacy "PreferSlave".
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return RoleAny, nil
	case "preferreplica", "preferslave":
		return RolePreferReplica, nil
	}
	return 0, &UnsupportedModeError{Kind: "role", Value: s}
}

// ParseUnreachable accepts "Throw", "SkipIfAlternativeExists" and the legacy
// "IgnoreIfOtherAvailable".
func ParseUnreachable(s string) (Unreachable, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "throw":
		return UnreachableThrow, nil
	case "skipifalternativeexists", "ignoreifotheravailable":
		return UnreachableSkipIfAlternativeExists, nil
	}
	return 0, &UnsupportedModeError{Kind: "unreachable", Value: s}
}

// Parse builds a Policy from its three string settings.
func Parse(mode, role, unreachable string) (Policy, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return Policy{}, err
	}
	r, err := ParseRole(role)
	if err != nil {
		return Policy{}, err
	}
	u, err := ParseUnreachable(unreachable)
	if err != nil {
		return Policy{}, err
	}
	return Policy{Mode: m, TargetRole: r, Unreachable: u}, nil
}
