// Package prometheus counts clustercache events with client_golang
// counters. Register the collectors once per registry:
//
//	h := prometheus.New("myapp")
//	if err := h.Register(prom.DefaultRegisterer); err != nil { ... }
//	c, _ := clustercache.New(clustercache.Options{Driver: drv, Hooks: h})
package prometheus

import (
	"errors"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/clustercache"
)

type Hooks struct {
	fanOut       *prom.CounterVec
	fanOutNodes  *prom.CounterVec
	nodeErrors   *prom.CounterVec
	noEligible   *prom.CounterVec
	near         *prom.CounterVec
	decodeErrors *prom.CounterVec
}

var _ clustercache.Hooks = (*Hooks)(nil)

// New builds unregistered counters under namespace_clustercache_*.
func New(namespace string) *Hooks {
	counter := func(name, help string, labels ...string) *prom.CounterVec {
		return prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Subsystem: "clustercache",
			Name:      name,
			Help:      help,
		}, labels)
	}
	return &Hooks{
		fanOut:       counter("fanout_total", "Fan-out commands completed.", "cmd"),
		fanOutNodes:  counter("fanout_nodes_total", "Nodes visited by fan-out commands.", "cmd"),
		nodeErrors:   counter("node_errors_total", "Per-node failures that aborted a fan-out.", "cmd"),
		noEligible:   counter("no_eligible_server_total", "Fan-out commands with no eligible node.", "cmd"),
		near:         counter("near_cache_total", "Near-cache lookups and rejected writes.", "result"),
		decodeErrors: counter("decode_errors_total", "Payloads that failed to decode.", "source"),
	}
}

func (h *Hooks) Collectors() []prom.Collector {
	return []prom.Collector{h.fanOut, h.fanOutNodes, h.nodeErrors, h.noEligible, h.near, h.decodeErrors}
}

// Register adds every collector to r. A collector that is already
// registered is not an error.
func (h *Hooks) Register(r prom.Registerer) error {
	for _, c := range h.Collectors() {
		if err := r.Register(c); err != nil {
			var are prom.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

func (h *Hooks) FanOut(cmd string, nodes int) {
	h.fanOut.WithLabelValues(cmd).Inc()
	h.fanOutNodes.WithLabelValues(cmd).Add(float64(nodes))
}

// The node address is left out of the labels to keep cardinality bounded.
func (h *Hooks) NodeError(cmd, _ string, _ error) { h.nodeErrors.WithLabelValues(cmd).Inc() }

func (h *Hooks) NoEligibleServer(cmd string) { h.noEligible.WithLabelValues(cmd).Inc() }
func (h *Hooks) NearCacheHit(string)         { h.near.WithLabelValues("hit").Inc() }
func (h *Hooks) NearCacheMiss(string)        { h.near.WithLabelValues("miss").Inc() }
func (h *Hooks) NearCacheSetRejected(string) { h.near.WithLabelValues("set_rejected").Inc() }
func (h *Hooks) DecodeError(string, error)   { h.decodeErrors.WithLabelValues("value").Inc() }
func (h *Hooks) MessageDecodeError(string, error) {
	h.decodeErrors.WithLabelValues("message").Inc()
}
