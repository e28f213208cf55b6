// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package storage

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	arenaBlocksDesc = prometheus.NewDesc(
		"jdom_arena_blocks",
		"The number of blocks held by a document arena.",
		[]string{"arena"}, nil,
	)
	arenaReservedDesc = prometheus.NewDesc(
		"jdom_arena_reserved_bytes",
		"The total size in bytes of the blocks held by a document arena.",
		[]string{"arena"}, nil,
	)
)

// Collector is a prometheus.Collector that reports the Stats of a set of
// named Monotonic arenas. It is safe for concurrent use.
type Collector struct {
	mu     sync.Mutex
	arenas map[string]*Monotonic
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{arenas: make(map[string]*Monotonic)}
}

// Track adds m to the collector under the given name, replacing any arena
// previously tracked with that name.
func (c *Collector) Track(name string, m *Monotonic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.arenas[name] = m
}

// Untrack removes the arena with the given name, if any.
func (c *Collector) Untrack(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.arenas, name)
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- arenaBlocksDesc
	ch <- arenaReservedDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, m := range c.arenas {
		s := m.Stats()
		ch <- prometheus.MustNewConstMetric(arenaBlocksDesc, prometheus.GaugeValue, float64(s.Blocks), name)
		ch <- prometheus.MustNewConstMetric(arenaReservedDesc, prometheus.GaugeValue, float64(s.ReservedBytes), name)
	}
}
