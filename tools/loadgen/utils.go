// Package main provides helper functions for the loadgen CLI
package main

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// stats collects per-request latencies across workers
type stats struct {
	mu        sync.Mutex
	latencies []time.Duration
	failures  int
}

func newStats() *stats {
	return &stats{}
}

func (s *stats) record(d time.Duration, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latencies = append(s.latencies, d)
	if !ok {
		s.failures++
	}
}

// percentile returns the p-th percentile of the recorded latencies
func (s *stats) percentile(p float64) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.latencies) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(s.latencies))
	copy(sorted, s.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := int(float64(len(sorted)-1) * p / 100)
	return sorted[idx]
}

func (s *stats) print(elapsed time.Duration) {
	s.mu.Lock()
	total := len(s.latencies)
	failures := s.failures
	s.mu.Unlock()

	fmt.Println()
	fmt.Println("=== Summary ===")
	fmt.Printf("Requests:  %d (%d failed)\n", total, failures)
	fmt.Printf("Elapsed:   %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("Rate:      %s\n", formatRate(total, elapsed))
	fmt.Printf("Latency:   p50=%s p95=%s p99=%s\n",
		s.percentile(50).Round(time.Microsecond),
		s.percentile(95).Round(time.Microsecond),
		s.percentile(99).Round(time.Microsecond),
	)
}

// formatRate formats a rate (requests per second)
func formatRate(count int, duration time.Duration) string {
	if duration.Seconds() == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f/s", float64(count)/duration.Seconds())
}
