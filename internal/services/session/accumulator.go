package session

import (
	"github.com/thomas-vilte/promptcache/internal/errors"
	"github.com/thomas-vilte/promptcache/internal/models"
	"github.com/thomas-vilte/promptcache/internal/services/cost"
)

// Summary is a point-in-time view of an Accumulator.
type Summary struct {
	Requests          int
	Succeeded         int
	Hits              int
	Misses            int
	Failures          map[errors.FailureReason]int
	TotalSaved        float64
	TotalCreationCost float64
	TotalCost         float64
	InputTokens       int
	CacheReadTokens   int
	CacheWriteTokens  int
	OutputTokens      int
}

// Failed is the number of requests that did not produce a usage record.
func (s Summary) Failed() int {
	n := 0
	for _, c := range s.Failures {
		n += c
	}
	return n
}

// Accumulator keeps running totals across the requests of one run.
type Accumulator struct {
	summary Summary
}

func NewAccumulator() *Accumulator {
	return &Accumulator{summary: Summary{Failures: make(map[errors.FailureReason]int)}}
}

// Record adds a successful request. Only cache hits contribute savings.
func (a *Accumulator) Record(analysis cost.Analysis) {
	s := &a.summary
	s.Requests++
	s.Succeeded++
	s.TotalCost += analysis.CostWithCache
	s.InputTokens += analysis.Usage.InputTokens
	s.CacheReadTokens += analysis.Usage.CacheReadTokens
	s.CacheWriteTokens += analysis.Usage.CacheCreationTokens
	s.OutputTokens += analysis.Usage.OutputTokens

	if analysis.Status == models.CacheHit {
		s.Hits++
		s.TotalSaved += analysis.Saved
		return
	}
	s.Misses++
	s.TotalCreationCost += analysis.CreationCost
}

// RecordFailure counts a request that failed for the given reason.
func (a *Accumulator) RecordFailure(reason errors.FailureReason) {
	if reason == errors.ReasonNone {
		reason = errors.ReasonUnknown
	}
	a.summary.Requests++
	a.summary.Failures[reason]++
}

func (a *Accumulator) Snapshot() Summary {
	out := a.summary
	out.Failures = make(map[errors.FailureReason]int, len(a.summary.Failures))
	for k, v := range a.summary.Failures {
		out.Failures[k] = v
	}
	return out
}
