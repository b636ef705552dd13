package classify

import "github.com/gnmradar/collector/pkg/types"

// Streaks is the in-memory failure-streak table, keyed by service_id. It
// is not safe for concurrent use: ownership belongs exclusively to the
// scheduler goroutine, which only touches it after all of a cycle's
// probe results have been joined. It is never persisted and starts empty
// on every process restart.
type Streaks struct {
	counts map[string]int
}

// NewStreaks returns an empty streak table.
func NewStreaks() *Streaks {
	return &Streaks{counts: make(map[string]int)}
}

// Apply classifies result for serviceID against the table's current
// streak, stores the updated streak, and returns the persisted status.
func (s *Streaks) Apply(serviceID string, result types.CheckResult) int {
	status, after := Classify(result, s.counts[serviceID])
	if after == 0 {
		delete(s.counts, serviceID)
	} else {
		s.counts[serviceID] = after
	}
	return status
}
