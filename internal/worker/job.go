package worker

import (
	"github.com/gnmradar/collector/pkg/types"
)

// Job is one service's check task for the current cycle.
type Job struct {
	Service types.ServiceSpec
	Host    *types.HostSpec
}

// Result pairs a job's service_id with its completed check outcome.
type Result struct {
	ServiceID string
	Outcome   types.CheckResult
}
