// Package probe checks whether the configured API is reachable.
package probe

import (
	"context"

	"github.com/Iampro1712/apiconsole/internal/builder"
	"github.com/Iampro1712/apiconsole/internal/types"
)

// HealthPath is the endpoint probed by Check
const HealthPath = "/health"

// Executor is the transport the probe sends through
type Executor interface {
	Execute(ctx context.Context, desc *types.RequestDescriptor, cfg types.Config) types.Outcome
}

// Status is the collapsed result of a probe
type Status struct {
	OK      bool   `json:"ok"`
	Status  int    `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// Label is the short badge text for s
func (s Status) Label() string {
	switch {
	case s.OK:
		return "API Online"
	case s.Status != 0:
		return "API Error"
	default:
		return "API Offline"
	}
}

// Check sends GET /health against cfg. Transport failures, non-2xx statuses
// and non-JSON bodies all yield OK=false.
func Check(ctx context.Context, exec Executor, cfg types.Config) Status {
	desc, err := builder.Build("GET", HealthPath, nil, "")
	if err != nil {
		return Status{Message: err.Error()}
	}

	o := exec.Execute(ctx, desc, cfg)
	switch {
	case o.Kind != types.OutcomeOK:
		return Status{Message: o.Message}
	case o.JSONError != "":
		return Status{Status: o.Status, Message: o.JSONError}
	case !o.OK:
		return Status{Status: o.Status, Message: o.StatusText}
	}

	return Status{OK: true, Status: o.Status}
}
