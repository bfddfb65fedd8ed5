package stage

import (
	"context"

	"quaver/internal/library"
)

// Handler describes the contract the workflow manager needs from each
// pipeline stage. Prepare validates inputs and fails fast; Execute performs
// the stage's work by mutating the group run.
type Handler interface {
	Prepare(context.Context, *library.GroupRun) error
	Execute(context.Context, *library.GroupRun) error
	HealthCheck(context.Context) Health
}
