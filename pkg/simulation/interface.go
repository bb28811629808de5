package simulation

import (
	"context"

	"github.com/picogrid/reionsim/pkg/params"
)

// Engine defines the interface that every simulation engine must implement
type Engine interface {
	// Name returns the name the engine is registered under
	Name() string

	// Description returns a brief description of what the engine does
	Description() string

	// Configure hands the engine the input set of the next run. The set
	// carries its own copy of the global parameters.
	Configure(inputs *params.InputSet) error

	// Run executes the engine until it completes or ctx is done
	Run(ctx context.Context) error

	// Stop gracefully shuts down a running engine
	Stop() error
}

// Tunable is implemented by engines that accept engine-specific settings
// besides the input set, e.g. from repeated --engine-param flags.
type Tunable interface {
	Tune(settings map[string]string) error
}
