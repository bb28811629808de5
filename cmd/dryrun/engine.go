package dryrun

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/picogrid/reionsim/pkg/logger"
	"github.com/picogrid/reionsim/pkg/params"
	"github.com/picogrid/reionsim/pkg/simulation"
)

// Name is the name the engine is registered under.
const Name = "dry-run"

// bytesPerCell is the size of one single-precision grid cell.
const bytesPerCell = 4

// Engine resolves an input set and walks the heating redshift steps without
// evolving any fields. It checks a configuration end to end before a real
// engine is started with it.
type Engine struct {
	config   *Config
	inputs   *params.InputSet
	mu       sync.Mutex
	result   Result
	stopChan chan struct{}
	stopOnce sync.Once
}

// Result summarises a finished dry run.
type Result struct {
	Steps       int
	FinalZ      float64
	GridBytes   int64
	HubbleAtEnd float64 // km/s/Mpc
}

// NewEngine creates a new dry-run engine with the default settings
func NewEngine() simulation.Engine {
	config := DefaultConfig()
	return &Engine{
		config:   &config,
		stopChan: make(chan struct{}),
	}
}

// Name returns the engine name
func (e *Engine) Name() string {
	return Name
}

// Description returns the engine description
func (e *Engine) Description() string {
	return "Resolves the inputs and walks the redshift steps without evolving any fields"
}

// Tune replaces the engine settings
func (e *Engine) Tune(settings map[string]string) error {
	config, err := ValidateAndParse(settings)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	e.config = config
	return nil
}

// Configure stores the input set for the next run
func (e *Engine) Configure(inputs *params.InputSet) error {
	if inputs == nil {
		return fmt.Errorf("configuration error: %w: no inputs", params.ErrConfiguration)
	}
	e.inputs = inputs
	return nil
}

// Run logs the resolved inputs, then steps from Z_HEAT_MAX down to the stop
// redshift in the engine's logarithmic z' steps.
func (e *Engine) Run(ctx context.Context) error {
	if e.inputs == nil {
		return errors.New("dry-run engine is not configured")
	}

	resolved := e.inputs.Resolve()
	log := logger.WithPrefix(Name).WithField("id", e.inputs.ID())

	e.logResolved(resolved)

	user := e.inputs.User
	gridBytes := bytesPerCell * (user.TotFFTNumPixels() + user.HIITotNumPixels())
	log.Infof("grids need about %.1f MiB", float64(gridBytes)/(1<<20))

	cosmo := e.inputs.Cosmo.Cosmology()
	factor := resolved.Global.ZPrimeStepFactor
	z := resolved.Global.ZHeatMax
	steps := 0

	for z > e.config.StopRedshift {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.stopChan:
			log.Info("Dry run stopped by user")
			e.record(steps, z, gridBytes, cosmo.H(z))
			return nil
		default:
		}

		next := (1+z)/factor - 1
		log.Debugf("z'=%.4f -> %.4f, H=%.2f km/s/Mpc", z, next, cosmo.H(z))
		z = next
		steps++

		if e.config.StepDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-e.stopChan:
				log.Info("Dry run stopped by user")
				e.record(steps, z, gridBytes, cosmo.H(z))
				return nil
			case <-time.After(e.config.StepDelay):
			}
		}
	}

	e.record(steps, z, gridBytes, cosmo.H(z))
	log.Infof("Dry run completed after %d redshift steps (z=%.3f)", steps, z)
	return nil
}

// Stop gracefully shuts down the engine
func (e *Engine) Stop() error {
	e.stopOnce.Do(func() { close(e.stopChan) })
	return nil
}

// Result returns the summary of the last run.
func (e *Engine) Result() Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result
}

func (e *Engine) record(steps int, z float64, gridBytes int64, hubble float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.result = Result{Steps: steps, FinalZ: z, GridBytes: gridBytes, HubbleAtEnd: hubble}
}

func (e *Engine) logResolved(in params.EngineInputs) {
	sections := []struct {
		title string
		value interface{}
	}{
		{"CosmoParams", in.Cosmo},
		{"UserParams", in.User},
		{"AstroParams", in.Astro},
		{"FlagOptions", in.Flags},
	}
	for _, s := range sections {
		fields := map[string]interface{}{}
		if err := mapstructure.Decode(s.value, &fields); err != nil {
			logger.Warnf("cannot render %s: %v", s.title, err)
			continue
		}
		logger.LogSection(s.title)
		logger.LogKeyValues(fields)
	}
}

// init registers the engine
func init() {
	err := simulation.DefaultRegistry.Register(Name, NewEngine)
	if err != nil {
		logger.Errorf("Failed to register engine: %v", err)
		return
	}
}
