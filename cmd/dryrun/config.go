package dryrun

import (
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Config holds the settings of the dry-run engine
type Config struct {
	// StopRedshift ends the redshift walk.
	StopRedshift float64 `param:"stop_redshift"`
	// StepDelay is slept after every redshift step.
	StepDelay time.Duration `param:"step_delay"`
}

// DefaultConfig returns the settings used when none are given
func DefaultConfig() Config {
	return Config{StopRedshift: 6}
}

// ValidateAndParse applies raw settings on top of the defaults and validates them
func ValidateAndParse(settings map[string]string) (*Config, error) {
	config := DefaultConfig()

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		TagName:          "param",
		Result:           &config,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(settings); err != nil {
		return nil, fmt.Errorf("invalid dry-run settings: %w", err)
	}

	if config.StopRedshift < 0 {
		return nil, fmt.Errorf("stop_redshift must not be negative")
	}
	if config.StepDelay < 0 {
		return nil, fmt.Errorf("step_delay must not be negative")
	}

	return &config, nil
}
