package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"

	"github.com/picogrid/reionsim/pkg/params"
)

// EnvPrefix starts every environment override, e.g. REIONSIM_USER_HII_DIM.
const EnvPrefix = "REIONSIM_"

// DefaultDir returns the per-user configuration directory.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".reionsim"), nil
}

// DefaultInputsPath returns the location of the default inputs file
func DefaultInputsPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "inputs.yaml"), nil
}

// EnvOverrides collects REIONSIM_<GROUP>_<FIELD> variables from environ,
// given in os.Environ form. Field names are matched case-insensitively.
// Variables whose second segment is not a group name are ignored, so
// other REIONSIM_ settings can share the prefix.
func EnvOverrides(environ []string) (params.GroupOptions, error) {
	var out params.GroupOptions
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		group, name, ok := strings.Cut(strings.TrimPrefix(key, EnvPrefix), "_")
		if !ok {
			continue
		}
		group = strings.ToLower(group)
		fields, err := params.FieldsFor(group)
		if err != nil {
			continue
		}

		field, found := lookupField(fields, name)
		if !found {
			return out, fmt.Errorf("%w: %s: no %s field named %s", params.ErrConfiguration, key, group, name)
		}

		opts := groupOptions(&out, group)
		if *opts == nil {
			*opts = params.Options{}
		}
		(*opts)[field.Name] = envValue(field, value)
	}
	return out, nil
}

// ApplyEnv layers the overrides found in the process environment on top
// of base.
func ApplyEnv(base params.GroupOptions) (params.GroupOptions, error) {
	env, err := EnvOverrides(os.Environ())
	if err != nil {
		return base, err
	}
	return MergeGroups(base, env), nil
}

// MergeGroups applies every group of over on top of base.
func MergeGroups(base, over params.GroupOptions) params.GroupOptions {
	return params.GroupOptions{
		Cosmo:  mergeNonEmpty(base.Cosmo, over.Cosmo),
		User:   mergeNonEmpty(base.User, over.User),
		Astro:  mergeNonEmpty(base.Astro, over.Astro),
		Flags:  mergeNonEmpty(base.Flags, over.Flags),
		Global: mergeNonEmpty(base.Global, over.Global),
	}
}

func mergeNonEmpty(base, over params.Options) params.Options {
	if len(over) == 0 {
		return base
	}
	return base.Merge(over)
}

func lookupField(fields []params.Field, name string) (params.Field, bool) {
	for _, f := range fields {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return params.Field{}, false
}

func groupOptions(g *params.GroupOptions, group string) *params.Options {
	switch group {
	case params.GroupCosmo:
		return &g.Cosmo
	case params.GroupUser:
		return &g.User
	case params.GroupAstro:
		return &g.Astro
	case params.GroupFlags:
		return &g.Flags
	default:
		return &g.Global
	}
}

// envValue keeps the raw string, except that a numeric choice value is
// passed on as its code.
func envValue(f params.Field, raw string) interface{} {
	raw = strings.TrimSpace(raw)
	if f.Type == params.TypeChoice {
		if code, err := cast.ToIntE(raw); err == nil {
			return code
		}
	}
	return raw
}
