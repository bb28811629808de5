package params

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Options holds raw parameter values keyed by field name, as read from a
// YAML file, the CLI or a previous Snapshot.
type Options map[string]interface{}

// Merge returns a copy of o with every key of over applied on top.
func (o Options) Merge(over Options) Options {
	out := make(Options, len(o)+len(over))
	for k, v := range o {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

// Keys returns the option names in sorted order.
func (o Options) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// checkKeys rejects any option that is not one of the group's fields.
func checkKeys(group string, opts Options, fields []Field) error {
	known := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		known[f.Name] = struct{}{}
	}

	var unknown []string
	for _, k := range opts.Keys() {
		if _, ok := known[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %s: unrecognized options %s", ErrConfiguration, group, strings.Join(unknown, ", "))
	}
	return nil
}

// decodeOptions checks the option names against fields, then decodes the
// values into out using the "param" struct tags. Values are weakly typed so
// that strings from the environment or the command line are accepted.
func decodeOptions(group string, opts Options, fields []Field, out interface{}) error {
	if err := checkKeys(group, opts, fields); err != nil {
		return err
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.DecodeHookFuncType(strictIntegerHook),
		TagName:          "param",
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("%s: create decoder: %w", group, err)
	}

	raw := map[string]interface{}(opts)
	if raw == nil {
		raw = map[string]interface{}{}
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrValidation, group, err)
	}
	return nil
}

// strictIntegerHook refuses values that weak typing would otherwise
// truncate into an integer field: fractional numbers and booleans.
func strictIntegerHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from == nil || data == nil {
		return data, nil
	}
	if to.Kind() == reflect.Ptr {
		to = to.Elem()
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}

	switch from.Kind() {
	case reflect.Float32, reflect.Float64:
		f := reflect.ValueOf(data).Float()
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: %v is not an integer", ErrValidation, data)
		}
	case reflect.Bool:
		return nil, fmt.Errorf("%w: boolean %v given for an integer", ErrValidation, data)
	}
	return data, nil
}

// render formats a snapshot as Name(key:value, ...) with sorted keys.
// The result is stable and used for hashing input sets.
func render(name string, opts Options) string {
	parts := make([]string, 0, len(opts))
	for _, k := range opts.Keys() {
		v := opts[k]
		if v == nil {
			parts = append(parts, k+":unset")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%v", k, v))
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}
