package params

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Choice is an enumerated field: a fixed ordered list of names, where each
// name's position is its integer code.
type Choice struct {
	field string
	names []string
}

// NewChoice creates a choice for field with the given ordered names.
func NewChoice(field string, names ...string) Choice {
	return Choice{field: field, names: names}
}

var (
	// HMFChoice lists the halo mass functions known to the engine.
	HMFChoice = NewChoice("HMF", "PS", "ST", "WATSON", "WATSON-Z")

	// PowerSpectrumChoice lists the matter power spectrum generators.
	PowerSpectrumChoice = NewChoice("POWER_SPECTRUM", "EH", "BBKS", "EFSTATHIOU", "PEEBLES", "WHITE", "CLASS")
)

// Field returns the name of the field this choice belongs to.
func (c Choice) Field() string { return c.field }

// Names returns a copy of the recognized names in code order.
func (c Choice) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len is the number of recognized names.
func (c Choice) Len() int { return len(c.names) }

// Resolve maps v to its integer code. Strings match a name
// case-insensitively; numbers must be integral and in [0, Len()).
func (c Choice) Resolve(v interface{}) (int, error) {
	switch val := v.(type) {
	case nil:
		return 0, fmt.Errorf("%w: %s must be set", ErrValidation, c.field)
	case string:
		name := strings.TrimSpace(val)
		for i, n := range c.names {
			if strings.EqualFold(n, name) {
				return i, nil
			}
		}
		return 0, fmt.Errorf("%w: %s must be one of %s, got %q",
			ErrValidation, c.field, strings.Join(c.names, ", "), val)
	case bool:
		return 0, fmt.Errorf("%w: invalid value for %s: %v", ErrValidation, c.field, val)
	}

	f, err := cast.ToFloat64E(v)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: invalid value for %s: %v", ErrValidation, c.field, v)
	}

	code := int(f)
	if code < 0 || code >= len(c.names) {
		return 0, fmt.Errorf("%w: %s must be an int between 0 and %d, got %d",
			ErrValidation, c.field, len(c.names)-1, code)
	}
	return code, nil
}

// Name returns the name for code.
func (c Choice) Name(code int) (string, error) {
	if code < 0 || code >= len(c.names) {
		return "", fmt.Errorf("%w: %s code %d out of range", ErrValidation, c.field, code)
	}
	return c.names[code], nil
}
