package params

import (
	"fmt"
	"math"
)

// Planck 2015 cosmology.
const (
	planck15H   = 0.6774
	planck15Om0 = 0.3075
	planck15Ob0 = 0.0486
	cmbTemp     = 2.7255
)

// CosmoInput is the decoded form of cosmological options. A nil pointer
// means the option was not given.
type CosmoInput struct {
	Sigma8     *float64 `param:"SIGMA_8" json:"SIGMA_8,omitempty"`
	Hlittle    *float64 `param:"hlittle" json:"hlittle,omitempty"`
	OMm        *float64 `param:"OMm" json:"OMm,omitempty"`
	OMb        *float64 `param:"OMb" json:"OMb,omitempty"`
	PowerIndex *float64 `param:"POWER_INDEX" json:"POWER_INDEX,omitempty"`
}

// CosmoParams holds the cosmological parameters.
type CosmoParams struct {
	sigma8     float64
	hlittle    float64
	omM        float64
	omB        float64
	powerIndex float64
}

// CosmoStruct is the resolved form handed to the engine.
type CosmoStruct struct {
	Sigma8     float64
	Hlittle    float64
	OMm        float64
	OMb        float64
	OMl        float64
	PowerIndex float64
}

// DefaultCosmoParams returns the Planck 2015 based defaults.
func DefaultCosmoParams() *CosmoParams {
	c, _ := NewCosmoParams(nil)
	return c
}

// NewCosmoParams builds cosmological parameters from opts.
func NewCosmoParams(opts Options) (*CosmoParams, error) {
	var in CosmoInput
	if err := decodeOptions("CosmoParams", opts, CosmoFields(), &in); err != nil {
		return nil, err
	}

	c := &CosmoParams{
		sigma8:     floatOr(in.Sigma8, 0.82),
		hlittle:    floatOr(in.Hlittle, planck15H),
		omM:        floatOr(in.OMm, planck15Om0),
		omB:        floatOr(in.OMb, planck15Ob0),
		powerIndex: floatOr(in.PowerIndex, 0.97),
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *CosmoParams) validate() error {
	switch {
	case c.sigma8 <= 0:
		return fmt.Errorf("%w: CosmoParams: SIGMA_8 must be positive, got %v", ErrValidation, c.sigma8)
	case c.hlittle <= 0:
		return fmt.Errorf("%w: CosmoParams: hlittle must be positive, got %v", ErrValidation, c.hlittle)
	case c.omM <= 0 || c.omM > 1:
		return fmt.Errorf("%w: CosmoParams: OMm must lie in (0, 1], got %v", ErrValidation, c.omM)
	case c.omB < 0 || c.omB > c.omM:
		return fmt.Errorf("%w: CosmoParams: OMb must lie in [0, OMm], got %v", ErrValidation, c.omB)
	}
	return nil
}

func (c *CosmoParams) Sigma8() float64     { return c.sigma8 }
func (c *CosmoParams) Hlittle() float64    { return c.hlittle }
func (c *CosmoParams) OMm() float64        { return c.omM }
func (c *CosmoParams) OMb() float64        { return c.omB }
func (c *CosmoParams) PowerIndex() float64 { return c.powerIndex }

// OMl is the dark energy density, 1 - OMm.
func (c *CosmoParams) OMl() float64 { return 1 - c.omM }

// With returns a copy of c with opts applied.
func (c *CosmoParams) With(opts Options) (*CosmoParams, error) {
	return NewCosmoParams(c.Snapshot().Merge(opts))
}

// Snapshot returns the options that rebuild c.
func (c *CosmoParams) Snapshot() Options {
	return Options{
		"SIGMA_8":     c.sigma8,
		"hlittle":     c.hlittle,
		"OMm":         c.omM,
		"OMb":         c.omB,
		"POWER_INDEX": c.powerIndex,
	}
}

// Equal reports whether both groups hold the same values.
func (c *CosmoParams) Equal(o *CosmoParams) bool {
	if c == nil || o == nil {
		return c == o
	}
	return *c == *o
}

func (c *CosmoParams) String() string { return render("CosmoParams", c.Snapshot()) }

// Struct resolves c for the engine.
func (c *CosmoParams) Struct() CosmoStruct {
	return CosmoStruct{
		Sigma8:     c.sigma8,
		Hlittle:    c.hlittle,
		OMm:        c.omM,
		OMb:        c.omB,
		OMl:        c.OMl(),
		PowerIndex: c.powerIndex,
	}
}

// Cosmology is a flat matter plus lambda background.
type Cosmology struct {
	H0    float64 // km/s/Mpc
	Om0   float64
	Ob0   float64
	Ode0  float64
	Tcmb0 float64 // K
}

// Cosmology returns the background cosmology for c, based on Planck 2015
// with H0, Om0 and Ob0 replaced.
func (c *CosmoParams) Cosmology() Cosmology {
	return Cosmology{
		H0:    100 * c.hlittle,
		Om0:   c.omM,
		Ob0:   c.omB,
		Ode0:  c.OMl(),
		Tcmb0: cmbTemp,
	}
}

// E is the dimensionless Hubble rate H(z)/H0.
func (cos Cosmology) E(z float64) float64 {
	a := 1 + z
	return math.Sqrt(cos.Om0*a*a*a + cos.Ode0)
}

// H is the Hubble rate at redshift z in km/s/Mpc.
func (cos Cosmology) H(z float64) float64 {
	return cos.H0 * cos.E(z)
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
