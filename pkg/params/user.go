package params

import (
	"fmt"

	"github.com/picogrid/reionsim/pkg/logger"
)

// dimFactor is the default ratio between DIM and HII_DIM.
const dimFactor = 4

// MaxGridDim bounds DIM and HII_DIM so that cell counts fit in an int64.
const MaxGridDim = 1 << 16

// classPowerSpectrum is the code of CLASS, the only power spectrum that
// supports relative velocities.
const classPowerSpectrum = 5

// UserInput is the decoded form of user options.
type UserInput struct {
	BoxLen                *float64    `param:"BOX_LEN" json:"BOX_LEN,omitempty"`
	Dim                   *int        `param:"DIM" json:"DIM,omitempty"`
	HIIDim                *int        `param:"HII_DIM" json:"HII_DIM,omitempty"`
	UseFFTWWisdom         *bool       `param:"USE_FFTW_WISDOM" json:"USE_FFTW_WISDOM,omitempty"`
	HMF                   interface{} `param:"HMF" json:"HMF,omitempty"`
	UseRelativeVelocities *bool       `param:"USE_RELATIVE_VELOCITIES" json:"USE_RELATIVE_VELOCITIES,omitempty"`
	PowerSpectrum         interface{} `param:"POWER_SPECTRUM" json:"POWER_SPECTRUM,omitempty"`
}

// UserParams holds the grid and model-selection parameters.
type UserParams struct {
	boxLen  float64
	dim     int // 0 means derived from hiiDim
	hiiDim  int
	wisdom  bool
	hmf     int
	relVel  bool
	powSpec int // as requested; see PowerSpectrum
}

// UserStruct is the resolved form handed to the engine.
type UserStruct struct {
	BoxLen                float64
	Dim                   int
	HIIDim                int
	UseFFTWWisdom         bool
	HMF                   int
	UseRelativeVelocities bool
	PowerSpectrum         int
}

// DefaultUserParams returns the default grid settings.
func DefaultUserParams() *UserParams {
	u, _ := NewUserParams(nil)
	return u
}

// NewUserParams builds user parameters from opts. HMF and POWER_SPECTRUM
// accept either a code or a model name.
func NewUserParams(opts Options) (*UserParams, error) {
	var in UserInput
	if err := decodeOptions("UserParams", opts, UserFields(), &in); err != nil {
		return nil, err
	}

	u := &UserParams{
		boxLen: floatOr(in.BoxLen, 150.0),
		dim:    intOr(in.Dim, 0),
		hiiDim: intOr(in.HIIDim, 50),
		wisdom: boolOr(in.UseFFTWWisdom, false),
		relVel: boolOr(in.UseRelativeVelocities, false),
	}

	var err error
	u.hmf = 1
	if in.HMF != nil {
		if u.hmf, err = HMFChoice.Resolve(in.HMF); err != nil {
			return nil, fmt.Errorf("UserParams: %w", err)
		}
	}
	if in.PowerSpectrum != nil {
		if u.powSpec, err = PowerSpectrumChoice.Resolve(in.PowerSpectrum); err != nil {
			return nil, fmt.Errorf("UserParams: %w", err)
		}
	}

	if err := u.validate(); err != nil {
		return nil, err
	}
	u.warn()
	return u, nil
}

func (u *UserParams) validate() error {
	switch {
	case u.hiiDim <= 0:
		return fmt.Errorf("%w: UserParams: HII_DIM must be positive, got %d", ErrValidation, u.hiiDim)
	case u.dim < 0:
		return fmt.Errorf("%w: UserParams: DIM must not be negative, got %d", ErrValidation, u.dim)
	case u.boxLen <= 0:
		return fmt.Errorf("%w: UserParams: BOX_LEN must be positive, got %v", ErrValidation, u.boxLen)
	case u.hiiDim > MaxGridDim:
		return fmt.Errorf("%w: UserParams: HII_DIM must not exceed %d, got %d", ErrValidation, MaxGridDim, u.hiiDim)
	case u.Dim() > MaxGridDim:
		return fmt.Errorf("%w: UserParams: DIM must not exceed %d, got %d", ErrValidation, MaxGridDim, u.Dim())
	}
	return nil
}

func (u *UserParams) warn() {
	log := logger.WithPrefix("UserParams")
	if u.relVel && u.powSpec != classPowerSpectrum {
		log.Warn("Automatically setting POWER_SPECTRUM to 5 (CLASS) as you are using relative velocities")
	}
	if u.dim != 0 {
		if u.dim%u.hiiDim != 0 {
			log.Warnf("DIM=%d is not an integer multiple of HII_DIM=%d", u.dim, u.hiiDim)
		}
		if u.dim < 3*u.hiiDim {
			log.Warnf("DIM=%d is less than 3*HII_DIM; initial conditions may be undersampled", u.dim)
		}
	}
}

func (u *UserParams) BoxLen() float64     { return u.boxLen }
func (u *UserParams) HIIDim() int         { return u.hiiDim }
func (u *UserParams) UseFFTWWisdom() bool { return u.wisdom }
func (u *UserParams) HMF() int            { return u.hmf }

// UseRelativeVelocities reports whether relative velocities are on.
func (u *UserParams) UseRelativeVelocities() bool { return u.relVel }

// Dim is the number of cells along an axis of the high-res box: the
// explicit DIM when given, otherwise 4*HII_DIM.
func (u *UserParams) Dim() int {
	if u.dim != 0 {
		return u.dim
	}
	return dimFactor * u.hiiDim
}

// TotFFTNumPixels is the number of cells in the high-res box.
func (u *UserParams) TotFFTNumPixels() int64 {
	d := int64(u.Dim())
	return d * d * d
}

// HIITotNumPixels is the number of cells in the low-res box.
func (u *UserParams) HIITotNumPixels() int64 {
	h := int64(u.hiiDim)
	return h * h * h
}

// PowerSpectrum is the power spectrum code in effect. Relative velocities
// force CLASS regardless of the requested model.
func (u *UserParams) PowerSpectrum() int {
	if u.relVel {
		return classPowerSpectrum
	}
	return u.powSpec
}

// HMFModel is the name of the halo mass function in use.
func (u *UserParams) HMFModel() string {
	name, _ := HMFChoice.Name(u.hmf)
	return name
}

// PowerSpectrumModel is the name of the power spectrum in use.
func (u *UserParams) PowerSpectrumModel() string {
	name, _ := PowerSpectrumChoice.Name(u.PowerSpectrum())
	return name
}

// With returns a copy of u with opts applied. An unset DIM stays derived.
func (u *UserParams) With(opts Options) (*UserParams, error) {
	return NewUserParams(u.Snapshot().Merge(opts))
}

// Snapshot returns the options that rebuild u. DIM is nil when derived,
// POWER_SPECTRUM is the requested code.
func (u *UserParams) Snapshot() Options {
	var dim interface{}
	if u.dim != 0 {
		dim = u.dim
	}
	return Options{
		"BOX_LEN":                 u.boxLen,
		"DIM":                     dim,
		"HII_DIM":                 u.hiiDim,
		"USE_FFTW_WISDOM":         u.wisdom,
		"HMF":                     u.hmf,
		"USE_RELATIVE_VELOCITIES": u.relVel,
		"POWER_SPECTRUM":          u.powSpec,
	}
}

// Equal reports whether both groups hold the same values.
func (u *UserParams) Equal(o *UserParams) bool {
	if u == nil || o == nil {
		return u == o
	}
	return *u == *o
}

func (u *UserParams) String() string { return render("UserParams", u.Snapshot()) }

// Struct resolves u for the engine.
func (u *UserParams) Struct() UserStruct {
	return UserStruct{
		BoxLen:                u.boxLen,
		Dim:                   u.Dim(),
		HIIDim:                u.hiiDim,
		UseFFTWWisdom:         u.wisdom,
		HMF:                   u.hmf,
		UseRelativeVelocities: u.relVel,
		PowerSpectrum:         u.PowerSpectrum(),
	}
}
