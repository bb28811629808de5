package params

import "github.com/picogrid/reionsim/pkg/logger"

// FlagInput is the decoded form of flag options.
type FlagInput struct {
	UseMassDependentZeta *bool `param:"USE_MASS_DEPENDENT_ZETA" json:"USE_MASS_DEPENDENT_ZETA,omitempty"`
	SubcellRSD           *bool `param:"SUBCELL_RSD" json:"SUBCELL_RSD,omitempty"`
	InhomoReco           *bool `param:"INHOMO_RECO" json:"INHOMO_RECO,omitempty"`
	UseTsFluct           *bool `param:"USE_TS_FLUCT" json:"USE_TS_FLUCT,omitempty"`
	MMinInMass           *bool `param:"M_MIN_in_Mass" json:"M_MIN_in_Mass,omitempty"`
	PhotonCons           *bool `param:"PHOTON_CONS" json:"PHOTON_CONS,omitempty"`
}

// FlagOptions switches optional parts of the ionization routines on. All
// flags default to false, the simplest configuration of the engine.
type FlagOptions struct {
	massDependentZeta bool
	subcellRSD        bool
	inhomoReco        bool
	tsFluct           bool
	mMinInMass        bool // as requested; see MMinInMass
	photonCons        bool
}

// FlagStruct is the resolved form handed to the engine.
type FlagStruct struct {
	UseMassDependentZeta bool
	SubcellRSD           bool
	InhomoReco           bool
	UseTsFluct           bool
	MMinInMass           bool
	PhotonCons           bool
}

// DefaultFlagOptions returns all flags off.
func DefaultFlagOptions() *FlagOptions {
	f, _ := NewFlagOptions(nil)
	return f
}

// NewFlagOptions builds flag options from opts.
func NewFlagOptions(opts Options) (*FlagOptions, error) {
	var in FlagInput
	if err := decodeOptions("FlagOptions", opts, FlagFields(), &in); err != nil {
		return nil, err
	}

	f := &FlagOptions{
		massDependentZeta: boolOr(in.UseMassDependentZeta, false),
		subcellRSD:        boolOr(in.SubcellRSD, false),
		inhomoReco:        boolOr(in.InhomoReco, false),
		tsFluct:           boolOr(in.UseTsFluct, false),
		mMinInMass:        boolOr(in.MMinInMass, false),
		photonCons:        boolOr(in.PhotonCons, false),
	}

	if f.subcellRSD && !f.tsFluct {
		logger.WithPrefix("FlagOptions").Warn("SUBCELL_RSD has no effect unless USE_TS_FLUCT is set")
	}
	return f, nil
}

func (f *FlagOptions) UseMassDependentZeta() bool { return f.massDependentZeta }
func (f *FlagOptions) SubcellRSD() bool           { return f.subcellRSD }
func (f *FlagOptions) InhomoReco() bool           { return f.inhomoReco }
func (f *FlagOptions) UseTsFluct() bool           { return f.tsFluct }
func (f *FlagOptions) PhotonCons() bool           { return f.photonCons }

// MMinInMass reports whether the minimum halo mass is defined by mass
// rather than virial temperature. Always true with USE_MASS_DEPENDENT_ZETA.
func (f *FlagOptions) MMinInMass() bool {
	return f.massDependentZeta || f.mMinInMass
}

// With returns a copy of f with opts applied.
func (f *FlagOptions) With(opts Options) (*FlagOptions, error) {
	return NewFlagOptions(f.Snapshot().Merge(opts))
}

// Snapshot returns the options that rebuild f. M_MIN_in_Mass is the value
// as requested.
func (f *FlagOptions) Snapshot() Options {
	return Options{
		"USE_MASS_DEPENDENT_ZETA": f.massDependentZeta,
		"SUBCELL_RSD":             f.subcellRSD,
		"INHOMO_RECO":             f.inhomoReco,
		"USE_TS_FLUCT":            f.tsFluct,
		"M_MIN_in_Mass":           f.mMinInMass,
		"PHOTON_CONS":             f.photonCons,
	}
}

// Equal reports whether both groups hold the same values.
func (f *FlagOptions) Equal(o *FlagOptions) bool {
	if f == nil || o == nil {
		return f == o
	}
	return *f == *o
}

func (f *FlagOptions) String() string { return render("FlagOptions", f.Snapshot()) }

// Struct resolves f for the engine.
func (f *FlagOptions) Struct() FlagStruct {
	return FlagStruct{
		UseMassDependentZeta: f.massDependentZeta,
		SubcellRSD:           f.subcellRSD,
		InhomoReco:           f.inhomoReco,
		UseTsFluct:           f.tsFluct,
		MMinInMass:           f.MMinInMass(),
		PhotonCons:           f.photonCons,
	}
}
