package params

import (
	"fmt"
	"strings"
)

// FieldType is the value kind of a parameter field.
type FieldType string

const (
	TypeFloat   FieldType = "float"
	TypeInteger FieldType = "integer"
	TypeBoolean FieldType = "boolean"
	TypeChoice  FieldType = "choice"
	TypeString  FieldType = "string"
)

// Field describes one option of a parameter group.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	// Default is nil for fields whose default is derived from other fields.
	Default interface{}
	// Options lists the recognized names of a choice field.
	Options []string
	// Log marks fields given in log10 units and stored linearly.
	Log bool
}

// Group names, as used for file sections and environment overrides.
const (
	GroupCosmo  = "cosmo"
	GroupUser   = "user"
	GroupAstro  = "astro"
	GroupFlags  = "flags"
	GroupGlobal = "global"
)

// Groups returns every group name in canonical order.
func Groups() []string {
	return []string{GroupCosmo, GroupUser, GroupAstro, GroupFlags, GroupGlobal}
}

// FieldsFor returns the field descriptors of a group.
func FieldsFor(group string) ([]Field, error) {
	switch strings.ToLower(group) {
	case GroupCosmo:
		return CosmoFields(), nil
	case GroupUser:
		return UserFields(), nil
	case GroupAstro:
		return AstroFields(), nil
	case GroupFlags:
		return FlagFields(), nil
	case GroupGlobal:
		return GlobalFields(), nil
	default:
		return nil, fmt.Errorf("%w: unknown parameter group %q", ErrConfiguration, group)
	}
}

// CosmoFields describes the options of CosmoParams.
func CosmoFields() []Field {
	return []Field{
		{Name: "SIGMA_8", Type: TypeFloat, Default: 0.82,
			Description: "RMS mass variance (power spectrum normalisation)"},
		{Name: "hlittle", Type: TypeFloat, Default: planck15H,
			Description: "Hubble parameter, H_0/100"},
		{Name: "OMm", Type: TypeFloat, Default: planck15Om0,
			Description: "Omega matter"},
		{Name: "OMb", Type: TypeFloat, Default: planck15Ob0,
			Description: "Omega baryon, the baryon component"},
		{Name: "POWER_INDEX", Type: TypeFloat, Default: 0.97,
			Description: "Spectral index of the power spectrum"},
	}
}

// UserFields describes the options of UserParams.
func UserFields() []Field {
	return []Field{
		{Name: "BOX_LEN", Type: TypeFloat, Default: 150.0,
			Description: "Length of the box, in Mpc"},
		{Name: "DIM", Type: TypeInteger, Default: nil,
			Description: "Cells along an axis of the high-res box (default 4*HII_DIM)"},
		{Name: "HII_DIM", Type: TypeInteger, Default: 50,
			Description: "Cells along an axis of the low-res box"},
		{Name: "USE_FFTW_WISDOM", Type: TypeBoolean, Default: false,
			Description: "Use stored FFTW wisdom to speed up FFTs"},
		{Name: "HMF", Type: TypeChoice, Default: 1, Options: HMFChoice.Names(),
			Description: "Halo mass function used to normalise the collapsed fraction"},
		{Name: "USE_RELATIVE_VELOCITIES", Type: TypeBoolean, Default: false,
			Description: "Use relative velocities (forces POWER_SPECTRUM to CLASS)"},
		{Name: "POWER_SPECTRUM", Type: TypeChoice, Default: 0, Options: PowerSpectrumChoice.Names(),
			Description: "Matter power spectrum generator"},
	}
}

// FlagFields describes the options of FlagOptions.
func FlagFields() []Field {
	return []Field{
		{Name: "USE_MASS_DEPENDENT_ZETA", Type: TypeBoolean, Default: false,
			Description: "Use the mass-dependent ionizing efficiency parameterization (implies M_MIN_in_Mass)"},
		{Name: "SUBCELL_RSD", Type: TypeBoolean, Default: false,
			Description: "Add sub-cell redshift-space distortions (needs USE_TS_FLUCT)"},
		{Name: "INHOMO_RECO", Type: TypeBoolean, Default: false,
			Description: "Perform inhomogeneous recombinations"},
		{Name: "USE_TS_FLUCT", Type: TypeBoolean, Default: false,
			Description: "Compute IGM spin temperature fluctuations"},
		{Name: "M_MIN_in_Mass", Type: TypeBoolean, Default: false,
			Description: "Minimum halo mass is defined by mass rather than virial temperature"},
		{Name: "PHOTON_CONS", Type: TypeBoolean, Default: false,
			Description: "Correct for photon non-conservation"},
	}
}

// AstroFields describes the options of AstroParams.
func AstroFields() []Field {
	return []Field{
		{Name: "HII_EFF_FACTOR", Type: TypeFloat, Default: 30.0,
			Description: "Ionizing efficiency of high-z galaxies (zeta)"},
		{Name: "F_STAR10", Type: TypeFloat, Default: -1.3, Log: true,
			Description: "Fraction of galactic gas in stars for 1e10 Msun haloes"},
		{Name: "ALPHA_STAR", Type: TypeFloat, Default: 0.5,
			Description: "Power-law index of the star fraction with halo mass"},
		{Name: "F_ESC10", Type: TypeFloat, Default: -1.0, Log: true,
			Description: "Escape fraction for 1e10 Msun haloes"},
		{Name: "ALPHA_ESC", Type: TypeFloat, Default: -0.5,
			Description: "Power-law index of the escape fraction with halo mass"},
		{Name: "M_TURN", Type: TypeFloat, Default: 8.7, Log: true,
			Description: "Turnover mass for star formation quenching, Msun"},
		{Name: "R_BUBBLE_MAX", Type: TypeFloat, Default: nil,
			Description: "Mean free path of ionizing photons in Mpc (default 50 with INHOMO_RECO, else 15)"},
		{Name: "ION_Tvir_MIN", Type: TypeFloat, Default: 4.69897, Log: true,
			Description: "Minimum virial temperature of star-forming haloes, K"},
		{Name: "L_X", Type: TypeFloat, Default: 40.0, Log: true,
			Description: "Specific X-ray luminosity per unit star formation"},
		{Name: "NU_X_THRESH", Type: TypeFloat, Default: 500.0,
			Description: "X-ray energy threshold for self-absorption, eV"},
		{Name: "X_RAY_SPEC_INDEX", Type: TypeFloat, Default: 1.0,
			Description: "X-ray spectral energy index"},
		{Name: "X_RAY_Tvir_MIN", Type: TypeFloat, Default: nil, Log: true,
			Description: "Minimum virial temperature of X-ray emitting haloes, K (default ION_Tvir_MIN)"},
		{Name: "t_STAR", Type: TypeFloat, Default: 0.5,
			Description: "Star formation time-scale as a fraction of the Hubble time"},
		{Name: "N_RSD_STEPS", Type: TypeInteger, Default: 20,
			Description: "Steps of the redshift-space-distortion algorithm"},
		{Name: "INHOMO_RECO", Type: TypeBoolean, Default: false,
			Description: "Whether inhomogeneous recombinations are on (sets the R_BUBBLE_MAX default)"},
	}
}

// Fields describes the options each group accepts.
func (*CosmoParams) Fields() []Field { return CosmoFields() }
func (*UserParams) Fields() []Field  { return UserFields() }
func (*AstroParams) Fields() []Field { return AstroFields() }
func (*FlagOptions) Fields() []Field { return FlagFields() }
func (GlobalParams) Fields() []Field { return GlobalFields() }
