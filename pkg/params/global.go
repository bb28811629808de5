package params

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"
)

// GlobalParams holds values used throughout the engine that are very rarely
// varied. Fields are read and written directly.
type GlobalParams struct {
	AlphaUVB                  float64 `param:"ALPHA_UVB" json:"ALPHA_UVB" desc:"Power law index of the UVB during the EoR (used with INHOMO_RECO)"`
	EvolveDensityLinearly     bool    `param:"EVOLVE_DENSITY_LINEARLY" json:"EVOLVE_DENSITY_LINEARLY" desc:"Evolve the density field with linear theory instead of 1LPT"`
	SmoothEvolvedDensityField bool    `param:"SMOOTH_EVOLVED_DENSITY_FIELD" json:"SMOOTH_EVOLVED_DENSITY_FIELD" desc:"Gaussian-smooth the evolved density field"`
	RSmoothDensity            float64 `param:"R_smooth_density" json:"R_smooth_density" desc:"Smoothing length for SMOOTH_EVOLVED_DENSITY_FIELD, in units of BOX_LEN/HII_DIM"`
	SecondOrderLPTCorrections bool    `param:"SECOND_ORDER_LPT_CORRECTIONS" json:"SECOND_ORDER_LPT_CORRECTIONS" desc:"Use second-order Lagrangian perturbation theory"`
	HIIRoundErr               float64 `param:"HII_ROUND_ERR" json:"HII_ROUND_ERR" desc:"Rounding error on the ionization fraction"`
	FindBubbleAlgorithm       int     `param:"FIND_BUBBLE_ALGORITHM" json:"FIND_BUBBLE_ALGORITHM" desc:"HII bubble finder: 1 overlapping spheres, 2 center pixel"`
	NPoisson                  int     `param:"N_POISSON" json:"N_POISSON" desc:"Poisson scatter threshold in units of M_MIN (negative disables)"`
	TUseVelocities            bool    `param:"T_USE_VELOCITIES" json:"T_USE_VELOCITIES" desc:"Use velocity corrections in 21-cm fields"`
	MaxDVDR                   float64 `param:"MAX_DVDR" json:"MAX_DVDR" desc:"Maximum line-of-sight velocity gradient in units of H(z)"`
	VelocityComponent         int     `param:"VELOCITY_COMPONENT" json:"VELOCITY_COMPONENT" desc:"Velocity component used in 21-cm maps (1=x, 2=y, 3=z)"`
	DeltaRHIIFactor           float64 `param:"DELTA_R_HII_FACTOR" json:"DELTA_R_HII_FACTOR" desc:"Factor by which to step the bubble filter radius"`
	HIIFilter                 int     `param:"HII_FILTER" json:"HII_FILTER" desc:"Ionization field filter: 0 real-space top hat, 1 k-space top hat, 2 gaussian"`
	InitialRedshift           float64 `param:"INITIAL_REDSHIFT" json:"INITIAL_REDSHIFT" desc:"Redshift of the initial conditions"`
	CritDensTransition        float64 `param:"CRIT_DENS_TRANSITION" json:"CRIT_DENS_TRANSITION" desc:"Density above which interpolation tables switch to linear sampling"`
	MinDensityLowLimit        float64 `param:"MIN_DENSITY_LOW_LIMIT" json:"MIN_DENSITY_LOW_LIMIT" desc:"Lower density limit of the interpolation tables"`
	RecombPhotonCons          int     `param:"RecombPhotonCons" json:"RecombPhotonCons" desc:"Use the recombination term in the photon non-conservation correction"`
	PhotonConsStart           float64 `param:"PhotonConsStart" json:"PhotonConsStart" desc:"Neutral fraction where the photon non-conservation correction starts"`
	PhotonConsEnd             float64 `param:"PhotonConsEnd" json:"PhotonConsEnd" desc:"Neutral fraction where the exact correction ends"`
	PhotonConsAsymptoteTo     float64 `param:"PhotonConsAsymptoteTo" json:"PhotonConsAsymptoteTo" desc:"Lowest neutral fraction the correction is extrapolated to"`
	HeatFilter                int     `param:"HEAT_FILTER" json:"HEAT_FILTER" desc:"Collapsed fraction filter: 0 real-space top hat, 1 sharp k-space, 2 gaussian"`
	ClumpingFactor            float64 `param:"CLUMPING_FACTOR" json:"CLUMPING_FACTOR" desc:"Sub-grid clumping factor"`
	ZHeatMax                  float64 `param:"Z_HEAT_MAX" json:"Z_HEAT_MAX" desc:"Maximum redshift of the Tk and x_e evolution"`
	RXLyMax                   float64 `param:"R_XLy_MAX" json:"R_XLy_MAX" desc:"Maximum radius of X-ray and Lya influence, cMpc"`
	NumFilterStepsForTs       int     `param:"NUM_FILTER_STEPS_FOR_Ts" json:"NUM_FILTER_STEPS_FOR_Ts" desc:"Spherical annuli used for the spin temperature"`
	ZPrimeStepFactor          float64 `param:"ZPRIME_STEP_FACTOR" json:"ZPRIME_STEP_FACTOR" desc:"Logarithmic redshift step of the z' integral"`
	TKAtZHeatMax              float64 `param:"TK_at_Z_HEAT_MAX" json:"TK_at_Z_HEAT_MAX" desc:"Overrides the Tk boundary condition when positive"`
	XIONAtZHeatMax            float64 `param:"XION_at_Z_HEAT_MAX" json:"XION_at_Z_HEAT_MAX" desc:"Overrides the x_e boundary condition when positive"`
	Pop                       int     `param:"Pop" json:"Pop" desc:"Stellar population responsible for early heating (2 or 3)"`
	Pop2Ion                   float64 `param:"Pop2_ion" json:"Pop2_ion" desc:"Ionizing photons per baryon, population II"`
	Pop3Ion                   float64 `param:"Pop3_ion" json:"Pop3_ion" desc:"Ionizing photons per baryon, population III"`
	NuXBandMax                float64 `param:"NU_X_BAND_MAX" json:"NU_X_BAND_MAX" desc:"Upper limit of the soft X-ray band, eV"`
	NuXMax                    float64 `param:"NU_X_MAX" json:"NU_X_MAX" desc:"Upper limit of the X-ray rate integrals, eV"`
	NBinsLF                   int     `param:"NBINS_LF" json:"NBINS_LF" desc:"Bins of the luminosity function"`
	PCutoff                   bool    `param:"P_CUTOFF" json:"P_CUTOFF" desc:"Warm dark matter power suppression"`
	MWDM                      float64 `param:"M_WDM" json:"M_WDM" desc:"WDM particle mass, keV"`
	GX                        float64 `param:"g_x" json:"g_x" desc:"Degrees of freedom of WDM particles"`
	OMn                       float64 `param:"OMn" json:"OMn" desc:"Relative density of neutrinos"`
	OMk                       float64 `param:"OMk" json:"OMk" desc:"Relative density of curvature"`
	OMr                       float64 `param:"OMr" json:"OMr" desc:"Relative density of radiation"`
	OMtot                     float64 `param:"OMtot" json:"OMtot" desc:"Total density relative to critical"`
	YHe                       float64 `param:"Y_He" json:"Y_He" desc:"Helium fraction"`
	Wl                        float64 `param:"wl" json:"wl" desc:"Dark energy equation of state"`
	ShethB                    float64 `param:"SHETH_b" json:"SHETH_b" desc:"Sheth-Tormen ellipsoidal collapse parameter b"`
	ShethC                    float64 `param:"SHETH_c" json:"SHETH_c" desc:"Sheth-Tormen ellipsoidal collapse parameter c"`
	ZreionHeII                float64 `param:"Zreion_HeII" json:"Zreion_HeII" desc:"Redshift of helium reionization"`
	Filter                    int     `param:"FILTER" json:"FILTER" desc:"Smoothing filter: 0 top hat, 1 gaussian"`
	ExternalTablePath         string  `param:"external_table_path" json:"external_table_path" desc:"Directory of the engine's external tables"`
}

// DefaultGlobalParams returns the engine's default global values.
func DefaultGlobalParams() GlobalParams {
	return GlobalParams{
		AlphaUVB:                  5.0,
		RSmoothDensity:            0.2,
		SecondOrderLPTCorrections: true,
		HIIRoundErr:               1e-5,
		FindBubbleAlgorithm:       2,
		NPoisson:                  5,
		TUseVelocities:            true,
		MaxDVDR:                   0.2,
		VelocityComponent:         3,
		DeltaRHIIFactor:           1.1,
		HIIFilter:                 1,
		InitialRedshift:           300.0,
		CritDensTransition:        1.5,
		MinDensityLowLimit:        9e-8,
		PhotonConsStart:           0.995,
		PhotonConsEnd:             0.3,
		PhotonConsAsymptoteTo:     0.01,
		ClumpingFactor:            2.0,
		ZHeatMax:                  35.0,
		RXLyMax:                   500.0,
		NumFilterStepsForTs:       40,
		ZPrimeStepFactor:          1.02,
		TKAtZHeatMax:              -1,
		XIONAtZHeatMax:            -1,
		Pop:                       2,
		Pop2Ion:                   5000,
		Pop3Ion:                   44021,
		NuXBandMax:                2000.0,
		NuXMax:                    10000.0,
		NBinsLF:                   100,
		MWDM:                      2.0,
		GX:                        1.5,
		OMr:                       8.6e-5,
		OMtot:                     1.0,
		YHe:                       0.245,
		Wl:                        -1.0,
		ShethB:                    0.15,
		ShethC:                    0.05,
		ZreionHeII:                3.0,
		ExternalTablePath:         defaultTablePath(),
	}
}

func defaultTablePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".21cmfast"
	}
	return filepath.Join(home, ".21cmfast")
}

// NewGlobalParams applies opts on top of the defaults.
func NewGlobalParams(opts Options) (GlobalParams, error) {
	g := DefaultGlobalParams()
	return g.With(opts)
}

// With returns a copy of g with opts applied and validated.
func (g GlobalParams) With(opts Options) (GlobalParams, error) {
	out := g
	if err := decodeOptions("GlobalParams", opts, GlobalFields(), &out); err != nil {
		return GlobalParams{}, err
	}
	if err := out.Validate(); err != nil {
		return GlobalParams{}, err
	}
	return out, nil
}

// Validate checks the enumerated and ordered fields.
func (g GlobalParams) Validate() error {
	checks := []struct {
		name    string
		value   int
		allowed []int
	}{
		{"FIND_BUBBLE_ALGORITHM", g.FindBubbleAlgorithm, []int{1, 2}},
		{"VELOCITY_COMPONENT", g.VelocityComponent, []int{1, 2, 3}},
		{"HII_FILTER", g.HIIFilter, []int{0, 1, 2}},
		{"HEAT_FILTER", g.HeatFilter, []int{0, 1, 2}},
		{"FILTER", g.Filter, []int{0, 1}},
		{"Pop", g.Pop, []int{2, 3}},
		{"RecombPhotonCons", g.RecombPhotonCons, []int{0, 1}},
	}
	for _, c := range checks {
		if !containsInt(c.allowed, c.value) {
			return fmt.Errorf("%w: GlobalParams: %s must be one of %v, got %d", ErrValidation, c.name, c.allowed, c.value)
		}
	}

	switch {
	case g.NuXMax <= g.NuXBandMax:
		return fmt.Errorf("%w: GlobalParams: NU_X_MAX (%v) must exceed NU_X_BAND_MAX (%v)", ErrValidation, g.NuXMax, g.NuXBandMax)
	case g.ZPrimeStepFactor <= 1:
		return fmt.Errorf("%w: GlobalParams: ZPRIME_STEP_FACTOR must exceed 1, got %v", ErrValidation, g.ZPrimeStepFactor)
	case g.NumFilterStepsForTs <= 0:
		return fmt.Errorf("%w: GlobalParams: NUM_FILTER_STEPS_FOR_Ts must be positive, got %d", ErrValidation, g.NumFilterStepsForTs)
	case g.NBinsLF <= 0:
		return fmt.Errorf("%w: GlobalParams: NBINS_LF must be positive, got %d", ErrValidation, g.NBinsLF)
	}
	return nil
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// Snapshot returns every field keyed by its engine name.
func (g GlobalParams) Snapshot() Options {
	v := reflect.ValueOf(g)
	t := v.Type()
	out := make(Options, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		out[t.Field(i).Tag.Get("param")] = v.Field(i).Interface()
	}
	return out
}

func (g GlobalParams) String() string { return render("GlobalParams", g.Snapshot()) }

var (
	globalFieldsOnce sync.Once
	globalFields     []Field
)

// GlobalFields describes the fields of GlobalParams, read from its tags.
func GlobalFields() []Field {
	globalFieldsOnce.Do(func() {
		def := reflect.ValueOf(DefaultGlobalParams())
		t := def.Type()
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			f := Field{
				Name:        sf.Tag.Get("param"),
				Description: sf.Tag.Get("desc"),
				Default:     def.Field(i).Interface(),
			}
			switch sf.Type.Kind() {
			case reflect.Float64:
				f.Type = TypeFloat
			case reflect.Int:
				f.Type = TypeInteger
			case reflect.Bool:
				f.Type = TypeBoolean
			default:
				f.Type = TypeString
			}
			globalFields = append(globalFields, f)
		}
	})
	out := make([]Field, len(globalFields))
	copy(out, globalFields)
	return out
}

var (
	globalOnce sync.Once
	global     *GlobalParams
)

// Global returns the process-wide global parameters, initialised with the
// defaults on first use. Fields may be changed directly, but only by a
// single goroutine and only before the engine starts reading them.
func Global() *GlobalParams {
	globalOnce.Do(func() {
		g := DefaultGlobalParams()
		global = &g
	})
	return global
}

// SetGlobal validates g and copies it into the process-wide instance.
func SetGlobal(g GlobalParams) error {
	if err := g.Validate(); err != nil {
		return err
	}
	*Global() = g
	return nil
}

// ResetGlobal restores the process-wide instance to the defaults.
func ResetGlobal() {
	*Global() = DefaultGlobalParams()
}
