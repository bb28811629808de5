package params

import (
	"fmt"
	"math"

	"github.com/picogrid/reionsim/pkg/logger"
)

const (
	bubbleMaxInhomo = 50.0
	bubbleMaxHomo   = 15.0
)

// AstroInput is the decoded form of astrophysical options. The Log fields
// (F_STAR10, F_ESC10, M_TURN, ION_Tvir_MIN, L_X, X_RAY_Tvir_MIN) are given
// in log10 units.
type AstroInput struct {
	HIIEffFactor  *float64 `param:"HII_EFF_FACTOR" json:"HII_EFF_FACTOR,omitempty"`
	FStar10       *float64 `param:"F_STAR10" json:"F_STAR10,omitempty"`
	AlphaStar     *float64 `param:"ALPHA_STAR" json:"ALPHA_STAR,omitempty"`
	FEsc10        *float64 `param:"F_ESC10" json:"F_ESC10,omitempty"`
	AlphaEsc      *float64 `param:"ALPHA_ESC" json:"ALPHA_ESC,omitempty"`
	MTurn         *float64 `param:"M_TURN" json:"M_TURN,omitempty"`
	RBubbleMax    *float64 `param:"R_BUBBLE_MAX" json:"R_BUBBLE_MAX,omitempty"`
	IonTvirMin    *float64 `param:"ION_Tvir_MIN" json:"ION_Tvir_MIN,omitempty"`
	LX            *float64 `param:"L_X" json:"L_X,omitempty"`
	NuXThresh     *float64 `param:"NU_X_THRESH" json:"NU_X_THRESH,omitempty"`
	XRaySpecIndex *float64 `param:"X_RAY_SPEC_INDEX" json:"X_RAY_SPEC_INDEX,omitempty"`
	XRayTvirMin   *float64 `param:"X_RAY_Tvir_MIN" json:"X_RAY_Tvir_MIN,omitempty"`
	TStar         *float64 `param:"t_STAR" json:"t_STAR,omitempty"`
	NRSDSteps     *int     `param:"N_RSD_STEPS" json:"N_RSD_STEPS,omitempty"`
	InhomoReco    *bool    `param:"INHOMO_RECO" json:"INHOMO_RECO,omitempty"`
}

// logValue keeps a log10 input next to its linear value. The power is
// taken once, when the group is built.
type logValue struct {
	log float64
	lin float64
}

func newLogValue(log float64) logValue {
	return logValue{log: log, lin: math.Pow(10, log)}
}

// AstroParams holds the astrophysical source parameters.
type AstroParams struct {
	hiiEffFactor  float64
	fStar10       logValue
	alphaStar     float64
	fEsc10        logValue
	alphaEsc      float64
	mTurn         logValue
	rBubbleMax    float64 // 0 means derived from inhomoReco
	ionTvirMin    logValue
	lX            logValue
	nuXThresh     float64
	xRaySpecIndex float64
	xRayTvirMin   logValue
	xRayTvirSet   bool
	tStar         float64
	nRSDSteps     int
	inhomoReco    bool
}

// AstroStruct is the resolved form handed to the engine, in linear units.
type AstroStruct struct {
	HIIEffFactor  float64
	FStar10       float64
	AlphaStar     float64
	FEsc10        float64
	AlphaEsc      float64
	MTurn         float64
	RBubbleMax    float64
	IonTvirMin    float64
	LX            float64
	NuXThresh     float64
	XRaySpecIndex float64
	XRayTvirMin   float64
	TStar         float64
	NRSDSteps     int
}

// DefaultAstroParams returns the default astrophysics with inhomogeneous
// recombinations off.
func DefaultAstroParams() *AstroParams {
	a, _ := NewAstroParams(nil)
	return a
}

// NewAstroParams builds astrophysical parameters from opts.
func NewAstroParams(opts Options) (*AstroParams, error) {
	var in AstroInput
	if err := decodeOptions("AstroParams", opts, AstroFields(), &in); err != nil {
		return nil, err
	}

	a := &AstroParams{
		hiiEffFactor:  floatOr(in.HIIEffFactor, 30.0),
		fStar10:       newLogValue(floatOr(in.FStar10, -1.3)),
		alphaStar:     floatOr(in.AlphaStar, 0.5),
		fEsc10:        newLogValue(floatOr(in.FEsc10, -1.0)),
		alphaEsc:      floatOr(in.AlphaEsc, -0.5),
		mTurn:         newLogValue(floatOr(in.MTurn, 8.7)),
		rBubbleMax:    floatOr(in.RBubbleMax, 0),
		ionTvirMin:    newLogValue(floatOr(in.IonTvirMin, 4.69897)),
		lX:            newLogValue(floatOr(in.LX, 40.0)),
		nuXThresh:     floatOr(in.NuXThresh, 500.0),
		xRaySpecIndex: floatOr(in.XRaySpecIndex, 1.0),
		tStar:         floatOr(in.TStar, 0.5),
		nRSDSteps:     intOr(in.NRSDSteps, 20),
		inhomoReco:    boolOr(in.InhomoReco, false),
	}
	if in.XRayTvirMin != nil {
		a.xRayTvirMin = newLogValue(*in.XRayTvirMin)
		a.xRayTvirSet = true
	}

	if err := a.validate(); err != nil {
		return nil, err
	}

	if a.inhomoReco && a.rBubbleMax != 0 && a.rBubbleMax != bubbleMaxInhomo {
		logger.WithPrefix("AstroParams").Warnf(
			"You are setting R_BUBBLE_MAX != 50 when INHOMO_RECO=True. This is non-standard (but allowed), "+
				"and usually occurs upon manual update of INHOMO_RECO (R_BUBBLE_MAX=%v)", a.rBubbleMax)
	}
	return a, nil
}

// NewAstroParamsForFlags builds astrophysical parameters whose INHOMO_RECO
// follows flags. An explicit INHOMO_RECO in opts that disagrees with flags
// is a configuration error.
func NewAstroParamsForFlags(opts Options, flags *FlagOptions) (*AstroParams, error) {
	if flags == nil {
		return NewAstroParams(opts)
	}

	merged := opts.Merge(nil)
	if v, ok := merged["INHOMO_RECO"]; ok && v != nil {
		probe, err := NewAstroParams(Options{"INHOMO_RECO": v})
		if err != nil {
			return nil, err
		}
		if probe.inhomoReco != flags.InhomoReco() {
			return nil, fmt.Errorf("%w: AstroParams: INHOMO_RECO=%v conflicts with FlagOptions INHOMO_RECO=%v",
				ErrConfiguration, probe.inhomoReco, flags.InhomoReco())
		}
	}
	merged["INHOMO_RECO"] = flags.InhomoReco()
	return NewAstroParams(merged)
}

func (a *AstroParams) validate() error {
	switch {
	case a.rBubbleMax < 0:
		return fmt.Errorf("%w: AstroParams: R_BUBBLE_MAX must not be negative, got %v", ErrValidation, a.rBubbleMax)
	case a.nRSDSteps <= 0:
		return fmt.Errorf("%w: AstroParams: N_RSD_STEPS must be positive, got %d", ErrValidation, a.nRSDSteps)
	case a.tStar <= 0 || a.tStar > 1:
		return fmt.Errorf("%w: AstroParams: t_STAR must lie in (0, 1], got %v", ErrValidation, a.tStar)
	}
	return nil
}

func (a *AstroParams) HIIEffFactor() float64  { return a.hiiEffFactor }
func (a *AstroParams) AlphaStar() float64     { return a.alphaStar }
func (a *AstroParams) AlphaEsc() float64      { return a.alphaEsc }
func (a *AstroParams) NuXThresh() float64     { return a.nuXThresh }
func (a *AstroParams) XRaySpecIndex() float64 { return a.xRaySpecIndex }
func (a *AstroParams) TStar() float64         { return a.tStar }
func (a *AstroParams) NRSDSteps() int         { return a.nRSDSteps }
func (a *AstroParams) InhomoReco() bool       { return a.inhomoReco }

// FStar10 is the star fraction of 1e10 Msun haloes (linear).
func (a *AstroParams) FStar10() float64 { return a.fStar10.lin }

// FEsc10 is the escape fraction of 1e10 Msun haloes (linear).
func (a *AstroParams) FEsc10() float64 { return a.fEsc10.lin }

// MTurn is the turnover mass in Msun (linear).
func (a *AstroParams) MTurn() float64 { return a.mTurn.lin }

// IonTvirMin is the minimum virial temperature of ionizing sources in K.
func (a *AstroParams) IonTvirMin() float64 { return a.ionTvirMin.lin }

// LX is the X-ray luminosity per unit star formation (linear).
func (a *AstroParams) LX() float64 { return a.lX.lin }

// XRayTvirMin is the minimum virial temperature of X-ray sources in K,
// falling back to IonTvirMin when unset.
func (a *AstroParams) XRayTvirMin() float64 {
	if a.xRayTvirSet {
		return a.xRayTvirMin.lin
	}
	return a.IonTvirMin()
}

// RBubbleMax is the maximum bubble radius searched, in Mpc. When unset it
// is 50 with inhomogeneous recombinations and 15 without.
func (a *AstroParams) RBubbleMax() float64 {
	if a.rBubbleMax != 0 {
		return a.rBubbleMax
	}
	if a.inhomoReco {
		return bubbleMaxInhomo
	}
	return bubbleMaxHomo
}

// With returns a copy of a with opts applied.
func (a *AstroParams) With(opts Options) (*AstroParams, error) {
	return NewAstroParams(a.Snapshot().Merge(opts))
}

// WithInhomoReco returns a copy of a for a different INHOMO_RECO setting.
func (a *AstroParams) WithInhomoReco(on bool) (*AstroParams, error) {
	return a.With(Options{"INHOMO_RECO": on})
}

// Snapshot returns the options that rebuild a. Log fields are returned in
// their original log10 form; derived fields are nil when unset.
func (a *AstroParams) Snapshot() Options {
	var rBubble, xRayTvir interface{}
	if a.rBubbleMax != 0 {
		rBubble = a.rBubbleMax
	}
	if a.xRayTvirSet {
		xRayTvir = a.xRayTvirMin.log
	}
	return Options{
		"HII_EFF_FACTOR":   a.hiiEffFactor,
		"F_STAR10":         a.fStar10.log,
		"ALPHA_STAR":       a.alphaStar,
		"F_ESC10":          a.fEsc10.log,
		"ALPHA_ESC":        a.alphaEsc,
		"M_TURN":           a.mTurn.log,
		"R_BUBBLE_MAX":     rBubble,
		"ION_Tvir_MIN":     a.ionTvirMin.log,
		"L_X":              a.lX.log,
		"NU_X_THRESH":      a.nuXThresh,
		"X_RAY_SPEC_INDEX": a.xRaySpecIndex,
		"X_RAY_Tvir_MIN":   xRayTvir,
		"t_STAR":           a.tStar,
		"N_RSD_STEPS":      a.nRSDSteps,
		"INHOMO_RECO":      a.inhomoReco,
	}
}

// Equal reports whether both groups hold the same values.
func (a *AstroParams) Equal(o *AstroParams) bool {
	if a == nil || o == nil {
		return a == o
	}
	return *a == *o
}

func (a *AstroParams) String() string { return render("AstroParams", a.Snapshot()) }

// Struct resolves a for the engine.
func (a *AstroParams) Struct() AstroStruct {
	return AstroStruct{
		HIIEffFactor:  a.hiiEffFactor,
		FStar10:       a.FStar10(),
		AlphaStar:     a.alphaStar,
		FEsc10:        a.FEsc10(),
		AlphaEsc:      a.alphaEsc,
		MTurn:         a.MTurn(),
		RBubbleMax:    a.RBubbleMax(),
		IonTvirMin:    a.IonTvirMin(),
		LX:            a.LX(),
		NuXThresh:     a.nuXThresh,
		XRaySpecIndex: a.xRaySpecIndex,
		XRayTvirMin:   a.XRayTvirMin(),
		TStar:         a.tStar,
		NRSDSteps:     a.nRSDSteps,
	}
}
