package params

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picogrid/reionsim/pkg/logger"
)

// captureWarnings redirects the default logger for the duration of a test.
func captureWarnings(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := logger.SetOutput(buf)
	logger.SetNoColor(true)
	logger.SetShowTime(false)
	t.Cleanup(func() {
		logger.SetOutput(prev)
		logger.SetShowTime(true)
	})
	return buf
}

func TestCosmoDefaults(t *testing.T) {
	c := DefaultCosmoParams()

	assert.Equal(t, 0.82, c.Sigma8())
	assert.Equal(t, 0.6774, c.Hlittle())
	assert.Equal(t, 0.3075, c.OMm())
	assert.Equal(t, 0.0486, c.OMb())
	assert.Equal(t, 0.97, c.PowerIndex())
	assert.InDelta(t, 0.6925, c.OMl(), 1e-12)
}

func TestCosmoReplacesPlanckValues(t *testing.T) {
	c, err := NewCosmoParams(Options{"hlittle": 0.7, "OMm": 0.3, "OMb": 0.05})
	require.NoError(t, err)

	cos := c.Cosmology()
	assert.InDelta(t, 70.0, cos.H0, 1e-12)
	assert.Equal(t, 0.3, cos.Om0)
	assert.Equal(t, 0.05, cos.Ob0)
	assert.InDelta(t, 0.7, cos.Ode0, 1e-12)
	assert.InDelta(t, 70.0, cos.H(0), 1e-9)
	assert.Greater(t, cos.H(6), cos.H(0))
}

func TestCosmoRejectsBadValues(t *testing.T) {
	cases := map[string]Options{
		"negative sigma8":   {"SIGMA_8": -0.1},
		"zero hlittle":      {"hlittle": 0},
		"matter above one":  {"OMm": 1.2},
		"baryons over mass": {"OMm": 0.2, "OMb": 0.3},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewCosmoParams(opts)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUnknownOptionIsConfigurationError(t *testing.T) {
	_, err := NewCosmoParams(Options{"SIGMA_8": 0.8, "SIGMA8": 0.8})
	require.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "SIGMA8")

	_, err = NewUserParams(Options{"NOT_A_FIELD": 1})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewAstroParams(Options{"zeta": 30})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewFlagOptions(Options{"USE_HALO_FIELD": true})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewGlobalParams(Options{"Z_HEAT": 30})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestWrongTypeIsValidationError(t *testing.T) {
	_, err := NewCosmoParams(Options{"SIGMA_8": "not a number"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStringValuesAreCoerced(t *testing.T) {
	u, err := NewUserParams(Options{"HII_DIM": "64", "BOX_LEN": "200.5"})
	require.NoError(t, err)
	assert.Equal(t, 64, u.HIIDim())
	assert.Equal(t, 200.5, u.BoxLen())
}

func TestUserDefaults(t *testing.T) {
	u := DefaultUserParams()

	assert.Equal(t, 150.0, u.BoxLen())
	assert.Equal(t, 50, u.HIIDim())
	assert.Equal(t, 200, u.Dim())
	assert.Equal(t, 1, u.HMF())
	assert.Equal(t, "ST", u.HMFModel())
	assert.Equal(t, 0, u.PowerSpectrum())
	assert.Equal(t, "EH", u.PowerSpectrumModel())
	assert.False(t, u.UseFFTWWisdom())
	assert.False(t, u.UseRelativeVelocities())
	assert.Equal(t, int64(200*200*200), u.TotFFTNumPixels())
	assert.Equal(t, int64(50*50*50), u.HIITotNumPixels())
}

func TestUserDimIsDerivedLive(t *testing.T) {
	u, err := NewUserParams(Options{"HII_DIM": 30})
	require.NoError(t, err)
	assert.Equal(t, 120, u.Dim())

	u2, err := u.With(Options{"HII_DIM": 40})
	require.NoError(t, err)
	assert.Equal(t, 160, u2.Dim())
	assert.Nil(t, u2.Snapshot()["DIM"])

	u3, err := u2.With(Options{"DIM": 150})
	require.NoError(t, err)
	assert.Equal(t, 150, u3.Dim())

	// The original is untouched.
	assert.Equal(t, 30, u.HIIDim())
}

func TestUserDimWarnings(t *testing.T) {
	buf := captureWarnings(t)

	_, err := NewUserParams(Options{"HII_DIM": 50, "DIM": 120})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "not an integer multiple of HII_DIM")
	assert.Contains(t, out, "less than 3*HII_DIM")
}

func TestUserChoicesByName(t *testing.T) {
	u, err := NewUserParams(Options{"HMF": "watson-z", "POWER_SPECTRUM": "BBKS"})
	require.NoError(t, err)

	assert.Equal(t, 3, u.HMF())
	assert.Equal(t, "WATSON-Z", u.HMFModel())
	assert.Equal(t, 1, u.PowerSpectrum())
}

func TestRelativeVelocitiesForceClass(t *testing.T) {
	buf := captureWarnings(t)

	u, err := NewUserParams(Options{"USE_RELATIVE_VELOCITIES": true, "POWER_SPECTRUM": 0})
	require.NoError(t, err)

	assert.Equal(t, 5, u.PowerSpectrum())
	assert.Equal(t, "CLASS", u.PowerSpectrumModel())
	assert.Equal(t, 5, u.Struct().PowerSpectrum)
	assert.Equal(t, 0, u.Snapshot()["POWER_SPECTRUM"])
	assert.Contains(t, buf.String(), "Automatically setting POWER_SPECTRUM to 5")
}

func TestUserRejectsBadGrid(t *testing.T) {
	_, err := NewUserParams(Options{"HII_DIM": 0})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewUserParams(Options{"BOX_LEN": -1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewUserParams(Options{"HMF": 7})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestIntegerFieldsRejectNonIntegralValues(t *testing.T) {
	tests := []struct {
		name  string
		build func() error
	}{
		{"fractional HII_DIM", func() error {
			_, err := NewUserParams(Options{"HII_DIM": 50.7})
			return err
		}},
		{"fractional DIM", func() error {
			_, err := NewUserParams(Options{"DIM": 200.9})
			return err
		}},
		{"boolean HII_DIM", func() error {
			_, err := NewUserParams(Options{"HII_DIM": true})
			return err
		}},
		{"fractional N_RSD_STEPS", func() error {
			_, err := NewAstroParams(Options{"N_RSD_STEPS": 20.5})
			return err
		}},
		{"fractional FIND_BUBBLE_ALGORITHM", func() error {
			_, err := NewGlobalParams(Options{"FIND_BUBBLE_ALGORITHM": 1.9})
			return err
		}},
		{"boolean HII_FILTER", func() error {
			_, err := NewGlobalParams(Options{"HII_FILTER": true})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.build(), ErrValidation)
		})
	}

	// Whole numbers still decode, whatever their Go type.
	u, err := NewUserParams(Options{"HII_DIM": 64.0, "DIM": "256"})
	require.NoError(t, err)
	assert.Equal(t, 64, u.HIIDim())
	assert.Equal(t, 256, u.Dim())

	g, err := NewGlobalParams(Options{"FIND_BUBBLE_ALGORITHM": 1.0})
	require.NoError(t, err)
	assert.Equal(t, 1, g.FindBubbleAlgorithm)
}

func TestUserRejectsOversizedGrid(t *testing.T) {
	_, err := NewUserParams(Options{"DIM": MaxGridDim + 1})
	assert.ErrorIs(t, err, ErrValidation)

	// The derived DIM is bounded too.
	_, err = NewUserParams(Options{"HII_DIM": MaxGridDim/dimFactor + 1})
	assert.ErrorIs(t, err, ErrValidation)

	u, err := NewUserParams(Options{"HII_DIM": MaxGridDim / dimFactor})
	require.NoError(t, err)
	d := int64(MaxGridDim)
	assert.Equal(t, d*d*d, u.TotFFTNumPixels())
	assert.Positive(t, u.HIITotNumPixels())
}

func mixedCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i%2 == 0 {
			b.WriteString(strings.ToLower(string(r)))
		} else {
			b.WriteString(strings.ToUpper(string(r)))
		}
	}
	return b.String()
}

func TestChoiceResolve(t *testing.T) {
	for _, c := range []Choice{HMFChoice, PowerSpectrumChoice} {
		t.Run(c.Field(), func(t *testing.T) {
			for code, name := range c.Names() {
				for _, in := range []interface{}{
					name, strings.ToLower(name), mixedCase(name), " " + name + " ",
					code, int64(code), float64(code),
				} {
					got, err := c.Resolve(in)
					require.NoError(t, err, "%#v", in)
					assert.Equal(t, code, got, "%#v", in)
				}

				back, err := c.Name(code)
				require.NoError(t, err)
				assert.Equal(t, name, back)
			}

			for _, in := range []interface{}{-1, c.Len(), 1.5, true, "nope", "1", nil} {
				_, err := c.Resolve(in)
				assert.ErrorIs(t, err, ErrValidation, fmt.Sprintf("%#v", in))
			}

			for _, code := range []int{-1, c.Len()} {
				_, err := c.Name(code)
				assert.ErrorIs(t, err, ErrValidation)
			}
		})
	}
}

func TestFlagDefaults(t *testing.T) {
	f := DefaultFlagOptions()

	assert.Equal(t, FlagStruct{}, f.Struct())
}

func TestMassDependentZetaForcesMMinInMass(t *testing.T) {
	f, err := NewFlagOptions(Options{"USE_MASS_DEPENDENT_ZETA": true, "M_MIN_in_Mass": false})
	require.NoError(t, err)

	assert.True(t, f.MMinInMass())
	assert.True(t, f.Struct().MMinInMass)
	assert.Equal(t, false, f.Snapshot()["M_MIN_in_Mass"])

	off, err := f.With(Options{"USE_MASS_DEPENDENT_ZETA": false})
	require.NoError(t, err)
	assert.False(t, off.MMinInMass())
}

func TestSubcellRSDWithoutTsFluctWarns(t *testing.T) {
	buf := captureWarnings(t)

	_, err := NewFlagOptions(Options{"SUBCELL_RSD": true})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "SUBCELL_RSD")
}

func TestAstroDefaults(t *testing.T) {
	a := DefaultAstroParams()

	assert.Equal(t, 30.0, a.HIIEffFactor())
	assert.Equal(t, 0.5, a.AlphaStar())
	assert.Equal(t, -0.5, a.AlphaEsc())
	assert.Equal(t, 500.0, a.NuXThresh())
	assert.Equal(t, 1.0, a.XRaySpecIndex())
	assert.Equal(t, 0.5, a.TStar())
	assert.Equal(t, 20, a.NRSDSteps())
	assert.Equal(t, 15.0, a.RBubbleMax())
	assert.False(t, a.InhomoReco())
}

func TestAstroLogFieldsAreLinear(t *testing.T) {
	a, err := NewAstroParams(Options{"F_STAR10": -1.3, "L_X": 40.5, "M_TURN": 9})
	require.NoError(t, err)

	assert.Equal(t, math.Pow(10, -1.3), a.FStar10())
	assert.Equal(t, math.Pow(10, -1.0), a.FEsc10())
	assert.Equal(t, math.Pow(10, 40.5), a.LX())
	assert.Equal(t, math.Pow(10, 9), a.MTurn())
	assert.Equal(t, math.Pow(10, 4.69897), a.IonTvirMin())

	snap := a.Snapshot()
	assert.Equal(t, -1.3, snap["F_STAR10"])
	assert.Equal(t, 40.5, snap["L_X"])
}

func TestXRayTvirMinFallsBackToIon(t *testing.T) {
	a, err := NewAstroParams(Options{"ION_Tvir_MIN": 5})
	require.NoError(t, err)
	assert.Equal(t, a.IonTvirMin(), a.XRayTvirMin())
	assert.Nil(t, a.Snapshot()["X_RAY_Tvir_MIN"])

	b, err := a.With(Options{"ION_Tvir_MIN": 4.5})
	require.NoError(t, err)
	assert.Equal(t, math.Pow(10, 4.5), b.XRayTvirMin())

	c, err := b.With(Options{"X_RAY_Tvir_MIN": 6})
	require.NoError(t, err)
	assert.Equal(t, math.Pow(10, 6), c.XRayTvirMin())
	assert.Equal(t, math.Pow(10, 4.5), c.IonTvirMin())
}

func TestRBubbleMaxDefaults(t *testing.T) {
	homo, err := NewAstroParams(nil)
	require.NoError(t, err)
	assert.Equal(t, 15.0, homo.RBubbleMax())

	inhomo, err := homo.WithInhomoReco(true)
	require.NoError(t, err)
	assert.Equal(t, 50.0, inhomo.RBubbleMax())

	explicit, err := NewAstroParams(Options{"R_BUBBLE_MAX": 25})
	require.NoError(t, err)
	assert.Equal(t, 25.0, explicit.RBubbleMax())
}

func TestRBubbleMaxWarnsWithInhomoReco(t *testing.T) {
	buf := captureWarnings(t)

	a, err := NewAstroParams(Options{"INHOMO_RECO": true, "R_BUBBLE_MAX": 30})
	require.NoError(t, err)
	assert.Equal(t, 30.0, a.RBubbleMax())
	assert.Contains(t, buf.String(), "R_BUBBLE_MAX != 50")

	buf.Reset()
	_, err = NewAstroParams(Options{"INHOMO_RECO": true, "R_BUBBLE_MAX": 50})
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestAstroFollowsFlags(t *testing.T) {
	flags, err := NewFlagOptions(Options{"INHOMO_RECO": true})
	require.NoError(t, err)

	a, err := NewAstroParamsForFlags(Options{"HII_EFF_FACTOR": 40}, flags)
	require.NoError(t, err)
	assert.True(t, a.InhomoReco())
	assert.Equal(t, 50.0, a.RBubbleMax())

	_, err = NewAstroParamsForFlags(Options{"INHOMO_RECO": false}, flags)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestAstroRejectsBadValues(t *testing.T) {
	_, err := NewAstroParams(Options{"t_STAR": 1.5})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewAstroParams(Options{"N_RSD_STEPS": 0})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewAstroParams(Options{"R_BUBBLE_MAX": -3})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSnapshotRoundTrip(t *testing.T) {
	cosmo, err := NewCosmoParams(Options{"SIGMA_8": 0.8, "hlittle": 0.7})
	require.NoError(t, err)
	again, err := NewCosmoParams(cosmo.Snapshot())
	require.NoError(t, err)
	assert.True(t, cosmo.Equal(again))

	user, err := NewUserParams(Options{"HII_DIM": 64, "HMF": "PS", "USE_RELATIVE_VELOCITIES": true})
	require.NoError(t, err)
	userAgain, err := NewUserParams(user.Snapshot())
	require.NoError(t, err)
	assert.True(t, user.Equal(userAgain))

	astro, err := NewAstroParams(Options{"F_STAR10": -1.1, "X_RAY_Tvir_MIN": 5.2, "INHOMO_RECO": true})
	require.NoError(t, err)
	astroAgain, err := NewAstroParams(astro.Snapshot())
	require.NoError(t, err)
	assert.True(t, astro.Equal(astroAgain))
	assert.Equal(t, astro.Struct(), astroAgain.Struct())

	flags, err := NewFlagOptions(Options{"USE_MASS_DEPENDENT_ZETA": true, "USE_TS_FLUCT": true})
	require.NoError(t, err)
	flagsAgain, err := NewFlagOptions(flags.Snapshot())
	require.NoError(t, err)
	assert.True(t, flags.Equal(flagsAgain))
}

func TestEqualDistinguishesValues(t *testing.T) {
	a := DefaultCosmoParams()
	b, err := a.With(Options{"SIGMA_8": 0.9})
	require.NoError(t, err)

	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(DefaultCosmoParams()))
	assert.False(t, a.Equal(nil))
}

func TestStringIsSortedAndStable(t *testing.T) {
	c := DefaultCosmoParams()
	assert.Equal(t,
		"CosmoParams(OMb:0.0486, OMm:0.3075, POWER_INDEX:0.97, SIGMA_8:0.82, hlittle:0.6774)",
		c.String())

	u := DefaultUserParams()
	assert.Contains(t, u.String(), "DIM:unset")
}

func TestFieldsForEveryGroup(t *testing.T) {
	want := map[string]int{
		GroupCosmo: 5,
		GroupUser:  7,
		GroupAstro: 15,
		GroupFlags: 6,
	}
	for group, n := range want {
		fields, err := FieldsFor(group)
		require.NoError(t, err)
		assert.Len(t, fields, n, group)
	}

	_, err := FieldsFor("nope")
	assert.ErrorIs(t, err, ErrConfiguration)

	global, err := FieldsFor(GroupGlobal)
	require.NoError(t, err)
	names := make([]string, 0, len(global))
	for _, f := range global {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "Z_HEAT_MAX")
	assert.Contains(t, names, "external_table_path")

	assert.Len(t, DefaultAstroParams().Fields(), 15)
	assert.Len(t, DefaultGlobalParams().Fields(), len(global))
}

func TestFieldDefaultsMatchGroupDefaults(t *testing.T) {
	snap := DefaultCosmoParams().Snapshot()
	for _, f := range CosmoFields() {
		assert.Equal(t, f.Default, snap[f.Name], f.Name)
	}

	astro := DefaultAstroParams().Snapshot()
	for _, f := range AstroFields() {
		assert.Equal(t, f.Default, astro[f.Name], f.Name)
	}

	got := map[string]bool{}
	for _, f := range AstroFields() {
		if f.Log {
			got[f.Name] = true
		}
	}
	want := map[string]bool{
		"F_STAR10": true, "F_ESC10": true, "M_TURN": true,
		"ION_Tvir_MIN": true, "L_X": true, "X_RAY_Tvir_MIN": true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("log fields mismatch (-want +got):\n%s", diff)
	}
}
