package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInputSetDefaults(t *testing.T) {
	t.Cleanup(ResetGlobal)

	s, err := NewInputSet(GroupOptions{})
	require.NoError(t, err)

	assert.True(t, s.Equal(DefaultInputSet()))
	assert.Equal(t, 200, s.Resolve().User.Dim)
	assert.Equal(t, 15.0, s.Resolve().Astro.RBubbleMax)
}

func TestInputSetAstroFollowsFlags(t *testing.T) {
	s, err := NewInputSet(GroupOptions{
		Flags: Options{"INHOMO_RECO": true},
	})
	require.NoError(t, err)
	assert.True(t, s.Astro.InhomoReco())
	assert.Equal(t, 50.0, s.Resolve().Astro.RBubbleMax)

	_, err = NewInputSet(GroupOptions{
		Flags: Options{"INHOMO_RECO": true},
		Astro: Options{"INHOMO_RECO": false},
	})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestInputSetCopiesGlobal(t *testing.T) {
	t.Cleanup(ResetGlobal)

	s, err := NewInputSet(GroupOptions{Global: Options{"Z_HEAT_MAX": 28}})
	require.NoError(t, err)
	assert.Equal(t, 28.0, s.Global.ZHeatMax)
	// The process-wide instance is not written.
	assert.Equal(t, 35.0, Global().ZHeatMax)

	Global().ClumpingFactor = 9
	assert.Equal(t, 2.0, s.Global.ClumpingFactor)
}

func TestInputSetSnapshotRebuilds(t *testing.T) {
	s, err := NewInputSet(GroupOptions{
		Cosmo: Options{"SIGMA_8": 0.81},
		User:  Options{"HII_DIM": 32, "HMF": "WATSON"},
		Astro: Options{"L_X": 40.3},
		Flags: Options{"USE_MASS_DEPENDENT_ZETA": true, "INHOMO_RECO": true},
	})
	require.NoError(t, err)

	again, err := NewInputSet(s.Snapshot())
	require.NoError(t, err)
	assert.True(t, s.Equal(again))
	assert.Equal(t, s.Resolve(), again.Resolve())
	assert.Equal(t, s.ID(), again.ID())
}

func TestInputSetID(t *testing.T) {
	a := DefaultInputSet()
	b := DefaultInputSet()
	b.Global.ExternalTablePath = "/elsewhere"
	assert.Equal(t, a.ID(), b.ID())

	c, err := NewInputSet(GroupOptions{Cosmo: Options{"SIGMA_8": 0.9}})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), c.ID())
	assert.Equal(t, 5, int(a.ID().Version()))
}
