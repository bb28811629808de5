package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picogrid/reionsim/pkg/params"
)

const sampleInputs = `
cosmo:
  SIGMA_8: 0.81
user:
  HII_DIM: 32
  HMF: watson
astro:
  L_X: 40.5
flags:
  INHOMO_RECO: true
global:
  Z_HEAT_MAX: 30
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseInputsSections(t *testing.T) {
	f, err := ParseInputs([]byte(sampleInputs))
	require.NoError(t, err)

	assert.Equal(t, 0.81, f.Cosmo["SIGMA_8"])
	assert.Equal(t, 32, f.User["HII_DIM"])
	assert.Equal(t, "watson", f.User["HMF"])
	assert.Equal(t, true, f.Flags["INHOMO_RECO"])
	assert.Equal(t, 30, f.Global["Z_HEAT_MAX"])
}

func TestParseInputsEmpty(t *testing.T) {
	f, err := ParseInputs(nil)
	require.NoError(t, err)
	assert.Equal(t, &InputsFile{}, f)
}

func TestParseInputsRejectsUnknownSection(t *testing.T) {
	_, err := ParseInputs([]byte("cosmology:\n  SIGMA_8: 0.8\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownConfigField)
	assert.ErrorIs(t, err, params.ErrConfiguration)
}

func TestParseInputsRejectsTrailingDocument(t *testing.T) {
	_, err := ParseInputs([]byte("cosmo: {}\n---\nuser: {}\n"))
	assert.ErrorIs(t, err, params.ErrConfiguration)
}

func TestLoadInputsUnknownFieldFromParams(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.inputs.yaml", "user:\n  HII_DIMS: 32\n")

	_, err := LoadInputs(path)
	assert.ErrorIs(t, err, params.ErrConfiguration)
}

func TestLoadInputsBuildsSet(t *testing.T) {
	t.Cleanup(params.ResetGlobal)
	path := writeFile(t, t.TempDir(), "run.inputs.yaml", sampleInputs)

	s, err := LoadInputs(path)
	require.NoError(t, err)

	assert.Equal(t, 0.81, s.Cosmo.Sigma8())
	assert.Equal(t, 128, s.User.Dim())
	assert.Equal(t, "WATSON", s.User.HMFModel())
	assert.True(t, s.Astro.InhomoReco())
	assert.Equal(t, 50.0, s.Astro.RBubbleMax())
	assert.Equal(t, 30.0, s.Global.ZHeatMax)
}

func TestLoadInputsMissingDefaultGivesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	s, err := LoadInputs("")
	require.NoError(t, err)
	assert.True(t, s.Equal(params.DefaultInputSet()))
}

func TestLoadInputsMissingExplicitFileFails(t *testing.T) {
	_, err := LoadInputs(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Cleanup(params.ResetGlobal)

	s, err := params.NewInputSet(params.GroupOptions{
		User:  params.Options{"HII_DIM": 40, "USE_RELATIVE_VELOCITIES": true},
		Astro: params.Options{"F_STAR10": -1.2, "X_RAY_Tvir_MIN": 5.0},
		Flags: params.Options{"USE_MASS_DEPENDENT_ZETA": true},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "saved.inputs.yaml")
	require.NoError(t, SaveInputsFile(path, FromInputSet(s)))

	again, err := LoadInputs(path)
	require.NoError(t, err)
	assert.True(t, s.Equal(again))
	assert.Equal(t, s.ID(), again.ID())
}

func TestEnvOverrides(t *testing.T) {
	got, err := EnvOverrides([]string{
		"REIONSIM_USER_HII_DIM=64",
		"REIONSIM_USER_HMF=2",
		"REIONSIM_COSMO_HLITTLE=0.7",
		"REIONSIM_FLAGS_use_ts_fluct=true",
		"REIONSIM_LOG_LEVEL=debug",
		"PATH=/usr/bin",
	})
	require.NoError(t, err)

	assert.Equal(t, params.Options{"HII_DIM": "64", "HMF": 2}, got.User)
	assert.Equal(t, params.Options{"hlittle": "0.7"}, got.Cosmo)
	assert.Equal(t, params.Options{"USE_TS_FLUCT": "true"}, got.Flags)
	assert.Nil(t, got.Astro)
	assert.Nil(t, got.Global)
}

func TestEnvOverridesUnknownField(t *testing.T) {
	_, err := EnvOverrides([]string{"REIONSIM_ASTRO_ZETA=30"})
	assert.ErrorIs(t, err, params.ErrConfiguration)
}

func TestLoadInputsAppliesEnv(t *testing.T) {
	t.Cleanup(params.ResetGlobal)
	path := writeFile(t, t.TempDir(), "run.inputs.yaml", sampleInputs)
	t.Setenv("REIONSIM_USER_HII_DIM", "16")
	t.Setenv("REIONSIM_GLOBAL_Z_HEAT_MAX", "25")

	s, err := LoadInputs(path)
	require.NoError(t, err)
	assert.Equal(t, 16, s.User.HIIDim())
	assert.Equal(t, 25.0, s.Global.ZHeatMax)
	// Untouched values still come from the file.
	assert.Equal(t, 0.81, s.Cosmo.Sigma8())
}

func TestSchemaListsSections(t *testing.T) {
	data, err := SchemaJSON()
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	props, ok := doc["properties"].(map[string]interface{})
	require.True(t, ok, "schema has no properties")

	for _, section := range []string{"cosmo", "user", "astro", "flags", "global"} {
		assert.Contains(t, props, section)
	}
	assert.Equal(t, "reionsim inputs", doc["title"])
}

func TestWatchInputsFileReloads(t *testing.T) {
	t.Cleanup(params.ResetGlobal)
	prev := WatchDebounce
	WatchDebounce = 50 * time.Millisecond
	t.Cleanup(func() { WatchDebounce = prev })

	dir := t.TempDir()
	path := writeFile(t, dir, "watched.inputs.yaml", "user:\n  HII_DIM: 32\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type result struct {
		set *params.InputSet
		err error
	}
	results := make(chan result, 8)
	done := make(chan error, 1)
	go func() {
		done <- WatchInputsFile(ctx, path, func(s *params.InputSet, err error) {
			results <- result{s, err}
		})
	}()

	// Give the watcher time to register before changing the file.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "watched.inputs.yaml", "user:\n  HII_DIM: 48\n")

	deadline := time.After(5 * time.Second)
	for reloaded := false; !reloaded; {
		select {
		case r := <-results:
			// A reload may observe the file mid-write; wait for the final one.
			reloaded = r.err == nil && r.set.User.HIIDim() == 48
		case <-deadline:
			t.Fatal("no reload after the inputs file changed")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchInputsFileDropsPendingReloadOnStop(t *testing.T) {
	prev := WatchDebounce
	WatchDebounce = 300 * time.Millisecond
	t.Cleanup(func() { WatchDebounce = prev })

	dir := t.TempDir()
	path := writeFile(t, dir, "watched.inputs.yaml", "user:\n  HII_DIM: 32\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var returned, late atomic.Bool
	done := make(chan error, 1)
	go func() {
		err := WatchInputsFile(ctx, path, func(*params.InputSet, error) {
			if returned.Load() {
				late.Store(true)
			}
		})
		returned.Store(true)
		done <- err
	}()

	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "watched.inputs.yaml", "user:\n  HII_DIM: 48\n")
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}

	// Outlive the debounce so a leaked timer would have fired.
	time.Sleep(2 * WatchDebounce)
	assert.False(t, late.Load(), "reload ran after the watcher returned")
}
