package params

import (
	"strings"

	"github.com/google/uuid"
)

// inputSetNamespace scopes the name-based IDs of input sets.
var inputSetNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/picogrid/reionsim/inputs"))

// GroupOptions carries raw options for every group.
type GroupOptions struct {
	Cosmo  Options
	User   Options
	Astro  Options
	Flags  Options
	Global Options
}

// InputSet is everything one engine run consumes. Global is a copy, so a
// run is unaffected by later writes to the process-wide instance.
type InputSet struct {
	Cosmo  *CosmoParams
	User   *UserParams
	Astro  *AstroParams
	Flags  *FlagOptions
	Global GlobalParams
}

// EngineInputs is the fully resolved form of an InputSet.
type EngineInputs struct {
	Cosmo  CosmoStruct
	User   UserStruct
	Astro  AstroStruct
	Flags  FlagStruct
	Global GlobalParams
}

// DefaultInputSet returns defaults for every group and a copy of the
// current process-wide globals.
func DefaultInputSet() *InputSet {
	return &InputSet{
		Cosmo:  DefaultCosmoParams(),
		User:   DefaultUserParams(),
		Astro:  DefaultAstroParams(),
		Flags:  DefaultFlagOptions(),
		Global: *Global(),
	}
}

// NewInputSet builds every group. Astro takes INHOMO_RECO from the flags.
// Global options are applied on top of the current process-wide globals.
func NewInputSet(o GroupOptions) (*InputSet, error) {
	cosmo, err := NewCosmoParams(o.Cosmo)
	if err != nil {
		return nil, err
	}
	user, err := NewUserParams(o.User)
	if err != nil {
		return nil, err
	}
	flags, err := NewFlagOptions(o.Flags)
	if err != nil {
		return nil, err
	}
	astro, err := NewAstroParamsForFlags(o.Astro, flags)
	if err != nil {
		return nil, err
	}
	global, err := Global().With(o.Global)
	if err != nil {
		return nil, err
	}

	return &InputSet{
		Cosmo:  cosmo,
		User:   user,
		Astro:  astro,
		Flags:  flags,
		Global: global,
	}, nil
}

// Snapshot returns the options that rebuild s.
func (s *InputSet) Snapshot() GroupOptions {
	return GroupOptions{
		Cosmo:  s.Cosmo.Snapshot(),
		User:   s.User.Snapshot(),
		Astro:  s.Astro.Snapshot(),
		Flags:  s.Flags.Snapshot(),
		Global: s.Global.Snapshot(),
	}
}

// Equal reports whether every group of s and o holds the same values.
func (s *InputSet) Equal(o *InputSet) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Cosmo.Equal(o.Cosmo) &&
		s.User.Equal(o.User) &&
		s.Astro.Equal(o.Astro) &&
		s.Flags.Equal(o.Flags) &&
		s.Global == o.Global
}

func (s *InputSet) String() string {
	return strings.Join([]string{
		s.Cosmo.String(),
		s.User.String(),
		s.Astro.String(),
		s.Flags.String(),
		s.Global.String(),
	}, "\n")
}

// ID identifies the physical content of s. The external table path is
// left out so that the same inputs hash alike on every machine.
func (s *InputSet) ID() uuid.UUID {
	global := s.Global
	global.ExternalTablePath = ""
	canonical := strings.Join([]string{
		s.Cosmo.String(),
		s.User.String(),
		s.Astro.String(),
		s.Flags.String(),
		global.String(),
	}, "\n")
	return uuid.NewSHA1(inputSetNamespace, []byte(canonical))
}

// Resolve returns the engine-facing form of s.
func (s *InputSet) Resolve() EngineInputs {
	return EngineInputs{
		Cosmo:  s.Cosmo.Struct(),
		User:   s.User.Struct(),
		Astro:  s.Astro.Struct(),
		Flags:  s.Flags.Struct(),
		Global: s.Global,
	}
}
