// Package params defines the input parameter groups consumed by the
// reionization simulation engine: cosmology, user/grid settings,
// astrophysics, feature flags and the process-wide global parameters.
//
// Every group is built from Options keyed by the engine's field names.
// Unknown keys fail with ErrConfiguration, out-of-range enumerated values
// with ErrValidation. Groups are immutable once built; derived values
// (DIM, R_BUBBLE_MAX, M_MIN_in_Mass, ...) are computed by their getters
// from the stored inputs on every call.
package params
