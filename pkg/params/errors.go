package params

import "errors"

var (
	// ErrConfiguration is returned for unrecognized option names, missing
	// required fields and options that conflict across groups.
	ErrConfiguration = errors.New("configuration error")

	// ErrValidation is returned when a value lies outside its allowed set
	// or range.
	ErrValidation = errors.New("validation error")
)
