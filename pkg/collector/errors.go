package collector

import "errors"

var (
	ErrNotANumber   = errors.New("attribute value is not numeric")
	ErrMissingField = errors.New("composite value is missing a named field")
)
