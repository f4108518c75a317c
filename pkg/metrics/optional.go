// Package metrics pkg/metrics/optional.go
package metrics

import (
	"bytes"
	"encoding/json"
	"math"
)

// Float is an optional float64. The zero value is absent. An absent field
// means "could not be queried", never zero; aggregation code must check
// Valid before using the value.
type Float struct {
	value float64
	valid bool
}

var nullBytes = []byte("null")

// FloatOf returns a present Float. NaN and infinities are rejected and
// collapse to absent so they can never leak into aggregation math.
func FloatOf(v float64) Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Float{}
	}

	return Float{value: v, valid: true}
}

// Absent returns an absent Float.
func Absent() Float {
	return Float{}
}

// Valid reports whether the value is present.
func (f Float) Valid() bool {
	return f.valid
}

// Get returns the value and whether it is present.
func (f Float) Get() (float64, bool) {
	return f.value, f.valid
}

// Or returns the value if present, otherwise def.
func (f Float) Or(def float64) float64 {
	if !f.valid {
		return def
	}

	return f.value
}

// Map applies fn to a present value and leaves an absent one untouched.
func (f Float) Map(fn func(float64) float64) Float {
	if !f.valid {
		return f
	}

	return FloatOf(fn(f.value))
}

// Round returns the value rounded to the nearest integer, absent-preserving.
func (f Float) Round() Float {
	return f.Map(math.Round)
}

// MarshalJSON encodes a present value as a number and an absent one as null.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.valid {
		return nullBytes, nil
	}

	return json.Marshal(f.value)
}

// UnmarshalJSON decodes null as absent and a number as present.
func (f *Float) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), nullBytes) {
		*f = Float{}
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	*f = FloatOf(v)

	return nil
}

// Sum adds all present values. With zero present values the result is
// absent, never zero.
func Sum(values ...Float) Float {
	var (
		total float64
		n     int
	)

	for _, v := range values {
		if v.valid {
			total += v.value
			n++
		}
	}

	if n == 0 {
		return Float{}
	}

	return FloatOf(total)
}

// Mean averages all present values; absent when none are present.
func Mean(values ...Float) Float {
	var (
		total float64
		n     int
	)

	for _, v := range values {
		if v.valid {
			total += v.value
			n++
		}
	}

	if n == 0 {
		return Float{}
	}

	return FloatOf(total / float64(n))
}

// Max returns the largest present value; absent when none are present.
func Max(values ...Float) Float {
	var (
		best  float64
		found bool
	)

	for _, v := range values {
		if !v.valid {
			continue
		}

		if !found || v.value > best {
			best = v.value
			found = true
		}
	}

	if !found {
		return Float{}
	}

	return FloatOf(best)
}
