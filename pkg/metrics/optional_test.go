package metrics

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatOf_RejectsNonFinite(t *testing.T) {
	assert.False(t, FloatOf(math.NaN()).Valid())
	assert.False(t, FloatOf(math.Inf(1)).Valid())
	assert.False(t, FloatOf(math.Inf(-1)).Valid())

	// Zero is a legitimate value, distinct from absent.
	v, ok := FloatOf(0).Get()
	require.True(t, ok)
	assert.Zero(t, v)
}

func TestFloat_AbsentIsNotZero(t *testing.T) {
	absent := Absent()

	assert.False(t, absent.Valid())

	_, ok := absent.Get()
	assert.False(t, ok)

	assert.InDelta(t, 7.5, absent.Or(7.5), 0.001)
}

func TestFloat_MapPreservesAbsence(t *testing.T) {
	double := func(v float64) float64 { return v * 2 }

	doubled, ok := FloatOf(21).Map(double).Get()
	require.True(t, ok)
	assert.InDelta(t, 42, doubled, 0.001)

	assert.False(t, Absent().Map(double).Valid())
}

func TestFloat_JSONRoundTrip(t *testing.T) {
	type record struct {
		Present Float `json:"present"`
		Missing Float `json:"missing"`
	}

	in := record{Present: FloatOf(12.5)}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"present":12.5,"missing":null}`, string(data))

	var out record
	require.NoError(t, json.Unmarshal(data, &out))

	v, ok := out.Present.Get()
	require.True(t, ok)
	assert.InDelta(t, 12.5, v, 0.001)
	assert.False(t, out.Missing.Valid())
}

func TestFloat_UnmarshalRejectsStrings(t *testing.T) {
	var f Float

	assert.Error(t, json.Unmarshal([]byte(`"12"`), &f))
}

func TestSumMeanMax(t *testing.T) {
	values := []Float{FloatOf(2), Absent(), FloatOf(4), FloatOf(6)}

	sum, ok := Sum(values...).Get()
	require.True(t, ok)
	assert.InDelta(t, 12, sum, 0.001)

	mean, ok := Mean(values...).Get()
	require.True(t, ok)
	assert.InDelta(t, 4, mean, 0.001)

	maxV, ok := Max(values...).Get()
	require.True(t, ok)
	assert.InDelta(t, 6, maxV, 0.001)
}

func TestSumMeanMax_AllAbsent(t *testing.T) {
	// Zero contributors propagate absence, never a fake zero.
	assert.False(t, Sum(Absent(), Absent()).Valid())
	assert.False(t, Mean().Valid())
	assert.False(t, Max(Absent()).Valid())
}

func TestLatencyGroup_Valid(t *testing.T) {
	full := LatencyGroup{
		Mean:          FloatOf(1),
		P95:           FloatOf(2),
		P99:           FloatOf(3),
		Count:         FloatOf(4),
		OneMinuteRate: FloatOf(5),
	}
	assert.True(t, full.Valid())

	partial := full
	partial.P99 = Absent()
	assert.False(t, partial.Valid())

	assert.False(t, (LatencyGroup{}).Valid())
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0 B"},
		{512, "512.0 B"},
		{1536, "1.5 KiB"},
		{1610612736, "1.5 GiB"},
		{2199023255552, "2.0 TiB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.in))
	}
}

func TestFormatBytesOpt(t *testing.T) {
	assert.Equal(t, "1.5 KiB", FormatBytesOpt(FloatOf(1536)))
	assert.Empty(t, FormatBytesOpt(Absent()))
}
