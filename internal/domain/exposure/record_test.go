package exposure

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ToxPredict/pkg/errors"
)

func validInputs() map[string]any {
	return map[string]any{
		KeyTemperature:   "25",
		KeyLight:         "1000",
		KeyTime:          7.0,
		KeyConcentration: json.Number("12.5"),
		KeySpecies:       "Daphnia magna",
		KeyHabitat:       "Freshwater",
	}
}

func TestBuild_Valid(t *testing.T) {
	rec, err := Build(validInputs())
	require.NoError(t, err)

	assert.Equal(t, 25.0, rec[FieldTemperature])
	assert.Equal(t, 1000.0, rec[FieldLight])
	assert.Equal(t, 7.0, rec[FieldExposureTime])
	assert.Equal(t, 12.5, rec[FieldConcentration])
	assert.Equal(t, "Daphnia magna", rec[FieldSpecies])
	assert.Equal(t, "Freshwater", rec[FieldHabitat])
}

func TestBuild_NumericErrors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
		drop  bool
	}{
		{"not_a_number", KeyTemperature, "warm", false},
		{"empty_string", KeyLight, "", false},
		{"missing", KeyTime, nil, true},
		{"nil_value", KeyConcentration, nil, false},
		{"unsupported_type", KeyTemperature, []int{1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInputs()
			if tt.drop {
				delete(in, tt.key)
			} else {
				in[tt.key] = tt.value
			}
			rec, err := Build(in)
			require.Error(t, err)
			assert.Nil(t, rec)
			assert.True(t, errors.IsCode(err, errors.ErrCodeInputInvalid))
			assert.Equal(t, "Numerical fields error", errors.MessageOf(err))
		})
	}
}

func TestBuild_MissingCategoricalStaysAbsent(t *testing.T) {
	in := validInputs()
	delete(in, KeySpecies)
	rec, err := Build(in)
	require.NoError(t, err)
	_, ok := rec.Value(FieldSpecies)
	assert.False(t, ok)
}

func TestRecord_Number(t *testing.T) {
	rec := Record{"a": "3.5", "b": "x", "c": nil}

	v, present, err := rec.Number("a")
	assert.True(t, present)
	assert.NoError(t, err)
	assert.Equal(t, 3.5, v)

	_, present, err = rec.Number("b")
	assert.True(t, present)
	assert.Error(t, err)

	_, present, err = rec.Number("c")
	assert.False(t, present)
	assert.NoError(t, err)

	_, present, _ = rec.Number("missing")
	assert.False(t, present)
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{" 42 ", 42},
		{"1e3", 1000},
		{int64(7), 7},
		{float32(0.5), 0.5},
		{true, 1},
		{"1e400", math.Inf(1)},
	}
	for _, tt := range tests {
		got, err := ParseNumeric(tt.in)
		require.NoError(t, err, "%v", tt.in)
		assert.Equal(t, tt.want, got)
	}

	nan, err := ParseNumeric("nan")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(nan))
}

func TestFormatFloat(t *testing.T) {
	a, b := 0.1, 0.2
	tests := []struct {
		in   float64
		want string
	}{
		{45, "45.0"},
		{-3, "-3.0"},
		{0, "0.0"},
		{0.65, "0.65"},
		{12.5, "12.5"},
		{a + b, "0.30000000000000004"},
		{1e16, "1e+16"},
		{1.5e-5, "1.5e-05"},
		{0.0001, "0.0001"},
		{123456789012345.0, "123456789012345.0"},
		{math.NaN(), "nan"},
		{math.Inf(-1), "-inf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFloat(tt.in))
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "None", Format(nil))
	assert.Equal(t, "Fish", Format("Fish"))
	assert.Equal(t, "3.0", Format(3.0))
	assert.Equal(t, "True", Format(true))
	assert.Equal(t, "7", Format(7))
	assert.Equal(t, "1.50", FormatFixed2(1.5))
	assert.Equal(t, "inf", FormatFixed2(math.Inf(1)))
}

func TestFieldLists(t *testing.T) {
	assert.Equal(t, []string{FieldTemperature, FieldLight, FieldExposureTime, FieldConcentration}, NumericFields())
	assert.Equal(t, []string{FieldSpecies, FieldHabitat}, CategoricalFields())
}

//Personal.AI order the ending
