package sloper

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func problemFields(t *testing.T, err error) []string {
	t.Helper()
	require.Error(t, err)
	verr, ok := err.(*ValidationError)
	require.True(t, ok, "got %T", err)
	var fields []string
	for _, p := range verr.Problems {
		fields = append(fields, p.Field)
	}
	return fields
}

func TestBuilder(t *testing.T) {
	m := example(t)
	assert.Equal(t, 60.0, m.Waist())
	assert.Equal(t, 57.0, m.HPSToWaist())
	assert.Equal(t, 57.0, m.NapeToWaist())
	assert.Equal(t, 21.0, m.ArmscyeDepth())
	assert.Equal(t, 27.0, m.NeckSize())
	assert.Equal(t, 13.0, m.Shoulder())
	assert.Equal(t, 27.0, m.XFront())

	t.Run("x_back defaults to x_front", func(t *testing.T) {
		assert.Equal(t, 27.0, m.XBack())
		assert.Zero(t, m.Fields().XBack)

		m, err := exampleBuilder().XBack(31).Build()
		require.NoError(t, err)
		assert.Equal(t, 31.0, m.XBack())
	})

	t.Run("sleeve is optional", func(t *testing.T) {
		assert.Zero(t, m.SleeveLen())
		m, err := exampleBuilder().SleeveLen(60).Build()
		require.NoError(t, err)
		assert.Equal(t, 60.0, m.SleeveLen())
	})

	t.Run("every problem is reported", func(t *testing.T) {
		_, err := NewBuilder().Waist(-5).NeckSize(math.NaN()).Shoulder(0).Build()
		fields := problemFields(t, err)
		assert.ElementsMatch(t, []string{
			"waist", "hps_to_waist", "nape_to_waist", "armscye_depth",
			"neck_size", "shoulder", "x_front",
		}, fields)
		assert.Contains(t, err.Error(), "waist must be positive, got -5")
		assert.Contains(t, err.Error(), "neck_size is not a number")
		assert.Contains(t, err.Error(), "hps_to_waist is required")
	})

	t.Run("infinite", func(t *testing.T) {
		_, err := exampleBuilder().Waist(math.Inf(1)).XBack(math.Inf(-1)).Build()
		assert.Equal(t, []string{"waist", "x_back"}, problemFields(t, err))
		assert.Contains(t, err.Error(), "waist is not finite")
	})

	t.Run("negative optional", func(t *testing.T) {
		_, err := exampleBuilder().SleeveLen(-1).Build()
		assert.Equal(t, []string{"sleeve_len"}, problemFields(t, err))
	})

	t.Run("set by name", func(t *testing.T) {
		b := exampleBuilder()
		require.NoError(t, b.Set("x_back", 29))
		m, err := b.Build()
		require.NoError(t, err)
		assert.Equal(t, 29.0, m.XBack())

		err = b.Set("hips", 90)
		assert.Equal(t, []string{"hips"}, problemFields(t, err))
	})
}

func TestFieldsBuild(t *testing.T) {
	f := example(t).Fields()
	m, err := f.Build()
	require.NoError(t, err)
	assert.Equal(t, example(t), m)

	f.Waist = 0
	_, err = f.Build()
	assert.Equal(t, []string{"waist"}, problemFields(t, err))
}

func TestParseMeasurements(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		m, err := ParseMeasurements([]string{
			"waist=60", "hps_to_waist=57", "nape_to_waist=57", "armscye_depth=21",
			"neck_size=27", "shoulder=13", " X_FRONT = 27 ", "sleeve_len=60",
		})
		require.NoError(t, err)
		assert.Equal(t, 27.0, m.XFront())
		assert.Equal(t, 60.0, m.SleeveLen())
	})

	type test struct {
		tokens []string
		fields []string
	}
	tt := []test{
		{[]string{}, []string{"waist", "hps_to_waist", "nape_to_waist", "armscye_depth", "neck_size", "shoulder", "x_front"}},
		{[]string{"waist"}, []string{"waist", "waist", "hps_to_waist", "nape_to_waist", "armscye_depth", "neck_size", "shoulder", "x_front"}},
		{[]string{"waist=6o", "hps_to_waist=57", "nape_to_waist=57", "armscye_depth=21", "neck_size=27", "shoulder=13", "x_front=27"}, []string{"waist", "waist"}},
		{[]string{"waist=60", "hps_to_waist=57", "nape_to_waist=57", "armscye_depth=21", "neck_size=27", "shoulder=13", "x_front=27", "hips=90"}, []string{"hips"}},
		{[]string{"waist=Inf", "hps_to_waist=57", "nape_to_waist=57", "armscye_depth=21", "neck_size=27", "shoulder=13", "x_front=27"}, []string{"waist"}},
		{[]string{"waist=60", "hps_to_waist=57", "nape_to_waist=57", "armscye_depth=21", "neck_size=27", "shoulder=13", "x_front=-inf"}, []string{"x_front"}},
	}
	for _, tc := range tt {
		_, err := ParseMeasurements(tc.tokens)
		assert.Equal(t, tc.fields, problemFields(t, err), "%v", tc.tokens)
	}
}
