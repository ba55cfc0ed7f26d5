package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
	assert.Equal(t, 5.0, Mean([]float64{5}))
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev([]float64{42}))
	assert.InDelta(t, 2.0, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
}

func TestQuantile(t *testing.T) {
	values := []float64{1, 2, 3, 4}

	assert.Equal(t, 1.0, Quantile(values, 0))
	assert.Equal(t, 4.0, Quantile(values, 1))
	assert.InDelta(t, 2.5, Quantile(values, 0.5), 1e-9)
	assert.InDelta(t, 1.75, Quantile(values, 0.25), 1e-9)

	// Out-of-range quantiles are clamped
	assert.Equal(t, 1.0, Quantile(values, -0.5))
	assert.Equal(t, 4.0, Quantile(values, 2))
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 3.0, Median([]float64{5, 1, 3}))
	assert.InDelta(t, 2.5, Median([]float64{4, 1, 2, 3}), 1e-9)
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, 0.0, Min(nil))
	assert.Equal(t, 0.0, Max(nil))
	assert.Equal(t, 1.0, Min([]float64{3, 1, 2}))
	assert.Equal(t, 3.0, Max([]float64{3, 1, 2}))
}
