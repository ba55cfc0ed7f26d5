package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineDistance(t *testing.T) {
	// 0.1 degree of latitude is roughly 11.1 km
	dist := HaversineDistance(46.0, 7.0, 46.1, 7.0)
	assert.InDelta(t, 11100.0, dist, 500.0)
}

func TestHaversineDistanceZero(t *testing.T) {
	assert.InDelta(t, 0.0, HaversineDistance(46.0, 7.0, 46.0, 7.0), 1e-6)
}

func TestPathLength(t *testing.T) {
	points := []Point{
		{Lat: 46.0, Lon: 7.0},
		{Lat: 46.01, Lon: 7.0},
		{Lat: 46.01, Lon: 7.01},
	}

	// Roughly 1.1 km north plus 0.77 km east
	assert.InDelta(t, 1880.0, PathLength(points), 300.0)
	assert.Equal(t, 0.0, PathLength(points[:1]))
}

func TestCentroid(t *testing.T) {
	points := []Point{
		{Lat: 46.0, Lon: 7.0},
		{Lat: 46.2, Lon: 7.4},
	}

	c := Centroid(points)
	assert.InDelta(t, 46.1, c.Lat, 1e-9)
	assert.InDelta(t, 7.2, c.Lon, 1e-9)
}

func TestSimplifyPathStraightLine(t *testing.T) {
	points := make([]Point, 10)
	for i := range points {
		points[i] = Point{Lat: 46.0 + float64(i)*0.001, Lon: 7.0}
	}

	out := SimplifyPath(points, 20.0)
	require.Len(t, out, 2)
	assert.Equal(t, points[0], out[0])
	assert.Equal(t, points[9], out[1])
}

func TestSimplifyPathKeepsSignificantDetours(t *testing.T) {
	points := []Point{
		{Lat: 46.0, Lon: 7.0},
		{Lat: 46.005, Lon: 7.02}, // ~1.5 km off the chord
		{Lat: 46.01, Lon: 7.0},
	}

	out := SimplifyPath(points, 100.0)
	assert.Len(t, out, 3)
}

func TestSimplifyPathShortInputUntouched(t *testing.T) {
	points := []Point{{Lat: 46.0, Lon: 7.0}, {Lat: 46.1, Lon: 7.1}}
	assert.Equal(t, points, SimplifyPath(points, 1000.0))
}

func TestDBSCANTwoClustersAndNoise(t *testing.T) {
	var points []Point
	// Cluster around (46.0, 7.0), points ~10-30 m apart
	for i := 0; i < 5; i++ {
		points = append(points, Point{Lat: 46.0 + float64(i)*0.0001, Lon: 7.0})
	}
	// Cluster around (46.5, 7.5)
	for i := 0; i < 5; i++ {
		points = append(points, Point{Lat: 46.5 + float64(i)*0.0001, Lon: 7.5})
	}
	// One far-away point
	points = append(points, Point{Lat: 48.0, Lon: 9.0})

	labels := DBSCAN(points, 100.0, 2)
	require.Len(t, labels, 11)

	for i := 1; i < 5; i++ {
		assert.Equal(t, labels[0], labels[i])
	}
	for i := 6; i < 10; i++ {
		assert.Equal(t, labels[5], labels[i])
	}
	assert.NotEqual(t, labels[0], labels[5])
	assert.Equal(t, NoiseLabel, labels[10])
}

func TestDBSCANMinSamplesOne(t *testing.T) {
	// With minSamples=1 every point is a core point: no noise
	points := []Point{
		{Lat: 46.0, Lon: 7.0},
		{Lat: 47.0, Lon: 8.0},
	}

	labels := DBSCAN(points, 100.0, 1)
	assert.Equal(t, []int{0, 1}, labels)
}

func TestDBSCANEmptyInput(t *testing.T) {
	assert.Empty(t, DBSCAN(nil, 100.0, 2))
}

func TestPerpendicularDistanceDegenerateSegment(t *testing.T) {
	p := Point{Lat: 46.1, Lon: 7.0}
	a := Point{Lat: 46.0, Lon: 7.0}

	d := perpendicularDistance(p, a, a)
	assert.False(t, math.IsNaN(d))
	assert.InDelta(t, 11100.0, d, 500.0)
}
