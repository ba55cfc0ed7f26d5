package spatial

import (
	"math"
)

// SimplifyPath simplifies a path using the Ramer-Douglas-Peucker algorithm.
// epsilon is the maximum distance (meters) from the simplified path. Topology
// is not preserved.
func SimplifyPath(points []Point, epsilon float64) []Point {
	if len(points) < 3 {
		return points
	}

	// Find the point with maximum distance from the line segment
	maxDist := 0.0
	maxIndex := 0

	for i := 1; i < len(points)-1; i++ {
		dist := perpendicularDistance(points[i], points[0], points[len(points)-1])
		if dist > maxDist {
			maxDist = dist
			maxIndex = i
		}
	}

	// If max distance is greater than epsilon, recursively simplify
	if maxDist > epsilon {
		left := SimplifyPath(points[:maxIndex+1], epsilon)
		right := SimplifyPath(points[maxIndex:], epsilon)

		// Combine results (remove duplicate middle point)
		result := make([]Point, len(left)+len(right)-1)
		copy(result, left)
		copy(result[len(left):], right[1:])
		return result
	}

	// Everything between the endpoints is within tolerance
	return []Point{points[0], points[len(points)-1]}
}

// perpendicularDistance calculates the perpendicular distance from a point to
// a line segment, in meters (planar approximation)
func perpendicularDistance(point, lineStart, lineEnd Point) float64 {
	x0, y0 := point.Lat, point.Lon
	x1, y1 := lineStart.Lat, lineStart.Lon
	x2, y2 := lineEnd.Lat, lineEnd.Lon

	num := math.Abs((y2-y1)*x0 - (x2-x1)*y0 + x2*y1 - y2*x1)
	den := math.Sqrt((y2-y1)*(y2-y1) + (x2-x1)*(x2-x1))

	if den == 0 {
		return HaversineDistance(point.Lat, point.Lon, lineStart.Lat, lineStart.Lon)
	}

	metersPerDegree := 111320.0
	return (num / den) * metersPerDegree
}
