package spatial

// NoiseLabel marks points that belong to no cluster
const NoiseLabel = -1

// DBSCAN clusters points by density over haversine distance. epsilon is the
// neighborhood radius in meters, minSamples the minimum neighborhood size
// (including the point itself) for a core point. Returns one label per input
// point, NoiseLabel for noise; cluster labels count up from 0.
func DBSCAN(points []Point, epsilon float64, minSamples int) []int {
	const unvisited = -2

	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = unvisited
	}

	nextCluster := 0
	for i := range points {
		if labels[i] != unvisited {
			continue
		}

		neighbors := regionQuery(points, i, epsilon)
		if len(neighbors) < minSamples {
			labels[i] = NoiseLabel
			continue
		}

		cluster := nextCluster
		nextCluster++
		labels[i] = cluster

		// Expand the cluster; neighbors grows while seeds are core points
		for q := 0; q < len(neighbors); q++ {
			j := neighbors[q]
			if labels[j] == NoiseLabel {
				labels[j] = cluster // border point
			}
			if labels[j] != unvisited {
				continue
			}
			labels[j] = cluster

			jNeighbors := regionQuery(points, j, epsilon)
			if len(jNeighbors) >= minSamples {
				neighbors = append(neighbors, jNeighbors...)
			}
		}
	}

	return labels
}

// regionQuery returns the indices of all points within epsilon meters of
// points[i], including i itself
func regionQuery(points []Point, i int, epsilon float64) []int {
	var neighbors []int
	for j := range points {
		if HaversineDistance(points[i].Lat, points[i].Lon, points[j].Lat, points[j].Lon) <= epsilon {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}
