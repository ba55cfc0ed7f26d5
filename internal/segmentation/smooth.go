package segmentation

import (
	"encoding/json"
	"fmt"

	"github.com/mobilitylab/trips-backend-go/internal/models"
	"github.com/mobilitylab/trips-backend-go/internal/spatial"
)

// SmoothTriplegs reduces the number of points in each tripleg's path while
// retaining its structure, using Douglas-Peucker simplification. tolerance is
// in meters; a higher tolerance removes more points. Operates per leg with no
// bearing on trip segmentation. Returns copies; the input is not mutated.
func SmoothTriplegs(triplegs []models.Tripleg, tolerance float64) ([]models.Tripleg, error) {
	out := make([]models.Tripleg, len(triplegs))
	copy(out, triplegs)

	for i := range out {
		if out[i].GeomJSON == "" {
			continue
		}
		simplified, err := simplifyGeomJSON(out[i].GeomJSON, tolerance)
		if err != nil {
			return nil, fmt.Errorf("tripleg %d: %w", out[i].ID, err)
		}
		out[i].GeomJSON = simplified
	}

	return out, nil
}

// simplifyGeomJSON simplifies a JSON array of [lon, lat] pairs
func simplifyGeomJSON(geomJSON string, tolerance float64) (string, error) {
	var coords [][2]float64
	if err := json.Unmarshal([]byte(geomJSON), &coords); err != nil {
		return "", fmt.Errorf("failed to parse geometry: %w", err)
	}

	points := make([]spatial.Point, len(coords))
	for i, c := range coords {
		points[i] = spatial.Point{Lon: c[0], Lat: c[1]}
	}

	simplified := spatial.SimplifyPath(points, tolerance)

	outCoords := make([][2]float64, len(simplified))
	for i, p := range simplified {
		outCoords[i] = [2]float64{p.Lon, p.Lat}
	}

	buf, err := json.Marshal(outCoords)
	if err != nil {
		return "", fmt.Errorf("failed to encode geometry: %w", err)
	}
	return string(buf), nil
}
