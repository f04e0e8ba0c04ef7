package geometry

import "math"

// PoseFeatures builds the classifier input for a whole face: the point set is
// centred on its centroid, divided by its RMS radius and flattened xs then ys.
func PoseFeatures(points PointSet) ([]float64, error) {
	if len(points) == 0 {
		return nil, &DegenerateRegionError{Region: "face", Reason: "no landmarks"}
	}

	var cx, cy float64
	for _, p := range points {
		cx += p.X
		cy += p.Y
	}
	n := float64(len(points))
	cx /= n
	cy /= n

	var sq float64
	for _, p := range points {
		dx, dy := p.X-cx, p.Y-cy
		sq += dx*dx + dy*dy
	}
	radius := math.Sqrt(sq / n)
	if radius == 0 || !isFinite(radius) {
		return nil, &DegenerateRegionError{Region: "face", Reason: "landmarks have zero spread"}
	}

	out := make([]float64, 2*len(points))
	for i, p := range points {
		out[i] = (p.X - cx) / radius
		out[len(points)+i] = (p.Y - cy) / radius
	}
	return out, nil
}
