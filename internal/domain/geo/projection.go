package geo

import "math"

// ForwardDistanceKm is how far ahead of the traveler ForwardPosition projects.
const ForwardDistanceKm = 0.1

// ForwardPosition projects a point ForwardDistanceKm ahead of location along headingDegrees.
func ForwardPosition(location Coordinate, headingDegrees float64) Coordinate {
	return Destination(location, headingDegrees, ForwardDistanceKm)
}

// Destination returns the point reached by travelling distanceKm from origin on the
// initial bearing headingDegrees over a sphere of radius EarthRadiusKm.
func Destination(origin Coordinate, headingDegrees, distanceKm float64) Coordinate {
	delta := distanceKm / EarthRadiusKm
	theta := toRad(headingDegrees)
	phi1 := toRad(origin.Latitude)
	lambda1 := toRad(origin.Longitude)

	sinPhi2 := math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta)
	phi2 := math.Asin(sinPhi2)
	y := math.Sin(theta) * math.Sin(delta) * math.Cos(phi1)
	x := math.Cos(delta) - math.Sin(phi1)*sinPhi2
	lambda2 := lambda1 + math.Atan2(y, x)

	return Coordinate{
		Latitude:  toDeg(phi2),
		Longitude: normalizeLongitude(toDeg(lambda2)),
	}
}

// Bearing returns the initial bearing from a to b in degrees within [0, 360).
func Bearing(a, b Coordinate) float64 {
	phi1 := toRad(a.Latitude)
	phi2 := toRad(b.Latitude)
	dLambda := toRad(b.Longitude - a.Longitude)

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	return math.Mod(toDeg(math.Atan2(y, x))+360, 360)
}

// NearestIndex returns the index of the point in path closest to c, or -1 for an empty path.
func NearestIndex(path []Coordinate, c Coordinate) int {
	best := -1
	bestKm := math.MaxFloat64
	for i, p := range path {
		if d := DistanceKm(p, c); d < bestKm {
			bestKm = d
			best = i
		}
	}
	return best
}

func normalizeLongitude(lng float64) float64 {
	lng = math.Mod(lng+540, 360) - 180
	if lng == -180 {
		return 180
	}
	return lng
}
