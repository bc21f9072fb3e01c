package geo

import "math"

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0088

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// DistanceKm returns the haversine distance between a and b.
func DistanceKm(a, b Point) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLat := lat2 - lat1
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// BoundingBox is a coarse lat/lng rectangle used to prefilter rows in SQL
// before the exact distance check.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// Contains reports whether p lies inside the box.
func (b BoundingBox) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// BoxAround returns a box covering every point within radiusKm of center.
// Near the poles or across the antimeridian the longitude range widens to the full circle.
func BoxAround(center Point, radiusKm float64) BoundingBox {
	dLat := degrees(radiusKm / EarthRadiusKm)
	box := BoundingBox{
		MinLat: math.Max(-90, center.Lat-dLat),
		MaxLat: math.Min(90, center.Lat+dLat),
		MinLng: -180,
		MaxLng: 180,
	}
	if box.MinLat <= -90 || box.MaxLat >= 90 {
		return box
	}

	ratio := math.Sin(radiusKm/EarthRadiusKm) / math.Cos(radians(center.Lat))
	if ratio >= 1 {
		return box
	}
	dLng := degrees(math.Asin(ratio))
	if center.Lng-dLng < -180 || center.Lng+dLng > 180 {
		return box
	}
	box.MinLng = center.Lng - dLng
	box.MaxLng = center.Lng + dLng
	return box
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
