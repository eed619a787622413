// Package geom converts sensor-native spherical radar measurements into the
// Cartesian frame used by the plan (PPI) and profile (RHI) views.
//
// Angle convention: degrees. Azimuth is measured clockwise from the +Y
// (north) axis, elevation up from the horizontal plane. Lengths come out in
// whatever unit the range was supplied in.
package geom

import "math"

const degToRad = math.Pi / 180.0

// Sph2Cart converts (range, azimuth, elevation) to (x, y, z).
//
// The function is pure and does not allocate. NaN or Inf inputs propagate to
// the outputs; they are not sanitised here.
func Sph2Cart(rng, azimuthDeg, elevationDeg float64) (x, y, z float64) {
	az := azimuthDeg * degToRad
	el := elevationDeg * degToRad
	cosEl := math.Cos(el)
	x = rng * cosEl * math.Sin(az)
	y = rng * cosEl * math.Cos(az)
	z = rng * math.Sin(el)
	return x, y, z
}
