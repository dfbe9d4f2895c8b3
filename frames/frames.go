// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

// Package frames implements the coordinate transforms between the
// horizontal (sky) frame and telescope/array nominal frames (§4.4).
package frames

import "math"

// clamp restricts x to [-1, 1], guarding acos/asin arguments against
// floating-point overshoot (Design Notes §9).
func clamp(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// SkyToNominal projects a sky point (alt, az) onto the tangent plane
// centered on (centerAlt, centerAz), a standard gnomonic projection.
// Returns (xi, eta) in radians.
func SkyToNominal(alt, az, centerAlt, centerAz float64) (xi, eta float64) {
	sinC, cosC := math.Sin(centerAlt), math.Cos(centerAlt)
	sinA, cosA := math.Sin(alt), math.Cos(alt)
	dAz := az - centerAz
	cosDAz := math.Cos(dAz)

	cosc := sinC*sinA + cosC*cosA*cosDAz
	if cosc == 0 {
		cosc = 1e-12
	}

	xi = cosA * math.Sin(dAz) / cosc
	eta = (cosC*sinA - sinC*cosA*cosDAz) / cosc
	return xi, eta
}

// NominalToSky is the inverse gnomonic projection: given a tangent-plane
// point (xi, eta) around center (centerAlt, centerAz), returns the sky
// point (alt, az).
func NominalToSky(xi, eta, centerAlt, centerAz float64) (alt, az float64) {
	rho := math.Hypot(xi, eta)
	if rho < 1e-12 {
		return centerAlt, centerAz
	}
	c := math.Atan(rho)
	sinc, cosc := math.Sin(c), math.Cos(c)
	sinC, cosC := math.Sin(centerAlt), math.Cos(centerAlt)

	alt = math.Asin(clamp(cosc*sinC + eta*sinc*cosC/rho))
	az = centerAz + math.Atan2(xi*sinc, rho*cosC*cosc-eta*sinC*sinc)
	return alt, az
}

// AngularSeparation returns the great-circle angle between two sky
// points, clamping the cosine argument to [-1,1] (§4.4).
func AngularSeparation(alt1, az1, alt2, az2 float64) float64 {
	cosAngle := math.Sin(alt1)*math.Sin(alt2) + math.Cos(alt1)*math.Cos(alt2)*math.Cos(az1-az2)
	return math.Acos(clamp(cosAngle))
}

// CameraToNominal maps a Hillas centroid (x, y) and axis angle psi, given
// in camera-frame meters at a telescope pointing at (telAlt, telAz), into
// the array's nominal frame centered on (arrayAlt, arrayAz) (§4.4). The
// camera point is first mapped to angular telescope-frame offsets via
// (x/f_eff, y/f_eff), converted to a sky direction, then reprojected onto
// the array's tangent plane.
//
// The axis rotation between the two tangent planes is obtained by finite
// difference rather than a closed-form spherical Jacobian: nudging the
// centroid by a small step along psi and re-projecting both points gives
// the rotated axis angle directly, and is exact in the small-angle limit
// these cameras operate in.
func CameraToNominal(x, y, psi, focalLength float64, telAlt, telAz, arrayAlt, arrayAz float64) (xi, eta, psiOut float64) {
	project := func(cx, cy float64) (float64, float64) {
		dx := cx / focalLength
		dy := cy / focalLength
		alt, az := NominalToSky(dx, dy, telAlt, telAz)
		return SkyToNominal(alt, az, arrayAlt, arrayAz)
	}

	xi, eta = project(x, y)

	const eps = 1e-3 // meters; small relative to camera scale, large relative to float64 noise
	x2, y2 := x+eps*math.Cos(psi), y+eps*math.Sin(psi)
	xi2, eta2 := project(x2, y2)

	psiOut = math.Atan2(eta2-eta, xi2-xi)
	return xi, eta, psiOut
}
