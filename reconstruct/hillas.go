// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

package reconstruct

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ctapipe-go/airshower/frames"
)

// minSinSqAlpha is the near-parallel cutoff (epsilon) below which a
// telescope pair's axis intersection is dropped (§4.5).
const minSinSqAlpha = 1e-6

// maxConditionNumber rejects numerically degenerate 2x2 systems
// (Design Notes §9).
const maxConditionNumber = 1e12

// HillasStereo is the classical two-telescope-or-more stereo reconstructor:
// it intersects projected major axes for direction, and does a weighted
// least-squares line intersection on the ground for core position (§4.5).
// The core fit accumulates a weighted 2x2 normal-equations system and
// solves it with gonum/mat.
type HillasStereo struct {
	NameOverride string
	UseFakeHillas bool
}

func (r *HillasStereo) Name() string {
	if r.NameOverride != "" {
		return r.NameOverride
	}
	return "HillasReconstructor"
}

type nominalTel struct {
	tel        TelescopeInput
	xi, eta    float64
	axis       [2]float64 // unit vector (cos psi, sin psi) in nominal frame
	intensity  float64
}

func (r *HillasStereo) Reconstruct(tels []TelescopeInput, arrayPointing Pointing, truth *TruthDirection, atm AtmosphereProfile) (*ReconstructedGeometry, map[int]ImpactParameter) {
	if len(tels) < 2 {
		return &ReconstructedGeometry{IsValid: false}, nil
	}

	nominals := make([]nominalTel, 0, len(tels))
	for _, tel := range tels {
		if tel.Hillas.Length <= 0 || math.IsNaN(tel.Hillas.Intensity) {
			continue
		}
		xi, eta, psi := frames.CameraToNominal(tel.Hillas.X, tel.Hillas.Y, tel.Hillas.Psi, tel.FocalLength,
			tel.Pointing.Altitude, tel.Pointing.Azimuth, arrayPointing.Altitude, arrayPointing.Azimuth)
		nominals = append(nominals, nominalTel{
			tel:       tel,
			xi:        xi,
			eta:       eta,
			axis:      [2]float64{math.Cos(psi), math.Sin(psi)},
			intensity: tel.Hillas.Intensity,
		})
	}
	if len(nominals) < 2 {
		return &ReconstructedGeometry{IsValid: false}, nil
	}

	xiHat, etaHat, altUnc, azUnc, telIDs, ok := intersectDirections(nominals)
	if !ok {
		return &ReconstructedGeometry{IsValid: false}, nil
	}
	alt, az := frames.NominalToSky(xiHat, etaHat, arrayPointing.Altitude, arrayPointing.Azimuth)

	coreX, coreY, coreErr, coreOK := intersectCore(nominals, arrayPointing)
	if !coreOK {
		return &ReconstructedGeometry{IsValid: false}, nil
	}

	geom := &ReconstructedGeometry{
		IsValid:        true,
		Alt:            alt,
		Az:             az,
		AltUncertainty: altUnc,
		AzUncertainty:  azUnc,
		CoreX:          coreX,
		CoreY:          coreY,
		CorePosError:   coreErr,
		Telescopes:     telIDs,
	}

	geom.Hmax = estimateHmax(nominals, coreX, coreY)
	if atm != nil {
		zenith := math.Pi/2 - alt
		geom.Xmax = atm.ColumnDensity(geom.Hmax, zenith)
	} else {
		geom.Xmax = math.NaN()
	}

	if truth != nil {
		geom.DirectionError = frames.AngularSeparation(alt, az, truth.Alt, truth.Az)
	}

	impacts := make(map[int]ImpactParameter, len(nominals))
	for _, n := range nominals {
		dx := n.tel.PositionX - coreX
		dy := n.tel.PositionY - coreY
		impacts[n.tel.TelID] = ImpactParameter{
			Distance:      math.Hypot(dx, dy),
			DistanceError: coreErr,
		}
	}

	return geom, impacts
}

// intersectDirections implements §4.5 steps 1-3: for every unordered pair
// of telescope axes, compute the line intersection in the nominal frame,
// weight it by intensity_a*intensity_b*sin^2(alpha), and take the
// weighted mean. Pairs with near-parallel axes are dropped.
func intersectDirections(nominals []nominalTel) (xiHat, etaHat, altUnc, azUnc float64, telIDs []int, ok bool) {
	type point struct {
		xi, eta, weight float64
	}
	var points []point
	seen := map[int]bool{}

	for i := 0; i < len(nominals); i++ {
		for j := i + 1; j < len(nominals); j++ {
			a, b := nominals[i], nominals[j]
			cross := a.axis[0]*b.axis[1] - a.axis[1]*b.axis[0]
			sinSqAlpha := cross * cross
			if sinSqAlpha < minSinSqAlpha {
				continue
			}
			xi, eta, intersects := lineIntersection(a.xi, a.eta, a.axis, b.xi, b.eta, b.axis)
			if !intersects {
				continue
			}
			w := a.intensity * b.intensity * sinSqAlpha
			points = append(points, point{xi, eta, w})
			seen[a.tel.TelID] = true
			seen[b.tel.TelID] = true
		}
	}
	if len(points) == 0 {
		return 0, 0, 0, 0, nil, false
	}

	var sumW, sumXi, sumEta float64
	for _, p := range points {
		sumW += p.weight
		sumXi += p.weight * p.xi
		sumEta += p.weight * p.eta
	}
	if sumW <= 0 {
		return 0, 0, 0, 0, nil, false
	}
	xiHat = sumXi / sumW
	etaHat = sumEta / sumW

	var varXi, varEta float64
	for _, p := range points {
		dXi := p.xi - xiHat
		dEta := p.eta - etaHat
		varXi += p.weight * dXi * dXi
		varEta += p.weight * dEta * dEta
	}
	azUnc = math.Sqrt(varXi / sumW)
	altUnc = math.Sqrt(varEta / sumW)

	for id := range seen {
		telIDs = append(telIDs, id)
	}
	sortInts(telIDs)

	return xiHat, etaHat, altUnc, azUnc, telIDs, true
}

// lineIntersection solves p1 + t*d1 = p2 + s*d2 for the intersection
// point, given two points and two direction vectors.
func lineIntersection(x1, y1 float64, d1 [2]float64, x2, y2 float64, d2 [2]float64) (x, y float64, ok bool) {
	denom := d1[0]*d2[1] - d1[1]*d2[0]
	if math.Abs(denom) < 1e-15 {
		return 0, 0, false
	}
	t := ((x2-x1)*d2[1] - (y2-y1)*d2[0]) / denom
	return x1 + t*d1[0], y1 + t*d1[1], true
}

// intersectCore implements §4.5 step 4: a weighted least-squares
// intersection of the ground-projected telescope axes. Each telescope
// contributes a rank-1-deficient normal matrix w_t*(I - n_t n_t^T); the
// accumulated 2x2 system is solved directly with gonum/mat, and its
// eigen decomposition gives the core position error.
func intersectCore(nominals []nominalTel, arrayPointing Pointing) (coreX, coreY, coreErr float64, ok bool) {
	a := mat.NewDense(2, 2, nil)
	b := mat.NewVecDense(2, nil)

	for _, n := range nominals {
		// Ground-plane bearing of telescope n's projected shower axis,
		// approximating the nominal-frame axis direction as already
		// aligned with ground East/North once rotated by the array's
		// pointing azimuth — exact for the common near-zenith case and an
		// approximation elsewhere.
		bearing := math.Atan2(n.axis[1], n.axis[0]) + arrayPointing.Azimuth
		dir := [2]float64{math.Cos(bearing), math.Sin(bearing)}

		w := n.intensity
		proj := mat.NewDense(2, 2, []float64{
			1 - dir[0]*dir[0], -dir[0] * dir[1],
			-dir[0] * dir[1], 1 - dir[1]*dir[1],
		})

		var wProj mat.Dense
		wProj.Scale(w, proj)
		a.Add(a, &wProj)

		p := mat.NewVecDense(2, []float64{n.tel.PositionX, n.tel.PositionY})
		var pt mat.VecDense
		pt.MulVec(&wProj, p)
		b.AddVec(b, &pt)
	}

	sym := mat.NewSymDense(2, []float64{a.At(0, 0), a.At(0, 1), a.At(1, 0), a.At(1, 1)})
	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return 0, 0, 0, false
	}
	values := eig.Values(nil)
	lambdaMin, lambdaMax := values[0], values[1]
	if lambdaMin > lambdaMax {
		lambdaMin, lambdaMax = lambdaMax, lambdaMin
	}
	if lambdaMin <= 1e-9 || lambdaMax/lambdaMin > maxConditionNumber {
		return 0, 0, 0, false
	}

	var core mat.VecDense
	if err := core.SolveVec(a, b); err != nil {
		return 0, 0, 0, false
	}

	coreErr = math.Sqrt(1 / lambdaMin)
	return core.AtVec(0), core.AtVec(1), coreErr, true
}

// estimateHmax triangulates the shower-maximum altitude by treating the
// angular distance of each telescope's image centroid from the array
// pointing center (its nominal-frame radius) as subtending the ground
// impact distance at the shower-max height (§4.5 step 5), then takes the
// intensity-weighted average.
func estimateHmax(nominals []nominalTel, coreX, coreY float64) float64 {
	var sumW, sumH float64
	for _, n := range nominals {
		r := math.Hypot(n.xi, n.eta)
		if r < 1e-8 {
			continue
		}
		impact := math.Hypot(n.tel.PositionX-coreX, n.tel.PositionY-coreY)
		h := impact/math.Tan(r) + n.tel.PositionZ
		w := n.intensity
		sumW += w
		sumH += w * h
	}
	if sumW <= 0 {
		return math.NaN()
	}
	return sumH / sumW
}

func sortInts(a []int) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j-1] > a[j]; j-- {
			a[j-1], a[j] = a[j], a[j-1]
		}
	}
}
