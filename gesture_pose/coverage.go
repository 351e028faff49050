package gesturepose

import "github.com/golang/geo/r2"

// estimateCoverage approximates the fraction of the viewport covered by the
// object by hit testing a samples×samples grid spread over the central field
// fraction of the viewport on each axis.
func estimateCoverage(viewport r2.Rect, samples int, field float64, hit func(r2.Point) bool) float64 {
	if samples < 1 || viewport.IsEmpty() {
		return 0
	}

	offset := (1 - field) / 2
	step := 0.0
	if samples > 1 {
		step = field / float64(samples-1)
	} else {
		offset = 0.5
	}

	size := viewport.Size()
	hits := 0
	for x := 0; x < samples; x++ {
		fx := offset + float64(x)*step
		for y := 0; y < samples; y++ {
			fy := offset + float64(y)*step
			pt := r2.Point{X: viewport.X.Lo + fx*size.X, Y: viewport.Y.Lo + fy*size.Y}
			if hit(pt) {
				hits++
			}
		}
	}
	return float64(hits) / float64(samples*samples)
}

// eligibilitySamples returns the points tested at the start of a two-finger
// gesture: both touches, the two other corners of their rectangle, the
// midpoint, and the halfway points between those.
func eligibilitySamples(a, b r2.Point) []r2.Point {
	mid := a.Add(b).Mul(0.5)
	oc1 := r2.Point{X: a.X, Y: b.Y}
	oc2 := r2.Point{X: b.X, Y: a.Y}
	half := func(p, q r2.Point) r2.Point { return p.Add(q).Mul(0.5) }

	return []r2.Point{
		a, b, oc1, oc2,
		half(oc1, a), half(oc1, b), half(oc2, a), half(oc2, b),
		half(mid, a), half(mid, b), half(mid, oc1), half(mid, oc2),
		mid,
	}
}
