package adjust

import "sort"

// applyCurves reproduces the original program's Curves adjustment: the
// control-point list for the *first* channel group (curves[0]) is the only
// one ever consulted, and that one spline is applied identically to R, G
// and B. The Curves type carries one list per channel group so a future UI
// could offer independent per-channel curves, but the adjustment itself
// only ever reads index 0 — preserved here exactly rather than "fixed" to
// read per-channel curves, since that single-curve behavior is what the
// program actually ships.
func applyCurves(c [4]float32, curves [][][2]float32) [4]float32 {
	if len(curves) == 0 || len(curves[0]) == 0 {
		return c
	}
	spline := buildSpline(curves[0])
	return [4]float32{
		spline.eval(c[0]),
		spline.eval(c[1]),
		spline.eval(c[2]),
		c[3],
	}
}

type splinePoint struct {
	x, y    float32
	tangent float32
}

type spline struct {
	pts []splinePoint
}

// buildSpline computes a natural cubic spline's tangents via the standard
// tridiagonal (Thomas algorithm) solve, matching the original program's
// compute_spline_tangents.
func buildSpline(points [][2]float32) spline {
	pts := make([]splinePoint, len(points))
	for i, p := range points {
		pts[i] = splinePoint{x: p[0], y: p[1]}
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].x < pts[j].x })

	n := len(pts)
	if n < 2 {
		return spline{pts: pts}
	}

	// Tridiagonal system for the natural-spline second-derivative-derived
	// tangents: build the standard a/b/c/d arrays and solve with the
	// Thomas algorithm (forward sweep then back-substitution).
	a := make([]float32, n)
	b := make([]float32, n)
	c := make([]float32, n)
	d := make([]float32, n)

	b[0] = 2
	c[0] = 1
	dx0 := pts[1].x - pts[0].x
	d[0] = 3 * (pts[1].y - pts[0].y) / dx0

	for i := 1; i < n-1; i++ {
		dxPrev := pts[i].x - pts[i-1].x
		dxNext := pts[i+1].x - pts[i].x
		a[i] = dxNext
		b[i] = 2 * (dxPrev + dxNext)
		c[i] = dxPrev
		d[i] = 3 * (dxNext*(pts[i].y-pts[i-1].y)/dxPrev + dxPrev*(pts[i+1].y-pts[i].y)/dxNext)
	}

	dxLast := pts[n-1].x - pts[n-2].x
	a[n-1] = 1
	b[n-1] = 2
	d[n-1] = 3 * (pts[n-1].y - pts[n-2].y) / dxLast

	// Forward sweep.
	cp := make([]float32, n)
	dp := make([]float32, n)
	cp[0] = c[0] / b[0]
	dp[0] = d[0] / b[0]
	for i := 1; i < n; i++ {
		m := b[i] - a[i]*cp[i-1]
		if i < n-1 {
			cp[i] = c[i] / m
		}
		dp[i] = (d[i] - a[i]*dp[i-1]) / m
	}

	tangents := make([]float32, n)
	tangents[n-1] = dp[n-1]
	for i := n - 2; i >= 0; i-- {
		tangents[i] = dp[i] - cp[i]*tangents[i+1]
	}
	for i := range pts {
		pts[i].tangent = tangents[i]
	}
	return spline{pts: pts}
}

// binarySearchLastLT returns the index of the last point whose x is < v,
// or -1 if none qualifies.
func (s spline) binarySearchLastLT(v float32) int {
	lo, hi := 0, len(s.pts)
	for lo < hi {
		mid := (lo + hi) / 2
		if s.pts[mid].x < v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo - 1
}

// eval interpolates the spline at v using the cubic Hermite form between
// the bracketing control points, clamping to the end points outside the
// curve's domain.
func (s spline) eval(v float32) float32 {
	n := len(s.pts)
	if n == 0 {
		return v
	}
	if n == 1 {
		return s.pts[0].y
	}
	if v <= s.pts[0].x {
		return s.pts[0].y
	}
	if v >= s.pts[n-1].x {
		return s.pts[n-1].y
	}
	i := s.binarySearchLastLT(v)
	if i < 0 {
		i = 0
	}
	if i >= n-1 {
		i = n - 2
	}
	p0, p1 := s.pts[i], s.pts[i+1]
	h := p1.x - p0.x
	if h <= 0 {
		return p0.y
	}
	t := (v - p0.x) / h
	t2 := t * t
	t3 := t2 * t
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2
	return h00*p0.y + h10*h*p0.tangent + h01*p1.y + h11*h*p1.tangent
}
