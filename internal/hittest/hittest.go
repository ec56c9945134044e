// Package hittest resolves pointer positions to cards by casting a ray from the
// camera against the quads of the mounted cards.
package hittest

import (
	"math"
	"sort"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Ray is a half-line in world space. Dir need not be normalized.
type Ray struct {
	Origin mgl32.Vec3
	Dir    mgl32.Vec3
}

// At returns the point at parameter t.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// Quad is a planar rectangle: a center, two orthonormal in-plane axes and half extents.
type Quad struct {
	Center       mgl32.Vec3
	Right, Up    mgl32.Vec3
	HalfW, HalfH float32
}

// Corners returns the quad's corners counter-clockwise from bottom-left.
func (q Quad) Corners() [4]mgl32.Vec3 {
	r := q.Right.Mul(q.HalfW)
	u := q.Up.Mul(q.HalfH)
	return [4]mgl32.Vec3{
		q.Center.Sub(r).Sub(u),
		q.Center.Add(r).Sub(u),
		q.Center.Add(r).Add(u),
		q.Center.Sub(r).Add(u),
	}
}

// Intersect returns the ray parameter of the hit and whether the ray hits the
// quad in front of its origin.
func (q Quad) Intersect(r Ray) (float32, bool) {
	n := q.Right.Cross(q.Up)
	den := r.Dir.Dot(n)
	if math32.Abs(den) < 1e-6 {
		return 0, false
	}
	t := q.Center.Sub(r.Origin).Dot(n) / den
	if t < 0 {
		return 0, false
	}
	local := r.At(t).Sub(q.Center)
	if math32.Abs(local.Dot(q.Right)) > q.HalfW || math32.Abs(local.Dot(q.Up)) > q.HalfH {
		return 0, false
	}
	return t, true
}

// Target is a hit-testable card registered by the render surface. Quad must
// report the card's current geometry.
type Target interface {
	Slot() int
	Quad() Quad
}

// RayCaster builds a ray through a point in normalized device coordinates.
type RayCaster interface {
	Ray(ndcX, ndcY float32) Ray
}

// Viewport is the render surface rectangle in client pixels.
type Viewport struct {
	Left, Top, Width, Height float64
}

// NDC converts client pixels to normalized device coordinates (+y up).
func (v Viewport) NDC(x, y float64) (float32, float32) {
	if v.Width <= 0 || v.Height <= 0 {
		return 0, 0
	}
	nx := ((x-v.Left)/v.Width)*2 - 1
	ny := -((y-v.Top)/v.Height)*2 + 1
	return float32(nx), float32(ny)
}

// Registry holds the targets of the currently mounted cards, keyed by slot.
type Registry struct {
	targets map[int]Target
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{targets: make(map[int]Target)}
}

// Register adds or replaces the target for its slot.
func (r *Registry) Register(t Target) {
	r.targets[t.Slot()] = t
}

// Unregister removes the target for slot.
func (r *Registry) Unregister(slot int) {
	delete(r.targets, slot)
}

// Len is the number of registered targets.
func (r *Registry) Len() int { return len(r.targets) }

// snapshot returns the registered targets ordered by slot.
func (r *Registry) snapshot() []Target {
	out := make([]Target, 0, len(r.targets))
	for _, t := range r.targets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot() < out[j].Slot() })
	return out
}

// Tester casts rays against a cached snapshot of the registry. The cache is
// rebuilt on the first hit-test after Invalidate.
type Tester struct {
	caster   RayCaster
	registry *Registry
	cache    []Target
	rebuilds int
}

// NewTester returns a tester casting with caster against registry.
func NewTester(caster RayCaster, registry *Registry) *Tester {
	return &Tester{caster: caster, registry: registry}
}

// Invalidate clears the cache.
func (t *Tester) Invalidate() {
	t.cache = nil
}

// Rebuilds counts cache rebuilds.
func (t *Tester) Rebuilds() int { return t.rebuilds }

// HitTest returns the slot of the nearest card under the client point (x, y).
func (t *Tester) HitTest(x, y float64, vp Viewport) (int, bool) {
	nx, ny := vp.NDC(x, y)
	return t.HitTestNDC(nx, ny)
}

// HitTestNDC is HitTest for a point already in normalized device coordinates.
func (t *Tester) HitTestNDC(nx, ny float32) (int, bool) {
	if len(t.cache) == 0 {
		t.cache = t.registry.snapshot()
		t.rebuilds++
	}
	ray := t.caster.Ray(nx, ny)

	best := float32(math.MaxFloat32)
	slot, found := 0, false
	for _, target := range t.cache {
		d, ok := target.Quad().Intersect(ray)
		if ok && d < best {
			best = d
			slot = target.Slot()
			found = true
		}
	}
	return slot, found
}
