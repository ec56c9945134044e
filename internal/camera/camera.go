// Package camera holds the orthographic gallery camera and the transition
// that flies it between the overview and a focused card.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/nicky-ayoub/cardstack/internal/hittest"
)

// Pose is where the camera sits and what it looks at.
type Pose struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
}

// OverviewPose is the resting three-quarter view of the stack.
func OverviewPose() Pose {
	return Pose{Position: mgl32.Vec3{6, 7, 13}, Target: mgl32.Vec3{0, 0.5, 0}}
}

// DefaultFocusDistance keeps the focused camera closer to the active card than
// one default slot spacing.
const DefaultFocusDistance = 1.5

// FocusedPose frames the lifted active card head-on from DefaultFocusDistance.
func FocusedPose() Pose { return FocusedPoseAt(DefaultFocusDistance) }

// FocusedPoseAt looks straight at the lifted active card from distance in front
// of it. Cards nearer than distance end up behind the camera and are not drawn.
func FocusedPoseAt(distance float32) Pose {
	return Pose{Position: mgl32.Vec3{0, 1.25, distance}, Target: mgl32.Vec3{0, 1.25, 0}}
}

// Camera is an orthographic camera whose frustum follows the viewport aspect.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3

	FrustumSize float32
	NearPlane   float32
	FarPlane    float32

	width, height float32

	// Cached matrices
	viewMatrix       mgl32.Mat4
	projectionMatrix mgl32.Mat4
	inverseVP        mgl32.Mat4
	dirty            bool
}

// NewCamera creates a camera at pose for a width x height viewport.
func NewCamera(pose Pose, width, height int) *Camera {
	c := &Camera{
		Position:    pose.Position,
		Target:      pose.Target,
		Up:          mgl32.Vec3{0, 1, 0},
		FrustumSize: 6,
		NearPlane:   0.001,
		FarPlane:    2000,
	}
	c.SetViewport(width, height)
	return c
}

// SetViewport updates the viewport size in pixels. Non-positive sizes are ignored.
func (c *Camera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.width, c.height = float32(width), float32(height)
	c.dirty = true
}

// Viewport returns the viewport size in pixels.
func (c *Camera) Viewport() (float32, float32) { return c.width, c.height }

// SetPose moves the camera.
func (c *Camera) SetPose(p Pose) {
	if p.Position == c.Position && p.Target == c.Target {
		return
	}
	c.Position = p.Position
	c.Target = p.Target
	c.dirty = true
}

// Pose returns the current pose.
func (c *Camera) Pose() Pose { return Pose{Position: c.Position, Target: c.Target} }

// Bounds returns the orthographic frustum edges. Landscape viewports keep a
// fixed height; portrait ones shrink the width and let the height grow.
func (c *Camera) Bounds() (left, right, bottom, top float32) {
	aspect := float32(1)
	if c.height > 0 {
		aspect = c.width / c.height
	}
	size := c.FrustumSize
	if aspect <= 1 {
		factor := float32(0.45)
		if aspect < 0.8 {
			factor = 0.3
		}
		return -size * factor, size * factor, -size / aspect * factor, size / aspect * factor
	}
	return -size * aspect / 2, size * aspect / 2, -size / 2, size / 2
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	c.update()
	return c.viewMatrix
}

// ViewProjection returns projection * view.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	c.update()
	return c.projectionMatrix.Mul4(c.viewMatrix)
}

func (c *Camera) update() {
	if !c.dirty {
		return
	}
	left, right, bottom, top := c.Bounds()
	c.viewMatrix = mgl32.LookAtV(c.Position, c.Target, c.Up)
	c.projectionMatrix = mgl32.Ortho(left, right, bottom, top, c.NearPlane, c.FarPlane)
	c.inverseVP = c.projectionMatrix.Mul4(c.viewMatrix).Inv()
	c.dirty = false
}

// Forward returns the viewing direction.
func (c *Camera) Forward() mgl32.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

// Ray unprojects a point in normalized device coordinates onto a ray running
// from the near plane to the far plane.
func (c *Camera) Ray(ndcX, ndcY float32) hittest.Ray {
	c.update()
	near := c.unproject(ndcX, ndcY, -1)
	far := c.unproject(ndcX, ndcY, 1)
	return hittest.Ray{Origin: near, Dir: far.Sub(near).Normalize()}
}

func (c *Camera) unproject(x, y, z float32) mgl32.Vec3 {
	v := c.inverseVP.Mul4x1(mgl32.Vec4{x, y, z, 1})
	if v.W() != 0 {
		v = v.Mul(1 / v.W())
	}
	return v.Vec3()
}

// Project maps a world point to viewport pixels (+y down) and its NDC depth,
// which grows with distance from the camera. Points between the near and far
// planes have a depth in [-1, 1]; points behind the camera fall below -1.
func (c *Camera) Project(world mgl32.Vec3) (x, y, depth float32) {
	v := c.ViewProjection().Mul4x1(world.Vec4(1))
	if v.W() != 0 {
		v = v.Mul(1 / v.W())
	}
	x = (v.X() + 1) / 2 * c.width
	y = (1 - v.Y()) / 2 * c.height
	return x, y, v.Z()
}

// Visible reports whether an NDC depth from Project lies between the near and
// far planes.
func Visible(depth float32) bool { return depth >= -1 && depth <= 1 }
