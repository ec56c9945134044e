package ui

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/nicky-ayoub/cardstack/internal/camera"
	"github.com/nicky-ayoub/cardstack/internal/gallery"
)

var (
	background  = color.RGBA{R: 0x10, G: 0x10, B: 0x14, A: 0xff}
	quadIndices = []uint16{0, 1, 2, 0, 2, 3}
)

// projectedCard is a card quad in screen space.
type projectedCard struct {
	pose    *gallery.CardPose
	corners [4][2]float32
	depth   float32
}

// Renderer draws the card stack with textured triangles.
type Renderer struct {
	Textures *TextureCache

	vertices []ebiten.Vertex
}

// NewRenderer returns a renderer drawing textures from tc.
func NewRenderer(tc *TextureCache) *Renderer {
	return &Renderer{Textures: tc}
}

// project maps the poses through cam and orders them far to near. Cards with a
// corner outside the near or far plane are clipped whole.
func project(poses []*gallery.CardPose, cam *camera.Camera) []projectedCard {
	out := make([]projectedCard, 0, len(poses))
next:
	for _, p := range poses {
		q := p.Quad()
		pc := projectedCard{pose: p}
		for i, c := range q.Corners() {
			x, y, depth := cam.Project(c)
			if !camera.Visible(depth) {
				continue next
			}
			pc.corners[i] = [2]float32{x, y}
		}
		_, _, pc.depth = cam.Project(q.Center)
		out = append(out, pc)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].depth > out[j].depth })
	return out
}

// quadVertices maps a w x h texture onto screen corners given counter-clockwise
// from bottom-left.
func quadVertices(dst []ebiten.Vertex, corners [4][2]float32, w, h float32, tint float32) []ebiten.Vertex {
	src := [4][2]float32{{0, h}, {w, h}, {w, 0}, {0, 0}}
	for i := range corners {
		dst = append(dst, ebiten.Vertex{
			DstX:   corners[i][0],
			DstY:   corners[i][1],
			SrcX:   src[i][0],
			SrcY:   src[i][1],
			ColorR: tint,
			ColorG: tint,
			ColorB: tint,
			ColorA: 1,
		})
	}
	return dst
}

// Draw renders the scene onto screen.
func (r *Renderer) Draw(screen *ebiten.Image, scene *gallery.Scene) {
	screen.Fill(background)

	for _, pc := range project(scene.Poses(), scene.Camera()) {
		tex, _ := r.Textures.Texture(pc.pose.Card)
		b := tex.Bounds()
		tint := float32(0.85)
		if pc.pose.Card.Active {
			tint = 1
		}
		r.vertices = quadVertices(r.vertices[:0], pc.corners, float32(b.Dx()), float32(b.Dy()), tint)
		screen.DrawTriangles(r.vertices, quadIndices, tex, &ebiten.DrawTrianglesOptions{Filter: ebiten.FilterLinear})
	}

	if c, ok := scene.ActiveCard(); ok {
		h := screen.Bounds().Dy()
		ebitenutil.DebugPrintAt(screen, caption(c.Image.Title, c.Image.OwnerTitle), 16, h-40)
	}
}

// DrawStatus shows text on an empty background. It stands in for the scene
// while the collection is loading or empty.
func (r *Renderer) DrawStatus(screen *ebiten.Image, text string) {
	screen.Fill(background)
	ebitenutil.DebugPrint(screen, text)
}

func caption(title, owner string) string {
	if owner == "" {
		return title
	}
	return fmt.Sprintf("%s\n%s", title, owner)
}
