// renderer_ebiten.go - windowed VRAM presentation (§6.1)

/*
Mirrors the teacher's video_backend_ebiten.go: an ebiten.Game driving a
single RGBA framebuffer, updated from VRAM on each Present and scaled with
x/image/draw rather than hand-rolled nearest-neighbour loops.

ebiten's event loop owns the host's main goroutine (a platform requirement
on several of ebiten's backends), while the CPU keeps stepping on a second
goroutine the shell spawns for it (§6.1, §7). Those two goroutines touch
the same framebuffer - GP0 draw calls and Present() write it from the CPU
goroutine, Draw reads it from ebiten's goroutine - so frame is guarded by
mu rather than left as a bare race.
*/

package main

import (
	"image"
	"image/color"
	"os"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/draw"
)

const ebitenWindowScale = 2

// EbitenRenderer presents GPU frames in a desktop window.
type EbitenRenderer struct {
	mu     sync.Mutex
	frame  *image.RGBA
	window *image.RGBA
	area   Rect
	quads  int
	tris   int
	dots   int
}

func newEbitenRenderer() *EbitenRenderer {
	r := &EbitenRenderer{
		frame: image.NewRGBA(image.Rect(0, 0, vramWidth, vramHeight)),
	}
	ebiten.SetWindowTitle("psx-core")
	ebiten.SetWindowSize(vramWidth*ebitenWindowScale, vramHeight*ebitenWindowScale)
	return r
}

func hasEbitenDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

func (r *EbitenRenderer) DrawQuad(v [4]Vertex, textured bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quads++
	r.fillPolygon(v[:])
}

func (r *EbitenRenderer) DrawTri(v [3]Vertex) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tris++
	r.fillPolygon(v[:])
}

func (r *EbitenRenderer) DrawDot(v Vertex) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dots++
	if v.X >= 0 && int(v.X) < r.frame.Bounds().Dx() && v.Y >= 0 && int(v.Y) < r.frame.Bounds().Dy() {
		r.frame.Set(int(v.X), int(v.Y), color.RGBA{v.R, v.G, v.B, 0xFF})
	}
}

func (r *EbitenRenderer) fillPolygon(vs []Vertex) {
	minX, minY, maxX, maxY := vs[0].X, vs[0].Y, vs[0].X, vs[0].Y
	for _, v := range vs[1:] {
		if v.X < minX {
			minX = v.X
		}
		if v.X > maxX {
			maxX = v.X
		}
		if v.Y < minY {
			minY = v.Y
		}
		if v.Y > maxY {
			maxY = v.Y
		}
	}
	c := color.RGBA{vs[0].R, vs[0].G, vs[0].B, 0xFF}
	bounds := r.frame.Bounds()
	for y := int(minY); y <= int(maxY); y++ {
		if y < 0 || y >= bounds.Dy() {
			continue
		}
		for x := int(minX); x <= int(maxX); x++ {
			if x < 0 || x >= bounds.Dx() {
				continue
			}
			r.frame.Set(x, y, c)
		}
	}
}

// Present copies the GPU's committed VRAM window into the framebuffer and
// lets the ebiten game loop pick it up on its next Draw.
func (r *EbitenRenderer) Present(vram []uint16, area Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.area = area
	for y := 0; y < area.H; y++ {
		for x := 0; x < area.W; x++ {
			px := vram[(area.Y+y)*vramWidth+(area.X+x)]
			r.frame.Set(x, y, bgr555ToRGBA(px))
		}
	}
}

func bgr555ToRGBA(px uint16) color.RGBA {
	r := uint8((px & 0x1F) << 3)
	g := uint8(((px >> 5) & 0x1F) << 3)
	b := uint8(((px >> 10) & 0x1F) << 3)
	return color.RGBA{r, g, b, 0xFF}
}

// Update satisfies ebiten.Game; input is out of scope for this renderer.
func (r *EbitenRenderer) Update() error { return nil }

func (r *EbitenRenderer) Draw(screen *ebiten.Image) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bounds := screen.Bounds()
	if r.window == nil || r.window.Bounds() != bounds {
		r.window = image.NewRGBA(bounds)
	}
	draw.ApproxBiLinear.Scale(r.window, bounds, r.frame, r.frame.Bounds(), draw.Over, nil)
	screen.WritePixels(r.window.Pix)
}

func (r *EbitenRenderer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return vramWidth * ebitenWindowScale, vramHeight * ebitenWindowScale
}

// Run starts the ebiten game loop. ebiten requires this call on the host's
// main goroutine, so the shell calls it there directly and runs the CPU's
// step loop on a second goroutine instead (§6.1, §7).
func (r *EbitenRenderer) Run() error {
	return ebiten.RunGame(r)
}
