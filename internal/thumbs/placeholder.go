package thumbs

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// placeholder builds a 16:9 stand-in thumbnail for a video whose frame
// could not be extracted: a dark vertical gradient with the file name
// printed near the bottom. The play badge is stamped by the caller.
func placeholder(name string, width int) *image.NRGBA {
	height := width * 9 / 16
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	top := color.NRGBA{R: 45, G: 55, B: 72, A: 255}
	bottom := color.NRGBA{R: 26, G: 32, B: 44, A: 255}

	for y := 0; y < height; y++ {
		t := float64(y) / float64(height-1)
		c := color.NRGBA{
			R: lerp(top.R, bottom.R, t),
			G: lerp(top.G, bottom.G, t),
			B: lerp(top.B, bottom.B, t),
			A: 255,
		}
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}

	drawLabel(img, truncateLabel(name, width), height-16)
	return img
}

// stampPlayBadge overlays a translucent play control in the center of a
// video thumbnail so it reads as a video in the gallery grid.
func stampPlayBadge(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	cx := b.Min.X + b.Dx()/2
	cy := b.Min.Y + b.Dy()/2
	r := b.Dy() / 6
	if r < 8 {
		r = 8
	}

	circle := color.NRGBA{R: 255, G: 255, B: 255, A: 200}
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				blend(img, x, y, circle)
			}
		}
	}

	// Triangle pointing right, nudged slightly off-center so it looks
	// visually centered inside the circle.
	ax, ay := cx-r/3, cy-r/2
	bx, by := cx-r/3, cy+r/2
	tx, ty := cx+r/2, cy
	tri := color.NRGBA{R: 26, G: 32, B: 44, A: 255}
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			if inTriangle(x, y, ax, ay, bx, by, tx, ty) {
				img.SetNRGBA(x, y, tri)
			}
		}
	}

	return img
}

func drawLabel(img *image.NRGBA, label string, baseline int) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, label).Ceil()
	x := (img.Bounds().Dx() - width) / 2
	if x < 4 {
		x = 4
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.NRGBA{R: 226, G: 232, B: 240, A: 255}),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(label)
}

func truncateLabel(name string, width int) string {
	max := (width - 8) / 7 // basicfont glyphs are 7px wide
	if max < 4 {
		max = 4
	}
	if len(name) <= max {
		return name
	}
	return name[:max-3] + "..."
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

func blend(img *image.NRGBA, x, y int, c color.NRGBA) {
	base := img.NRGBAAt(x, y)
	a := float64(c.A) / 255
	img.SetNRGBA(x, y, color.NRGBA{
		R: uint8(float64(c.R)*a + float64(base.R)*(1-a)),
		G: uint8(float64(c.G)*a + float64(base.G)*(1-a)),
		B: uint8(float64(c.B)*a + float64(base.B)*(1-a)),
		A: 255,
	})
}

// inTriangle tests point (px,py) against triangle (ax,ay)-(bx,by)-(cx,cy)
// using sign-of-cross-product edge tests.
func inTriangle(px, py, ax, ay, bx, by, cx, cy int) bool {
	d1 := sign(px, py, ax, ay, bx, by)
	d2 := sign(px, py, bx, by, cx, cy)
	d3 := sign(px, py, cx, cy, ax, ay)

	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func sign(px, py, ax, ay, bx, by int) int {
	return (px-bx)*(ay-by) - (ax-bx)*(py-by)
}
