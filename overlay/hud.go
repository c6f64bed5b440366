// Package overlay rasterizes the status line drawn on top of the volume.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Stats is the data shown by the HUD.
type Stats struct {
	Mode     string
	Volume   string
	Pitch    float64 // radians
	Yaw      float64 // radians
	Distance float64
	Frames   uint64
	Dropped  uint64
	// Pick describes the last picked voxel, empty when nothing is picked.
	Pick string
}

// Lines formats the stats for display. Angles are shown in degrees.
func (s Stats) Lines() []string {
	lines := []string{
		fmt.Sprintf("Mode: %s  Volume: %s", s.Mode, s.Volume),
		fmt.Sprintf("Pitch: %7.1f  Yaw: %7.1f", s.Pitch*180/math.Pi, s.Yaw*180/math.Pi),
		fmt.Sprintf("Dist: %.3f  Frames: %d", s.Distance, s.Frames),
	}
	if s.Dropped > 0 {
		lines = append(lines, fmt.Sprintf("Dropped: %d", s.Dropped))
	}
	if s.Pick != "" {
		lines = append(lines, "Pick: "+s.Pick)
	}
	return lines
}

var background = color.RGBA{0, 0, 0, 160}

// HUD holds the last rasterized status image and only redraws it when the
// text changes.
type HUD struct {
	face    font.Face
	padding int
	text    string
	img     *image.RGBA
}

func NewHUD() *HUD {
	return &HUD{face: basicfont.Face7x13, padding: 6}
}

// Update re-rasterizes the HUD if the formatted stats differ from the
// previous call. It reports whether the image changed.
func (h *HUD) Update(s Stats) bool {
	lines := s.Lines()
	text := strings.Join(lines, "\n")
	if h.img != nil && text == h.text {
		return false
	}
	h.text = text
	h.img = h.rasterize(lines)
	return true
}

// Image returns the current HUD image, nil before the first Update.
func (h *HUD) Image() *image.RGBA {
	return h.img
}

// Text returns the text the current image shows.
func (h *HUD) Text() string {
	return h.text
}

func (h *HUD) rasterize(lines []string) *image.RGBA {
	metrics := h.face.Metrics()
	lineHeight := metrics.Height.Ceil()
	width := 0
	for _, l := range lines {
		width = max(width, font.MeasureString(h.face, l).Ceil())
	}
	img := image.NewRGBA(image.Rect(0, 0, width+2*h.padding, lineHeight*len(lines)+2*h.padding))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	d := &font.Drawer{Dst: img, Src: image.White, Face: h.face}
	for i, l := range lines {
		d.Dot = fixed.P(h.padding, h.padding+i*lineHeight+metrics.Ascent.Ceil())
		d.DrawString(l)
	}
	return img
}
