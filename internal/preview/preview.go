// Package preview renders the MLC apertures of a scored plan as PNG images,
// one image per beam and one tile per control point.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/mrsinham/planmcs/internal/mcs"
	"github.com/mrsinham/planmcs/internal/plan"
)

const (
	defaultTileSize = 160
	defaultColumns  = 6
	baseTextHeight  = 13
	headerScale     = 2
)

var (
	background = color.RGBA{24, 24, 32, 255}
	closedLeaf = color.RGBA{70, 70, 90, 255}
	openLeaf   = color.RGBA{250, 220, 120, 255}
	white      = color.RGBA{255, 255, 255, 255}
	black      = color.RGBA{0, 0, 0, 255}
)

// Options controls the image layout.
type Options struct {
	// TileSize is the edge in pixels of one control point tile (0 = 160).
	TileSize int
	// Columns is the number of tiles per row (0 = 6).
	Columns int
	// FieldSize is the width in mm shown by a tile. 0 fits the widest
	// position of the beam.
	FieldSize float64
}

func (o Options) withDefaults() Options {
	if o.TileSize <= 0 {
		o.TileSize = defaultTileSize
	}
	if o.Columns <= 0 {
		o.Columns = defaultColumns
	}
	return o
}

// RenderBeam draws a header with the beam name, MU and score, followed by
// the aperture of every control point. Rows of a tile are leaf pairs; the
// bright band of a row spans the left leaf to the right leaf.
func RenderBeam(b plan.Beam, score mcs.BeamScore, opts Options) *image.RGBA {
	opts = opts.withDefaults()
	tiles := len(b.Segments)
	cols := min(opts.Columns, max(tiles, 1))
	rows := (tiles + cols - 1) / cols
	header := baseTextHeight*headerScale + 8

	width := cols * opts.TileSize
	height := header + rows*opts.TileSize
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	name := b.Name
	if name == "" {
		name = fmt.Sprintf("Beam_%d", b.Number)
	}
	drawLabel(img, 4, 4, fmt.Sprintf("%s  MU %.1f  MCS %.4f", name, b.MU, score.MCS), headerScale)

	half := opts.FieldSize / 2
	if half <= 0 {
		half = fieldHalfWidth(b.Segments)
	}
	for i, seg := range b.Segments {
		x := (i % cols) * opts.TileSize
		y := header + (i/cols)*opts.TileSize
		tile := image.Rect(x+1, y+1, x+opts.TileSize-1, y+opts.TileSize-1)
		drawAperture(img, tile, seg.LeafJawPositions, half)
		drawLabel(img, tile.Min.X+2, tile.Min.Y+2, fmt.Sprintf("CP %d", i), 1)
	}
	return img
}

// fieldHalfWidth returns the largest absolute position plus a margin, at
// least 10 mm.
func fieldHalfWidth(segments []plan.Segment) float64 {
	widest := 0.0
	for _, s := range segments {
		for _, p := range s.LeafJawPositions {
			widest = math.Max(widest, math.Abs(p))
		}
	}
	return math.Max(widest*1.1, 10)
}

func drawAperture(img *image.RGBA, tile image.Rectangle, positions []float64, half float64) {
	draw.Draw(img, tile, image.NewUniform(closedLeaf), image.Point{}, draw.Src)
	pairs := len(positions) / 2
	if pairs == 0 {
		return
	}

	toX := func(mm float64) int {
		frac := (mm + half) / (2 * half)
		frac = math.Min(math.Max(frac, 0), 1)
		return tile.Min.X + int(math.Round(frac*float64(tile.Dx())))
	}
	rowHeight := float64(tile.Dy()) / float64(pairs)
	for i := 0; i < pairs; i++ {
		left, right := positions[i], positions[pairs+i]
		if right <= left {
			continue
		}
		y0 := tile.Min.Y + int(float64(i)*rowHeight)
		y1 := tile.Min.Y + int(float64(i+1)*rowHeight)
		if y1 == y0 {
			y1 = y0 + 1
		}
		draw.Draw(img, image.Rect(toX(left), y0, toX(right), y1), image.NewUniform(openLeaf), image.Point{}, draw.Src)
	}
}

// drawLabel renders text with the 7x13 bitmap face, scaled by an integer
// factor, white on a one pixel black outline.
func drawLabel(img *image.RGBA, x, y int, text string, scale int) {
	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, text).Ceil()
	if textWidth == 0 {
		return
	}

	textImg := image.NewRGBA(image.Rect(0, 0, textWidth, baseTextHeight))
	drawer := &font.Drawer{
		Dst:  textImg,
		Src:  image.NewUniform(white),
		Face: face,
		Dot:  fixed.Point26_6{Y: fixed.I(baseTextHeight - 2)},
	}
	drawer.DrawString(text)

	scaled := textImg
	if scale > 1 {
		scaled = image.NewRGBA(image.Rect(0, 0, textWidth*scale, baseTextHeight*scale))
		draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), textImg, textImg.Bounds(), draw.Over, nil)
	}

	bounds := img.Bounds()
	b := scaled.Bounds()
	for sy := 0; sy < b.Dy(); sy++ {
		for sx := 0; sx < b.Dx(); sx++ {
			if scaled.RGBAAt(sx, sy).A == 0 {
				continue
			}
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					p := image.Pt(x+sx+dx, y+sy+dy)
					if p.In(bounds) && (dx != 0 || dy != 0) {
						img.SetRGBA(p.X, p.Y, black)
					}
				}
			}
		}
	}
	for sy := 0; sy < b.Dy(); sy++ {
		for sx := 0; sx < b.Dx(); sx++ {
			if scaled.RGBAAt(sx, sy).A == 0 {
				continue
			}
			if p := image.Pt(x+sx, y+sy); p.In(bounds) {
				img.SetRGBA(p.X, p.Y, white)
			}
		}
	}
}

// WritePlan writes one PNG per beam with at least one control point into
// dir, named <prefix>_<beam>.png, and returns the written paths.
func WritePlan(dir, prefix string, p plan.Plan, score mcs.ScoreResult, opts Options) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create preview directory: %w", err)
	}

	var paths []string
	for i, b := range p.Beams {
		if len(b.Segments) == 0 {
			continue
		}
		var bs mcs.BeamScore
		if i < len(score.BeamScores) {
			bs = score.BeamScores[i]
		}

		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", prefix, fileSafe(b, i)))
		if err := writePNG(path, RenderBeam(b, bs, opts)); err != nil {
			return paths, fmt.Errorf("write preview %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// fileSafe returns the beam name with path separators and spaces replaced,
// or the beam index when the name is empty.
func fileSafe(b plan.Beam, index int) string {
	name := strings.TrimSpace(b.Name)
	if name == "" {
		return fmt.Sprintf("beam%02d", index+1)
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
