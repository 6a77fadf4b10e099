package scoring

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"

	_ "golang.org/x/image/webp"
)

// CanvasReport summarises a drawing for the artistic score
type CanvasReport struct {
	TotalPixels   int `json:"totalPixels"`
	ColoredPixels int `json:"coloredPixels"`
	EdgePixels    int `json:"edgePixels"`
	UniqueColors  int `json:"uniqueColors"`
	// Coverage is the percentage of pixels that are not near-white
	Coverage      float64 `json:"coverage"`
	ArtisticScore int     `json:"artisticScore"`
}

const (
	nearWhite     = 240
	edgeThreshold = 50
)

// MaxCanvasPixels bounds the decoded size of a canvas
const MaxCanvasPixels = 2048 * 2048

var ErrCanvasTooLarge = errors.New("canvas dimensions are too large")

// DecodeCanvas decodes a PNG, JPEG or WebP canvas snapshot. The header is
// checked against MaxCanvasPixels before any pixel data is decoded.
func DecodeCanvas(r io.Reader) (image.Image, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read canvas: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode canvas: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", fmt.Errorf("failed to decode canvas: empty image %dx%d", cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxCanvasPixels {
		return nil, "", fmt.Errorf("%w: %dx%d", ErrCanvasTooLarge, cfg.Width, cfg.Height)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode canvas: %w", err)
	}
	return img, format, nil
}

// AnalyzeCanvas walks every pixel in raster order. Transparent pixels count as
// paper, so they are composited over white before classification.
func AnalyzeCanvas(img image.Image) CanvasReport {
	var report CanvasReport
	if img == nil {
		return report
	}

	bounds := img.Bounds()
	colors := make(map[[3]uint8]struct{})
	var prev [3]uint8
	havePrev := false

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			px := overWhite(img.At(x, y).RGBA())
			report.TotalPixels++

			if !isNearWhite(px) {
				report.ColoredPixels++
				colors[px] = struct{}{}
				if havePrev && isEdge(prev, px) {
					report.EdgePixels++
				}
			}
			prev = px
			havePrev = true
		}
	}

	report.UniqueColors = len(colors)
	if report.TotalPixels > 0 {
		report.Coverage = float64(report.ColoredPixels) / float64(report.TotalPixels) * 100
	}
	report.ArtisticScore = artisticScore(report)
	return report
}

func artisticScore(r CanvasReport) int {
	if r.TotalPixels == 0 {
		return 0
	}
	coverage := float64(r.ColoredPixels) / float64(r.TotalPixels) * 40
	variety := math.Min(float64(r.UniqueColors*3), 30)

	neatness := 0.0
	if r.ColoredPixels > 0 {
		edgeRatio := float64(r.EdgePixels) / float64(r.ColoredPixels)
		neatness = math.Min((1-edgeRatio)*30, 30)
	}

	bonus := 0.0
	switch {
	case r.UniqueColors >= 3:
		bonus = 10
	case r.UniqueColors >= 2:
		bonus = 5
	}

	return int(math.Min(math.Round(coverage+variety+neatness+bonus), 100))
}

func overWhite(r, g, b, a uint32) [3]uint8 {
	// RGBA() is alpha-premultiplied in [0, 0xffff]
	paper := 0xffff - a
	return [3]uint8{uint8((r + paper) >> 8), uint8((g + paper) >> 8), uint8((b + paper) >> 8)}
}

func isNearWhite(px [3]uint8) bool {
	return px[0] > nearWhite && px[1] > nearWhite && px[2] > nearWhite
}

func isEdge(a, b [3]uint8) bool {
	for i := range a {
		if absDiff(a[i], b[i]) > edgeThreshold {
			return true
		}
	}
	return false
}

func absDiff(a, b uint8) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}
