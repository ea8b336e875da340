// Package image implements the accumulation buffer, the Ward tone-mapping
// operator, and the PPM (P6) encoder used to flush progressive renders to
// disk.
package image

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/hxa7241/minilight-go/pkg/core"
)

// MaxDimension is the largest width or height an Image may have.
const MaxDimension = 4000

// displayLuminanceMax is the Ward tone-map's display-adaptation luminance.
const displayLuminanceMax = 200.0

// luminance weights are BT.709 coefficients.
var luminanceWeight = core.NewVec3(0.2126, 0.7152, 0.0722)

// Image is a row-major W*H*3 accumulation buffer of linear radiance.
// The buffer is written out in order, so its row 0 is the top scan-line of
// the output image; pixel row y is stored at buffer row height-1-y.
type Image struct {
	width, height int
	pixels        []float64
}

// New builds a zeroed Image, clamping width and height to [1, MaxDimension].
func New(width, height int) *Image {
	width = clampDim(width)
	height = clampDim(height)
	return &Image{
		width:  width,
		height: height,
		pixels: make([]float64, width*height*3),
	}
}

func clampDim(d int) int {
	if d < 1 {
		return 1
	}
	if d > MaxDimension {
		return MaxDimension
	}
	return d
}

// Width returns the image width in pixels.
func (img *Image) Width() int { return img.width }

// Height returns the image height in pixels.
func (img *Image) Height() int { return img.height }

// AddToPixel accumulates v into pixel (x,y), ignoring out-of-range
// coordinates. y=0 addresses the bottom scan-line of the output image; it is
// stored in the last row of the buffer.
func (img *Image) AddToPixel(x, y int, v core.Vec3) {
	if x < 0 || x >= img.width || y < 0 || y >= img.height {
		return
	}
	i := (x + (img.height-1-y)*img.width) * 3
	img.pixels[i+0] += v.X
	img.pixels[i+1] += v.Y
	img.pixels[i+2] += v.Z
}

// wardToneScale computes the Ward tone-mapping scale factor T over the
// current accumulated buffer, given divider = 1/max(iteration,1).
func (img *Image) wardToneScale(divider float64) float64 {
	sumLogY := 0.0
	n := len(img.pixels) / 3
	for p := 0; p < n; p++ {
		r := img.pixels[p*3+0] * divider
		g := img.pixels[p*3+1] * divider
		b := img.pixels[p*3+2] * divider
		y := r*luminanceWeight.X + g*luminanceWeight.Y + b*luminanceWeight.Z
		sumLogY += math.Log10(math.Max(y, 1e-4))
	}
	adaptLuminance := math.Pow(10, sumLogY/float64(n))

	a := 1.219 + math.Pow(displayLuminanceMax*0.25, 0.4)
	b := 1.219 + math.Pow(adaptLuminance, 0.4)
	return math.Pow(a/b, 2.5) / displayLuminanceMax
}

// WritePPM tone-maps, gamma-corrects and writes the accumulated buffer as a
// binary PPM (P6), dividing by max(iteration,1).
func (img *Image) WritePPM(out io.Writer, iteration int) error {
	divider := 1.0
	if iteration > 1 {
		divider = 1.0 / float64(iteration)
	}
	scale := img.wardToneScale(divider)

	w := bufio.NewWriter(out)
	if _, err := fmt.Fprintf(w, "P6\n# http://www.hxa.name/minilight\n\n%d %d\n255\n", img.width, img.height); err != nil {
		return err
	}

	for _, channel := range img.pixels {
		m := channel * divider * scale
		g := math.Pow(math.Max(m, 0), 0.45)
		byteVal := g*255 + 0.5
		if byteVal > 255 {
			byteVal = 255
		}
		if err := w.WriteByte(byte(byteVal)); err != nil {
			return err
		}
	}
	return w.Flush()
}

