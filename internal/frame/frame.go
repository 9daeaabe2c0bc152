// Package frame provides frame sources that feed brightness into the
// sampler.
package frame

import (
	"context"
	"errors"
	"image"
)

// ErrDenied is returned by sources that refuse access to their frames.
var ErrDenied = errors.New("frame: access denied")

// Source acquires a frame handle. Acquisition happens once per measurement
// and may block until the device or stream is ready.
type Source interface {
	Acquire(ctx context.Context) (Handle, error)
}

// Handle reads the mean brightness of the current frame over a width x
// height region anchored at the top-left corner.
type Handle interface {
	Brightness(width, height int) float64
	Close() error
}

// AverageBrightness returns the mean of (R+G+B)/3 over the region. Regions
// outside the image are clipped; an empty region yields 0.
func AverageBrightness(img *image.RGBA, width, height int) float64 {
	if img == nil {
		return 0
	}

	b := img.Bounds()
	r := image.Rect(b.Min.X, b.Min.Y, b.Min.X+width, b.Min.Y+height).Intersect(b)
	if r.Empty() {
		return 0
	}

	var sum float64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := img.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			p := img.Pix[i : i+4 : i+4]
			sum += (float64(p[0]) + float64(p[1]) + float64(p[2])) / 3
			i += 4
		}
	}
	return sum / float64(r.Dx()*r.Dy())
}
