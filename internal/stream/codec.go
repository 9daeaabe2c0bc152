package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
)

const headerSize = 4

// ErrShortFrame is returned for payloads whose pixel data does not match the
// header.
var ErrShortFrame = errors.New("stream: frame payload size mismatch")

// EncodeFrame packs an RGBA frame as width and height (uint16 LE) followed
// by the raw pixel rows.
func EncodeFrame(img *image.RGBA) ([]byte, error) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w > 0xffff || h > 0xffff {
		return nil, fmt.Errorf("stream: frame %dx%d too large", w, h)
	}

	out := make([]byte, headerSize+4*w*h)
	binary.LittleEndian.PutUint16(out[0:], uint16(w))
	binary.LittleEndian.PutUint16(out[2:], uint16(h))

	dst := out[headerSize:]
	for y := 0; y < h; y++ {
		i := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		copy(dst[y*4*w:(y+1)*4*w], img.Pix[i:i+4*w])
	}
	return out, nil
}

// DecodeFrame is the inverse of EncodeFrame.
func DecodeFrame(b []byte) (*image.RGBA, error) {
	if len(b) < headerSize {
		return nil, ErrShortFrame
	}
	w := int(binary.LittleEndian.Uint16(b[0:]))
	h := int(binary.LittleEndian.Uint16(b[2:]))
	if len(b) != headerSize+4*w*h {
		return nil, fmt.Errorf("%w: %dx%d with %d bytes", ErrShortFrame, w, h, len(b)-headerSize)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, b[headerSize:])
	return img, nil
}
