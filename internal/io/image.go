package ioutils

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
)

// ResizeImage resizes an image to fit within the specified maximum
// dimensions, preserving the aspect ratio.
//
// camsync uses this to build the optional thumbnail index of a synced
// tree. If the image is already smaller than the maximum dimensions it
// is still re-encoded as JPEG.
//
// Parameters:
//   - data: Original image data (JPEG, PNG, etc.)
//   - maxWidth: Maximum width in pixels
//   - maxHeight: Maximum height in pixels
//
// Returns the resized image as JPEG-encoded bytes.
//
// The Catmull-Rom algorithm is used for high-quality resizing.
//
// Example:
//
//	thumb, err := ResizeImage(photoData, 256, 256)
//	// A 6000x4000 photo becomes a 256x171 thumbnail
func ResizeImage(data []byte, maxWidth, maxHeight int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	// Calculate new dimensions maintaining aspect ratio
	if width > maxWidth || height > maxHeight {
		ratio := float64(width) / float64(height)
		if float64(maxWidth)/float64(maxHeight) > ratio {
			// Height is the limiting factor
			width = int(float64(maxHeight) * ratio)
			height = maxHeight
		} else {
			// Width is the limiting factor
			height = int(float64(maxWidth) / ratio)
			width = maxWidth
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))

	// Use Catmull-Rom for high-quality scaling
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
