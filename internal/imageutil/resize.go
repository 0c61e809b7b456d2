package imageutil

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

// DefaultLogoHeight is the pixel height logos are scaled down to for the invoice header
const DefaultLogoHeight = 160

// Logo is a header image ready to embed in a document
type Logo struct {
	PNG    []byte
	Width  int
	Height int
}

// AspectRatio returns width over height
func (l *Logo) AspectRatio() float64 {
	if l == nil || l.Height == 0 {
		return 0
	}
	return float64(l.Width) / float64(l.Height)
}

// PrepareLogo decodes a PNG or JPEG, scales it down to maxHeight while keeping
// the aspect ratio, and re-encodes it as PNG
func PrepareLogo(imageData []byte, maxHeight int) (*Logo, error) {
	if maxHeight <= 0 {
		maxHeight = DefaultLogoHeight
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode logo: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("logo has no pixels")
	}

	var out image.Image = img
	if height > maxHeight {
		newHeight := maxHeight
		newWidth := int(float64(width) * float64(maxHeight) / float64(height))
		if newWidth < 1 {
			newWidth = 1
		}

		dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		out = dst
		width, height = newWidth, newHeight
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode logo: %w", err)
	}

	return &Logo{PNG: buf.Bytes(), Width: width, Height: height}, nil
}

// LoadLogo reads and prepares a logo file
func LoadLogo(path string, maxHeight int) (*Logo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read logo: %w", err)
	}
	return PrepareLogo(data, maxHeight)
}
