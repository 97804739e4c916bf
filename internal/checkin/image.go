package checkin

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// maxImageDimension keeps uploads under the provider's size limits. Faces
// remain detectable well below this resolution.
const maxImageDimension = 1600

// prepareImage decodes a capture, downscales it when a dimension exceeds
// maxImageDimension and returns the JPEG re-encoding as base64, ready for a
// form upload.
func prepareImage(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("could not decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > maxImageDimension || height > maxImageDimension {
		var newWidth, newHeight int
		if width > height {
			newWidth = maxImageDimension
			newHeight = int(float64(height) * float64(maxImageDimension) / float64(width))
		} else {
			newHeight = maxImageDimension
			newWidth = int(float64(width) * float64(maxImageDimension) / float64(height))
		}

		resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
		img = resized
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("could not encode image: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
