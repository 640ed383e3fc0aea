package report

import (
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// Crop box around a date, relative to the month token, and the snippet height.
const (
	snippetLeft   = 140
	snippetTop    = 20
	snippetRight  = 700
	snippetBottom = 80
	snippetHeight = 30
)

// accessExtensions are the access image formats that can be decoded.
// JPEG 2000 is not among them.
var accessExtensions = []string{".jpg", ".jpeg", ".png", ".tif", ".tiff"}

// decodableAccessImage returns an access image of the item in a decodable format,
// or "" when there is none.
func decodableAccessImage(batchPath, sourceID string) string {
	base := filepath.Join(batchPath, sourceID, "access", sourceID+"_00001_access")
	for _, ext := range accessExtensions {
		if _, err := os.Stat(base + ext); err == nil {
			return base + ext
		}
	}
	return ""
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open access image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode access image %s: %w", path, err)
	}
	return img, nil
}

// cropSnippet cuts the area around (h, v) out of img and scales it to snippetHeight.
// Parts of the box outside the image stay black.
func cropSnippet(img image.Image, h, v int) image.Image {
	box := image.Rect(h-snippetLeft, v-snippetTop, h+snippetRight, v+snippetBottom)
	canvas := image.NewRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	draw.Draw(canvas, canvas.Bounds(), img, box.Min, draw.Src)

	width := box.Dx() * snippetHeight / box.Dy()
	out := image.NewRGBA(image.Rect(0, 0, width, snippetHeight))
	draw.CatmullRom.Scale(out, out.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)
	return out
}

// scaleTo resizes img to the given width, keeping its aspect ratio.
func scaleTo(img image.Image, width int) image.Image {
	b := img.Bounds()
	if b.Dx() <= width {
		return img
	}
	height := max(1, b.Dy()*width/b.Dx())
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(out, out.Bounds(), img, b, draw.Src, nil)
	return out
}

func writeJPEG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return f.Close()
}
