package processor

// Image processor for dataset normalization
//
// Every image goes through the same fixed pipeline:
// 1. Load and coerce to opaque RGB
// 2. Square it, either by center crop or by edge padding
// 3. Resize to resolution x resolution (Lanczos)
// 4. Save as PNG, never overwriting an existing file

import (
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"

	"dataprep/src/config"
)

// Load decodes a JPEG or PNG file and coerces it to RGB.
func Load(path string) (*image.NRGBA, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}
	return ToRGB(img), nil
}

// ToRGB returns a copy of img with every pixel fully opaque. Colour values
// are kept as stored, so transparent regions reveal whatever colour they
// carry instead of being composited onto a background.
func ToRGB(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

// Crop cuts the centered square out of img
func Crop(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	box := CropBox(b.Dx(), b.Dy()).Add(b.Min)
	if box == b {
		return img
	}
	return imaging.Crop(img, box)
}

// Pad extends img to a square by replicating its edge pixels outward
func Pad(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	p := PadAmounts(b.Dx(), b.Dy())
	if p.Total() == 0 {
		return img
	}
	return padEdge(img, p)
}

// padEdge copies every destination pixel from the clamped source coordinate.
func padEdge(src *image.NRGBA, p Padding) *image.NRGBA {
	sb := src.Bounds()
	w, h := sb.Dx(), sb.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w+p.Left+p.Right, h+p.Top+p.Bottom))
	db := dst.Bounds()

	for y := 0; y < db.Dy(); y++ {
		sy := clamp(y-p.Top, 0, h-1) + sb.Min.Y
		srcRow := src.Pix[src.PixOffset(sb.Min.X, sy):]
		dstRow := dst.Pix[dst.PixOffset(0, y):]
		for x := 0; x < db.Dx(); x++ {
			sx := clamp(x-p.Left, 0, w-1)
			copy(dstRow[x*4:x*4+4], srcRow[sx*4:sx*4+4])
		}
	}
	return dst
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Square makes img square with the given method
func Square(img *image.NRGBA, method config.Method) (*image.NRGBA, error) {
	switch method {
	case config.MethodCrop:
		return Crop(img), nil
	case config.MethodPad:
		return Pad(img), nil
	default:
		_, err := config.ParseMethod(string(method))
		return nil, err
	}
}

// Resize scales a square image to resolution x resolution. An image whose
// width already matches is returned as is.
func Resize(img *image.NRGBA, resolution int) *image.NRGBA {
	if img.Bounds().Dx() == resolution {
		return img
	}
	return imaging.Resize(img, resolution, resolution, imaging.Lanczos)
}

// Process squares then resizes img
func Process(img *image.NRGBA, method config.Method, resolution int) (*image.NRGBA, error) {
	squared, err := Square(img, method)
	if err != nil {
		return nil, err
	}
	return Resize(squared, resolution), nil
}

// Save writes img as PNG to path. The file must not exist yet; a partially
// written file is removed if encoding fails.
func Save(img image.Image, path string) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if err := imaging.Encode(f, img, imaging.PNG); err != nil {
		return fmt.Errorf("failed to encode png %s: %w", path, err)
	}
	return nil
}
