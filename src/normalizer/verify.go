package normalizer

import (
	"fmt"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
)

// Verify checks that dir holds image_000.png .. image_<n-1>.png with no
// gaps, each an RGB PNG of exactly resolution × resolution. It returns the
// number of images found.
func Verify(dir string, resolution int) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "image_*.png"))
	if err != nil {
		return 0, fmt.Errorf("failed to list outputs: %w", err)
	}
	// indices past 999 have more digits
	sort.Slice(matches, func(i, j int) bool {
		if len(matches[i]) != len(matches[j]) {
			return len(matches[i]) < len(matches[j])
		}
		return matches[i] < matches[j]
	})

	for i, path := range matches {
		if want := OutputName(i); filepath.Base(path) != want {
			return i, fmt.Errorf("expected %s, found %s", want, filepath.Base(path))
		}

		if err := verifyImage(path, resolution); err != nil {
			return i, err
		}
	}

	return len(matches), nil
}

func verifyImage(path string, resolution int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if cfg.Width != resolution || cfg.Height != resolution {
		return fmt.Errorf("%s is %dx%d, expected %dx%d", path, cfg.Width, cfg.Height, resolution, resolution)
	}
	if cfg.ColorModel != color.RGBAModel {
		return fmt.Errorf("%s is not an RGB png", path)
	}
	return nil
}
