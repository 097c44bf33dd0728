package normalizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
	"gopkg.in/cheggaaa/pb.v1"

	"dataprep/src/config"
	"dataprep/src/processor"
)

// ErrOutputExists is returned when the output directory of a dataset is already present
var ErrOutputExists = errors.New("output directory already exists")

// imageExtensions are matched case-sensitively
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Entry describes one written output image
type Entry struct {
	Index  int    `yaml:"index"`
	Source string `yaml:"source"`
	Output string `yaml:"output"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Result is the outcome of a run, in input order
type Result struct {
	OutputDir string
	Entries   []Entry
}

// Normalizer turns a folder of images into a square PNG dataset
type Normalizer struct {
	cfg      *config.Config
	log      logrus.FieldLogger
	progress io.Writer
}

// New creates a normalizer. Progress bars are drawn on progress; pass
// io.Discard to silence them.
func New(cfg *config.Config, log logrus.FieldLogger, progress io.Writer) *Normalizer {
	return &Normalizer{cfg: cfg, log: log, progress: progress}
}

// IsImageFile reports whether name carries one of the accepted extensions
func IsImageFile(name string) bool {
	return imageExtensions[filepath.Ext(name)]
}

// OutputName returns the file name for the image at index
func OutputName(index int) string {
	return fmt.Sprintf("image_%03d.png", index)
}

// Discover lists the images directly inside folder, sorted by path.
// Subdirectories are not visited.
func Discover(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to read input folder: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !IsImageFile(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(folder, entry.Name()))
	}

	sort.Strings(paths)
	return paths, nil
}

// PrepareOutputDir creates dir and its missing parents. The leaf itself
// must not exist.
func PrepareOutputDir(dir string) error {
	if err := os.MkdirAll(filepath.Dir(dir), 0755); err != nil {
		return fmt.Errorf("failed to create dataset folder: %w", err)
	}

	if err := os.Mkdir(dir, 0755); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrOutputExists, dir)
		}
		return fmt.Errorf("failed to create output folder: %w", err)
	}

	return nil
}

// Run normalizes every discovered image. The first failure stops the run;
// images already written stay on disk.
func (n *Normalizer) Run(ctx context.Context) (*Result, error) {
	if err := n.cfg.Validate(); err != nil {
		return nil, err
	}

	outputDir := n.cfg.OutputDir()
	if err := PrepareOutputDir(outputDir); err != nil {
		return nil, err
	}

	inputs, err := Discover(n.cfg.FolderPath)
	if err != nil {
		return nil, err
	}

	n.log.WithFields(logrus.Fields{
		"images":     len(inputs),
		"method":     n.cfg.Method,
		"resolution": n.cfg.Resolution,
		"output":     outputDir,
	}).Info("Normalizing images")

	bar := pb.New(len(inputs)).Prefix(n.cfg.Name + " ")
	bar.Output = n.progress
	bar.Start()
	defer bar.Finish()

	result := &Result{OutputDir: outputDir, Entries: make([]Entry, 0, len(inputs))}
	for i, path := range inputs {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("interrupted after %d of %d images: %w", i, len(inputs), err)
		}

		entry, err := n.ProcessOne(i, path)
		if err != nil {
			return result, err
		}
		result.Entries = append(result.Entries, entry)
		bar.Increment()
	}

	if n.cfg.Manifest {
		if err := n.WriteManifest(result); err != nil {
			return result, err
		}
	}

	n.log.WithField("images", len(result.Entries)).Info("Done")
	return result, nil
}

// ProcessOne loads, squares, resizes and saves the image at path as the
// output with the given index.
func (n *Normalizer) ProcessOne(index int, path string) (Entry, error) {
	img, err := processor.Load(path)
	if err != nil {
		return Entry{}, err
	}
	b := img.Bounds()

	out, err := processor.Process(img, n.cfg.Method, n.cfg.Resolution)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to process %s: %w", path, err)
	}

	name := OutputName(index)
	if err := processor.Save(out, filepath.Join(n.cfg.OutputDir(), name)); err != nil {
		return Entry{}, fmt.Errorf("failed to save %s: %w", path, err)
	}

	n.log.WithFields(logrus.Fields{
		"index":  index,
		"source": path,
		"width":  b.Dx(),
		"height": b.Dy(),
	}).Debug("Wrote " + name)

	return Entry{
		Index:  index,
		Source: path,
		Output: name,
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}
