package main

import (
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"dataprep/src/config"
	"dataprep/src/normalizer"
)

func writeImage(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	cmd := newRootCmd(logger, io.Discard)
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.Execute()
}

func TestRootCommandDefaults(t *testing.T) {
	src := t.TempDir()
	writeImage(t, filepath.Join(src, "b.png"), 40, 20)
	writeImage(t, filepath.Join(src, "a.png"), 20, 40)
	root := filepath.Join(t.TempDir(), "data")

	err := execute(t, "--folder_path", src, "--name", "faces", "--output_root", root)
	require.NoError(t, err)

	count, err := normalizer.Verify(filepath.Join(root, "faces", "images"), config.DefaultResolution)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestRootCommandFlags(t *testing.T) {
	src := t.TempDir()
	writeImage(t, filepath.Join(src, "a.png"), 100, 200)
	root := filepath.Join(t.TempDir(), "data")

	err := execute(t,
		"--folder_path", src,
		"--name", "faces",
		"--method", "pad",
		"--resolution", "128",
		"--output_root", root,
		"--manifest",
	)
	require.NoError(t, err)

	count, err := normalizer.Verify(filepath.Join(root, "faces", "images"), 128)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	m, err := normalizer.ReadManifest(filepath.Join(root, "faces", "manifest.yaml"))
	require.NoError(t, err)
	require.Equal(t, config.MethodPad, m.Method)
}

func TestRootCommandConfigFile(t *testing.T) {
	src := t.TempDir()
	writeImage(t, filepath.Join(src, "a.png"), 10, 10)
	root := filepath.Join(t.TempDir(), "data")

	configFile := filepath.Join(t.TempDir(), "dataprep.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("method: pad\nresolution: 48\noutput_root: "+root+"\n"), 0644))

	// an explicit flag wins over the file
	err := execute(t, "--folder_path", src, "--name", "icons", "--config", configFile, "--resolution", "24")
	require.NoError(t, err)

	count, err := normalizer.Verify(filepath.Join(root, "icons", "images"), 24)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestRootCommandErrors(t *testing.T) {
	src := t.TempDir()
	writeImage(t, filepath.Join(src, "a.png"), 10, 10)

	t.Run("missing required flags", func(t *testing.T) {
		require.Error(t, execute(t, "--folder_path", src))
		require.Error(t, execute(t, "--name", "x"))
	})

	t.Run("unsupported method", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "data")
		err := execute(t, "--folder_path", src, "--name", "x", "--method", "stretch", "--output_root", root)
		require.ErrorIs(t, err, config.ErrUnsupportedMethod)
		_, statErr := os.Stat(root)
		require.True(t, os.IsNotExist(statErr))
	})

	t.Run("non-positive resolution", func(t *testing.T) {
		err := execute(t, "--folder_path", src, "--name", "x", "--resolution", "0", "--output_root", t.TempDir())
		require.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("existing output", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "data")
		require.NoError(t, execute(t, "--folder_path", src, "--name", "x", "--output_root", root))
		err := execute(t, "--folder_path", src, "--name", "x", "--output_root", root)
		require.ErrorIs(t, err, normalizer.ErrOutputExists)
	})

	t.Run("positional arguments", func(t *testing.T) {
		require.Error(t, execute(t, "--folder_path", src, "--name", "x", "extra"))
	})
}
