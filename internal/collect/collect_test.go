package collect_test

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recast/internal/collect"
	"recast/internal/convert"
)

func writePNG(t *testing.T, path string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 0xff, A: 0xff})

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func TestSupported(t *testing.T) {
	tests := map[string]bool{
		"a.png":       true,
		"a.JPG":       true,
		"a.jpeg":      true,
		"a.webp":      true,
		"a.bmp":       true,
		"a.tif":       true,
		"a.TIFF":      true,
		"a.gif":       true,
		"a.ico":       true,
		"a.pdf":       false,
		"a.heic":      false,
		"notes.txt":   false,
		"no-ext":      false,
		"dir.png/raw": false,
	}

	for path, exp := range tests {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, exp, collect.Supported(path))
		})
	}
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "album", "b.png"))
	writePNG(t, filepath.Join(dir, "album", "a.png"))
	writePNG(t, filepath.Join(dir, "album", "nested", "c.png"))
	writePNG(t, filepath.Join(dir, "album", "out", "old.png"))
	writeFile(t, filepath.Join(dir, "album", "notes.txt"), "hello")
	writeFile(t, filepath.Join(dir, "album", "broken.jpg"), "not a jpeg")
	writePNG(t, filepath.Join(dir, "single.png"))

	album := filepath.Join(dir, "album")
	single := filepath.Join(dir, "single.png")

	tests := map[string]struct {
		paths      []string
		opts       collect.Options
		expFiles   []string
		expSkipped []string
		expIgnored int
	}{
		"Folders are walked recursively in lexical order": {
			paths: []string{album},
			expFiles: []string{
				filepath.Join(album, "a.png"),
				filepath.Join(album, "b.png"),
				filepath.Join(album, "broken.jpg"),
				filepath.Join(album, "nested", "c.png"),
				filepath.Join(album, "out", "old.png"),
			},
			expIgnored: 1,
		},
		"Argument order is kept and duplicates are dropped": {
			paths: []string{single, filepath.Join(album, "b.png"), single, album},
			expFiles: []string{
				single,
				filepath.Join(album, "b.png"),
				filepath.Join(album, "a.png"),
				filepath.Join(album, "broken.jpg"),
				filepath.Join(album, "nested", "c.png"),
				filepath.Join(album, "out", "old.png"),
			},
			expIgnored: 1,
		},
		"Excluded folder inside the root is not walked": {
			paths: []string{album},
			opts:  collect.Options{Exclude: filepath.Join(album, "out")},
			expFiles: []string{
				filepath.Join(album, "a.png"),
				filepath.Join(album, "b.png"),
				filepath.Join(album, "broken.jpg"),
				filepath.Join(album, "nested", "c.png"),
			},
			expIgnored: 1,
		},
		"Excluding the root itself walks it anyway": {
			paths:      []string{filepath.Join(album, "nested")},
			opts:       collect.Options{Exclude: filepath.Join(album, "nested")},
			expFiles:   []string{filepath.Join(album, "nested", "c.png")},
			expIgnored: 0,
		},
		"Verification skips undecodable files": {
			paths: []string{album},
			opts:  collect.Options{Verify: true, Workers: 2},
			expFiles: []string{
				filepath.Join(album, "a.png"),
				filepath.Join(album, "b.png"),
				filepath.Join(album, "nested", "c.png"),
				filepath.Join(album, "out", "old.png"),
			},
			expSkipped: []string{filepath.Join(album, "broken.jpg")},
			expIgnored: 1,
		},
		"Unsupported explicit files are ignored": {
			paths:      []string{filepath.Join(album, "notes.txt")},
			expIgnored: 1,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			res, err := collect.Collect(context.Background(), test.paths, test.opts)
			require.NoError(t, err)

			assert.Equal(t, test.expFiles, res.Files)
			assert.Equal(t, test.expIgnored, res.Ignored)

			var skipped []string
			for _, s := range res.Skipped {
				skipped = append(skipped, s.Path)
				assert.Equal(t, convert.KindUnreadable, convert.KindOf(s.Err))
			}
			assert.Equal(t, test.expSkipped, skipped)
		})
	}
}

func TestCollectMissingPath(t *testing.T) {
	_, err := collect.Collect(context.Background(), []string{filepath.Join(t.TempDir(), "missing")}, collect.Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCollectCancelled(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := collect.Collect(ctx, []string{dir}, collect.Options{Verify: true})
	assert.ErrorIs(t, err, context.Canceled)
}
