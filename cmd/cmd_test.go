package cmd

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recast/internal/job"
)

// runCommand executes the command line with fresh flag values.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	reset := func(flags *pflag.FlagSet) {
		flags.VisitAll(func(f *pflag.Flag) {
			require.NoError(t, f.Value.Set(f.DefValue))
			f.Changed = false
		})
	}
	reset(rootCmd.PersistentFlags())
	for _, c := range rootCmd.Commands() {
		reset(c.Flags())
	}

	var stdout, stderr bytes.Buffer
	err := execute(context.Background(), append([]string{"--no-color", "--no-log"}, args...), &stdout, &stderr)
	return stdout.String(), err
}

func writePNG(t *testing.T, path string) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 60), G: uint8(y * 80), B: 120, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestFormatsCommand(t *testing.T) {
	out, err := runCommand(t, "formats")
	require.NoError(t, err)

	assert.Contains(t, out, "Format | Extension | Alpha | Quality")
	assert.Contains(t, out, "jpg    | .jpg      | no    | yes")
	assert.Contains(t, out, "png    | .png      | yes   | no")
	assert.Contains(t, out, "pdf    | .pdf      | no    | no")
}

func TestConvertCommand(t *testing.T) {
	tests := map[string]struct {
		args     func(src, dst string) []string
		broken   bool
		expErr   bool
		expOut   []string
		expFiles []string
	}{
		"converts a folder": {
			args: func(src, dst string) []string {
				return []string{"convert", "--plain", "--no-pacing", "-f", "jpg", "-o", dst, src}
			},
			expOut:   []string{job.MessageAllSucceeded, "Files converted | 2/2", "Converted files written to: "},
			expFiles: []string{"a.jpg", "b.jpg"},
		},
		"skips unreadable inputs before starting": {
			args: func(src, dst string) []string {
				return []string{"convert", "--plain", "--no-pacing", "--format", "webp", "--output", dst, src}
			},
			broken:   true,
			expOut:   []string{"Skipped 1 unreadable file(s).", job.MessageAllSucceeded},
			expFiles: []string{"a.webp", "b.webp"},
		},
		"missing format fails the job": {
			args: func(src, dst string) []string {
				return []string{"convert", "--plain", "--no-pacing", "-o", dst, src}
			},
			expErr: true,
			expOut: []string{job.MessageNoFormat, "failed"},
		},
		"invalid format is rejected": {
			args: func(src, dst string) []string {
				return []string{"convert", "--plain", "-f", "heic", src}
			},
			expErr: true,
		},
		"invalid quality is rejected": {
			args: func(src, dst string) []string {
				return []string{"convert", "--plain", "-f", "jpg", "-q", "0", src}
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			src := t.TempDir()
			dst := filepath.Join(t.TempDir(), "out")
			writePNG(t, filepath.Join(src, "a.png"))
			writePNG(t, filepath.Join(src, "b.png"))
			if test.broken {
				require.NoError(t, os.WriteFile(filepath.Join(src, "c.png"), []byte("not an image"), 0o644))
			}

			out, err := runCommand(t, test.args(src, dst)...)
			if test.expErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			for _, exp := range test.expOut {
				assert.Contains(t, out, exp)
			}
			for _, name := range test.expFiles {
				assert.FileExists(t, filepath.Join(dst, name))
			}
		})
	}
}

func TestConvertCommandPrintsProgressLines(t *testing.T) {
	src := t.TempDir()
	writePNG(t, filepath.Join(src, "a.png"))

	out, err := runCommand(t, "convert", "--plain", "--no-pacing", "-f", "bmp", filepath.Join(src, "a.png"))
	require.NoError(t, err)

	assert.Contains(t, out, "[100%]")
	assert.FileExists(t, filepath.Join(src, "a.bmp"))
}

func TestConvertCommandUsesConfigFile(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "converted")
	writePNG(t, filepath.Join(src, "a.png"))

	cfgPath := filepath.Join(t.TempDir(), "recast.yaml")
	cfg := "format: gif\ndestination: " + dst + "\nquality: 80\npacing:\n  disabled: true\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	out, err := runCommand(t, "--config", cfgPath, "convert", "--plain", src)
	require.NoError(t, err)
	assert.Contains(t, out, job.MessageAllSucceeded)
	assert.FileExists(t, filepath.Join(dst, "a.gif"))

	// Flags win over the file.
	out, err = runCommand(t, "--config", cfgPath, "convert", "--plain", "-f", "tiff", src)
	require.NoError(t, err)
	assert.Contains(t, out, job.MessageAllSucceeded)
	assert.FileExists(t, filepath.Join(dst, "a.tiff"))
}

func TestInspectCommand(t *testing.T) {
	src := t.TempDir()
	writePNG(t, filepath.Join(src, "a.png"))
	require.NoError(t, os.WriteFile(filepath.Join(src, "b.png"), []byte("not an image"), 0o644))

	out, err := runCommand(t, "inspect", src)
	require.NoError(t, err)

	assert.Contains(t, out, filepath.Join(src, "a.png"))
	assert.Contains(t, out, "Dimensions: 4x3")
	assert.Contains(t, out, "Metadata: none")
	assert.Contains(t, out, filepath.Join(src, "b.png"))
	assert.Contains(t, out, "Error:")
}

func TestInvalidLoggerType(t *testing.T) {
	_, err := runCommand(t, "--logger", "xml", "formats")
	assert.Error(t, err)
}

func TestCommandsAreRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"convert", "inspect", "formats"} {
		assert.True(t, names[name], name)
	}
}

func TestCommandsRunRepeatedly(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writePNG(t, filepath.Join(src, "a.png"))

	for i := 0; i < 3; i++ {
		out, err := runCommand(t, "inspect", src)
		require.NoError(t, err, "run %d", i)
		assert.Contains(t, out, "Dimensions: 4x3")

		_, err = runCommand(t, "inspect", filepath.Join(src, "missing.png"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, context.Canceled, "run %d", i)

		out, err = runCommand(t, "convert", "--plain", "--no-pacing", "-f", "gif", "-o", dst, src)
		require.NoError(t, err, "run %d", i)
		assert.Contains(t, out, job.MessageAllSucceeded)
	}
}
