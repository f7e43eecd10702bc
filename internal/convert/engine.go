package convert

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"recast/internal/log"
)

// EngineConfig is the configuration for the conversion engine.
type EngineConfig struct {
	Logger log.Logger
}

func (c *EngineConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "convert.Engine"})
	return nil
}

// Engine converts one file at a time. It holds no per-file state and is safe for
// concurrent use.
type Engine struct {
	logger log.Logger
}

// NewEngine creates a new conversion engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{logger: cfg.Logger}, nil
}

// Convert decodes path, prepares its pixels for format and writes the result next to
// the source or into destination when it is set. It returns the written path.
//
// Every failure is a *Error. Nothing is left on disk when Convert fails, and a
// cancelled ctx aborts before the output is moved into place.
func (e *Engine) Convert(ctx context.Context, path string, format Format, destination string, quality int) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorf("panic converting %s: %v\n%s", path, r, debug.Stack())
			out = ""
			err = newError(KindUnknown, path, fmt.Errorf("panic: %v", r))
		}
	}()

	if !format.Valid() {
		return "", newError(KindUnknown, path, fmt.Errorf("unsupported output format %q", string(format)))
	}

	data, modTime, err := readSource(path)
	if err != nil {
		return "", newError(KindIOFailure, path, err)
	}

	img, srcFormat, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", newError(KindUnreadable, path, err)
	}
	e.logger.Debugf("decoded %s (%s, %dx%d)", path, srcFormat, img.Bounds().Dx(), img.Bounds().Dy())

	outPath := OutputPath(path, format, destination)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", newError(KindIOFailure, path, err)
	}

	prepared := Prepare(img, format)

	var encodeFn func(w io.Writer) error
	if format.UsesQuality() {
		encodeFn = func(w io.Writer) error { return encodeWithQuality(w, prepared, format, quality) }
	} else {
		encodeFn = func(w io.Writer) error { return encodeLossless(w, prepared, format, modTime) }
	}

	if err := writeAtomic(ctx, outPath, encodeFn); err != nil {
		var cerr *Error
		if errors.As(err, &cerr) {
			cerr.Path = path
			return "", cerr
		}
		return "", newError(KindUnknown, path, err)
	}

	return outPath, nil
}

// OutputPath is destination/stem.ext, or the source directory when destination is empty.
func OutputPath(path string, format Format, destination string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	dir := filepath.Dir(path)
	if destination != "" {
		dir = destination
	}
	return filepath.Join(dir, stem+"."+format.Ext())
}

func readSource(path string) ([]byte, time.Time, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, time.Time{}, err
	}
	if info.IsDir() {
		return nil, time.Time{}, fmt.Errorf("%s is a directory", path)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, time.Time{}, err
	}
	return data, info.ModTime(), nil
}

// writeAtomic encodes into a temp file beside destPath and renames it into place.
func writeAtomic(ctx context.Context, destPath string, encodeFn func(w io.Writer) error) error {
	destDir := filepath.Dir(destPath)

	tmpFile, err := os.CreateTemp(destDir, "recast-*.tmp")
	if err != nil {
		return newError(KindIOFailure, destPath, err)
	}
	defer os.Remove(tmpFile.Name())

	if err := tmpFile.Chmod(0o644); err != nil {
		_ = tmpFile.Close()
		return newError(KindIOFailure, destPath, err)
	}

	ew := &errWriter{w: tmpFile}
	bw := bufio.NewWriter(ew)
	if err := encodeFn(bw); err != nil {
		_ = tmpFile.Close()
		if ew.err != nil {
			return newError(KindIOFailure, destPath, ew.err)
		}
		return newError(KindUnknown, destPath, err)
	}
	if err := bw.Flush(); err != nil {
		_ = tmpFile.Close()
		return newError(KindIOFailure, destPath, err)
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return newError(KindIOFailure, destPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		return newError(KindIOFailure, destPath, err)
	}

	if err := ctx.Err(); err != nil {
		return newError(KindUnknown, destPath, err)
	}

	if err := replaceFile(tmpFile.Name(), destPath); err != nil {
		return newError(KindIOFailure, destPath, err)
	}
	return nil
}

func replaceFile(tmpPath, destPath string) error {
	if err := os.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(tmpPath, destPath)
}

// errWriter remembers the first write error so encoder failures caused by the
// filesystem can be told apart from encoder failures proper.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	n, err := e.w.Write(p)
	if err != nil && e.err == nil {
		e.err = err
	}
	return n, err
}
