package collect

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"recast/internal/convert"
	"recast/internal/log"
)

// Extensions are the input file extensions accepted when collecting.
var Extensions = []string{".png", ".jpg", ".jpeg", ".webp", ".bmp", ".tiff", ".tif", ".gif", ".ico"}

// Supported reports whether path has one of the accepted extensions.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Options configure a collection.
type Options struct {
	// Exclude is a directory never descended into, usually the conversion destination.
	Exclude string
	// Verify drops candidates whose header can't be decoded.
	Verify bool
	// Workers is the verification concurrency. Defaults to the CPU count.
	Workers int
	Logger  log.Logger
}

func (o *Options) defaults() error {
	if o.Workers < 0 {
		return fmt.Errorf("workers can't be negative")
	}
	if o.Workers == 0 {
		o.Workers = runtime.NumCPU()
	}

	if o.Exclude != "" {
		abs, err := filepath.Abs(o.Exclude)
		if err != nil {
			return fmt.Errorf("could not resolve excluded path: %w", err)
		}
		o.Exclude = filepath.Clean(abs)
	}

	if o.Logger == nil {
		o.Logger = log.Noop
	}
	o.Logger = o.Logger.WithValues(log.Kv{"svc": "collect"})
	return nil
}

// Skipped is a candidate dropped by verification.
type Skipped struct {
	Path string
	Err  error
}

// Result is the outcome of a collection.
type Result struct {
	// Files are absolute, unique, in argument order and lexical order inside folders.
	Files []string
	// Skipped lists candidates that failed verification.
	Skipped []Skipped
	// Ignored counts files without an accepted extension.
	Ignored int
}

// Collect expands paths (files and folders, walked recursively) into the input list of a
// job. A path argument that does not exist is an error; unreadable subfolders are
// logged and skipped.
func Collect(ctx context.Context, paths []string, opts Options) (Result, error) {
	if err := opts.defaults(); err != nil {
		return Result{}, fmt.Errorf("invalid options: %w", err)
	}

	files, ignored, err := candidates(ctx, paths, opts)
	if err != nil {
		return Result{}, err
	}

	res := Result{Ignored: ignored}
	if !opts.Verify {
		res.Files = files
		return res, nil
	}

	errs, err := verify(ctx, files, opts.Workers)
	if err != nil {
		return Result{}, err
	}
	for i, file := range files {
		if errs[i] != nil {
			opts.Logger.Warningf("skipping %s: %v", file, errs[i])
			res.Skipped = append(res.Skipped, Skipped{Path: file, Err: errs[i]})
			continue
		}
		res.Files = append(res.Files, file)
	}
	return res, nil
}

func candidates(ctx context.Context, paths []string, opts Options) ([]string, int, error) {
	var (
		files   []string
		ignored int
		seen    = map[string]struct{}{}
	)
	add := func(path string) {
		if !Supported(path) {
			ignored++
			return
		}
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		absRoot, err := filepath.Abs(p)
		if err != nil {
			return nil, 0, fmt.Errorf("could not resolve %q: %w", p, err)
		}
		info, err := os.Stat(absRoot)
		if err != nil {
			return nil, 0, fmt.Errorf("could not read input %q: %w", p, err)
		}
		if !info.IsDir() {
			add(absRoot)
			continue
		}

		// The excluded folder is skipped only when it lives below the walked root.
		exclude := opts.Exclude
		if exclude == filepath.Clean(absRoot) || !isWithin(exclude, absRoot) {
			exclude = ""
		}

		fsys := os.DirFS(absRoot)
		err = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fullPath := filepath.Join(absRoot, path)
			if walkErr != nil {
				if path == "." {
					return walkErr
				}
				opts.Logger.Warningf("could not read %s: %v", fullPath, walkErr)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if exclude != "" && isWithin(fullPath, exclude) {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}

			add(fullPath)
			return nil
		})
		if err != nil {
			return nil, 0, fmt.Errorf("could not walk %q: %w", p, err)
		}
	}

	return files, ignored, nil
}

type verdict struct {
	index int
	err   error
}

// verify probes files on a worker pool. The returned slice is aligned with files.
func verify(ctx context.Context, files []string, workers int) ([]error, error) {
	jobs := make(chan int)
	results := make(chan verdict)

	workers = max(min(workers, len(files)), 1)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				_, _, err := convert.Probe(files[idx])
				results <- verdict{index: idx, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range files {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	errs := make([]error, len(files))
	for v := range results {
		errs[v.index] = v.err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return errs, nil
}

func isWithin(path string, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
