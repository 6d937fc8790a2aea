package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

var defaultExtensions = []string{".mrg", ".tree", ".ptb", ".txt"}

// DefaultExtensions returns the file extensions searched when a directory
// is walked and no others are configured.
func DefaultExtensions() []string { return slices.Clone(defaultExtensions) }

// Options control how paths are walked.
type Options struct {
	// Extensions selects the files searched inside directories. Files named
	// explicitly are always searched.
	Extensions []string
	// Workers bounds concurrent file searches. Zero means runtime.NumCPU().
	Workers int
	// Progress receives a progress bar while a directory is searched. Nil
	// disables it.
	Progress io.Writer
}

func (o Options) extensions() []string {
	if len(o.Extensions) == 0 {
		return defaultExtensions
	}
	return o.Extensions
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return runtime.NumCPU()
	}
	return o.Workers
}

// ProcessFiles runs ProcessPath on each path in turn.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	paths []string,
	opts Options,
) ([]Match, error) {
	var all []Match
	var errs []error
	for _, path := range paths {
		matches, err := ProcessPath(ctx, logger, engine, path, opts)
		all = append(all, matches...)
		if err != nil {
			if ctx.Err() != nil {
				return all, err
			}
			errs = append(errs, err)
		}
	}
	return all, errors.Join(errs...)
}

// ProcessPath searches a file, or every file with a wanted extension below a
// directory. Directory results are ordered by file path regardless of which
// worker finished first. Files that fail are logged and skipped; their errors
// are joined into the returned error. When ctx is cancelled, ProcessPath
// stops starting new files and returns what it has with ctx.Err().
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	path string,
	opts Options,
) ([]Match, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}
	if !info.IsDir() {
		return engine.Run(ctx, path)
	}

	files, err := collectFiles(path, opts.extensions())
	if err != nil {
		return nil, err
	}

	bar := newProgressBar(path, len(files), opts.Progress)
	results := make([][]Match, len(files))
	errs := make([]error, len(files))

	var wg sync.WaitGroup
	sem := make(chan struct{}, opts.workers())

dispatch:
	for i, file := range files {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			matches, err := engine.Run(ctx, file)
			if err != nil {
				logger.Error("Error processing file", zap.String("file", file), zap.Error(err))
				errs[i] = err
			}
			results[i] = matches
			_ = bar.Add(1)
		}()
	}
	wg.Wait()
	_ = bar.Finish()

	all := make([]Match, 0)
	for _, matches := range results {
		all = append(all, matches...)
	}
	if err := ctx.Err(); err != nil {
		return all, err
	}
	return all, errors.Join(errs...)
}

func collectFiles(root string, extensions []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && slices.Contains(extensions, filepath.Ext(path)) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

func newProgressBar(description string, n int, w io.Writer) *progressbar.ProgressBar {
	if w == nil {
		w = io.Discard
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
