package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// sourceFiles reads a list of input files in order, followed by stdin when
// it was requested.
type sourceFiles struct {
	files    []*os.File
	hasStdin bool
	multi    io.Reader
}

// Read implements io.Reader by reading from all source files in order,
// including stdin if present.
func (s *sourceFiles) Read(p []byte) (n int, err error) {
	return s.reader().Read(p)
}

// WriteTo implements io.WriterTo by writing all source files to w in order,
// including stdin if present.
func (s *sourceFiles) WriteTo(w io.Writer) (n int64, err error) {
	return io.Copy(w, s.reader())
}

func (s *sourceFiles) reader() io.Reader {
	if s.multi != nil {
		return s.multi
	}

	readers := make([]io.Reader, 0, len(s.files)+1)
	for _, f := range s.files {
		readers = append(readers, f)
	}

	if s.hasStdin {
		readers = append(readers, os.Stdin)
	}

	s.multi = io.MultiReader(readers...)

	return s.multi
}

// Close closes every opened file. Stdin is left open.
func (s *sourceFiles) Close() error {
	var first error

	for _, f := range s.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}

	return first
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// openSources opens the given source paths for sequential reading.
//
// Paths naming the same file, through symlinks or relative paths, are read
// once. All occurrences of "-" are replaced with a single stdin reader placed
// last so it reads after all regular files.
func openSources(paths []string) (*sourceFiles, error) {
	var srcs sourceFiles

	seen := make(map[fileKey]struct{})

	for _, path := range paths {
		if path == stdinSource {
			srcs.hasStdin = true

			continue
		}

		file, err := openUniqueFile(path, seen)
		if err != nil {
			_ = srcs.Close()

			return nil, ErrOpenFile.With(slog.String("path", path)).Wrap(err)
		}

		if file != nil {
			srcs.files = append(srcs.files, file)
		}
	}

	return &srcs, nil
}

// openUniqueFile opens the file at path if it hasn't been seen before.
// It resolves symlinks and uses device/inode to detect duplicates.
// A duplicate returns a nil file and nil error.
func openUniqueFile(path string, seen map[fileKey]struct{}) (*os.File, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, err
	}

	if key, ok := makeFileKey(info); ok {
		if _, exists := seen[key]; exists {
			return nil, nil
		}

		seen[key] = struct{}{}
	}

	return os.Open(resolved)
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	if info == nil {
		return key, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}

// nopCloser wraps stdout so closing it is a no-op.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput opens path for writing, or returns stdout when path is "-" or
// empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == stdinSource {
		return nopCloser{os.Stdout}, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, ErrWriteOutput.With(slog.String("path", path)).Wrap(err)
	}

	return file, nil
}

// writeOutput writes s to path, or to stdout when path is "-" or empty.
func writeOutput(path, s string) (err error) {
	w, err := openOutput(path)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = ErrWriteOutput.With(slog.String("path", path)).Wrap(cerr)
		}
	}()

	if _, err := io.WriteString(w, s); err != nil {
		return ErrWriteOutput.With(slog.String("path", path)).Wrap(err)
	}

	return nil
}
