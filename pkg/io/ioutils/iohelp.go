// Package ioutils opens and creates files with transparent gzip handling.
package ioutils

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
)

// OpenMaybeCompressed opens a file path or stdin ("-") and returns a reader.
// If the input appears to be gzip (by extension or magic), it wraps with gzip.
func OpenMaybeCompressed(path string) (io.ReadCloser, error) {
	if path == "-" || path == "" {
		r, err := maybeGzip(bufio.NewReader(os.Stdin), false)
		if err != nil {
			return nil, err
		}
		return readCloser{Reader: r, closeFn: func() error { return nil }}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := maybeGzip(bufio.NewReader(f), filepath.Ext(path) == ".gz")
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return readCloser{Reader: r, closeFn: f.Close}, nil
}

func maybeGzip(br *bufio.Reader, force bool) (io.Reader, error) {
	if !force {
		b, err := br.Peek(2)
		if err != nil || b[0] != 0x1f || b[1] != 0x8b {
			return br, nil
		}
	}
	return gzip.NewReader(br)
}

// CreateMaybeCompressed creates a file (or stdout if path is "-") and
// returns a writer. If the path ends in .gz, the writer is gzip compressed.
func CreateMaybeCompressed(path string) (io.WriteCloser, error) {
	if path == "-" || path == "" {
		bw := bufio.NewWriter(os.Stdout)
		return writeCloser{Writer: bw, closeFn: bw.Flush}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	bw := bufio.NewWriter(f)
	if filepath.Ext(path) == ".gz" {
		zw := gzip.NewWriter(bw)
		return writeCloser{Writer: zw, closeFn: func() error {
			return closeAll(zw.Close, bw.Flush, f.Close)
		}}, nil
	}
	return writeCloser{Writer: bw, closeFn: func() error { return closeAll(bw.Flush, f.Close) }}, nil
}

// closeAll runs every fn and returns the first error.
func closeAll(fns ...func() error) error {
	var first error
	for _, fn := range fns {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type readCloser struct {
	io.Reader
	closeFn func() error
}

func (r readCloser) Close() error { return r.closeFn() }

type writeCloser struct {
	io.Writer
	closeFn func() error
}

func (w writeCloser) Close() error { return w.closeFn() }
