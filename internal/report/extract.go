package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/pgzip"
)

// Extract copies the report at src to dst. With compress set the copy is
// gzip compressed. dst is written through a temporary file, so it never
// holds a partial report.
func Extract(src, dst string, compress bool) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if compress {
		z := pgzip.NewWriter(tmp)
		z.Name = filepath.Base(src)
		if _, err = io.Copy(z, in); err == nil {
			err = z.Close()
		}
	} else {
		_, err = io.Copy(tmp, in)
	}
	if err != nil {
		tmp.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

// Open opens a report written by Extract, compressed or not
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) != ".gz" {
		return f, nil
	}
	z, err := pgzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return readCloser{Reader: z, closers: []io.Closer{z, f}}, nil
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc readCloser) Close() error {
	var err error
	for _, c := range rc.closers {
		if e := c.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
