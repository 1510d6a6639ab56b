package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/innermond/sloper"
	"github.com/pkg/errors"
)

// writeOut writes to path, or to w when path is "-" or empty.
func writeOut(w io.Writer, path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(w)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create output directory")
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "close output")
}

func writeFiles(outs []sloper.FitReader) (errs []error) {
	for _, out := range outs {
		for nm, r := range out {
			err := writeOut(nil, nm, func(w io.Writer) error {
				_, err := io.Copy(w, r)
				return err
			})
			if err != nil {
				errs = append(errs, err)
			}
		}
	}
	return
}
