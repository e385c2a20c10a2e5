// Package tuning supports measuring the compression of the LZMA2 writers
// over a corpus of files.
package tuning

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"time"

	"github.com/xzkit/xzcore/lzma"
	"github.com/xzkit/xzcore/parallel"
)

// File is a single file of a corpus.
type File struct {
	Name string
	Data []byte
}

// Files loads all files of the corpus.
func Files(corpus fs.FS) (files []File, err error) {
	err = fs.WalkDir(corpus, ".",
		func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				return nil
			}
			data, err := fs.ReadFile(corpus, path)
			if err != nil {
				return err
			}
			files = append(files, File{Name: path, Data: data})
			return nil
		})
	return files, err
}

// Size returns the total size of the files.
func Size(files []File) int64 {
	n := int64(0)
	for _, f := range files {
		n += int64(len(f.Data))
	}
	return n
}

type countWriter struct {
	n int64
}

func (w *countWriter) Write(p []byte) (n int, err error) {
	n = len(p)
	w.n += int64(n)
	return n, nil
}

// Result describes the compression of a set of files.
type Result struct {
	Size           int64
	CompressedSize int64
	Duration       time.Duration
}

// Ratio returns the compressed size relative to the uncompressed size.
func (r Result) Ratio() float64 {
	if r.Size == 0 {
		return 0
	}
	return float64(r.CompressedSize) / float64(r.Size)
}

// MBPerSec returns the number of megabytes (1 000 000 bytes) compressed per
// second.
func (r Result) MBPerSec() float64 {
	s := r.Duration.Seconds()
	if s <= 0 {
		return 0
	}
	return float64(r.Size) / 1e6 / s
}

// Compress compresses every file with an LZMA2 writer and reports the total
// sizes.
func Compress(files []File, cfg lzma.WriterConfig) (r Result, err error) {
	start := time.Now()
	for _, f := range files {
		cw := &countWriter{}
		w, err := lzma.NewWriter2(cw, cfg)
		if err != nil {
			return r, err
		}
		if _, err = io.Copy(w, bytes.NewReader(f.Data)); err != nil {
			return r, err
		}
		if err = w.Close(); err != nil {
			return r, err
		}
		r.Size += int64(len(f.Data))
		r.CompressedSize += cw.n
	}
	r.Duration = time.Since(start)
	return r, nil
}

// CompressParallel works like Compress but uses the parallel writer.
func CompressParallel(ctx context.Context, files []File,
	cfg parallel.WriterConfig) (r Result, err error) {
	start := time.Now()
	for _, f := range files {
		cw := &countWriter{}
		w, err := parallel.NewWriter(ctx, cw, cfg)
		if err != nil {
			return r, err
		}
		if _, err = io.Copy(w, bytes.NewReader(f.Data)); err != nil {
			return r, err
		}
		if err = w.Close(); err != nil {
			return r, err
		}
		r.Size += int64(len(f.Data))
		r.CompressedSize += cw.n
	}
	r.Duration = time.Since(start)
	return r, nil
}
