package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/xzkit/xzcore/lzma"
	"github.com/xzkit/xzcore/parallel"
	"github.com/xzkit/xzcore/xlog"
)

type packer interface {
	outputPaths(path string) (outputPath, tmpPath string, err error)
	pack(w io.Writer, r io.Reader) (n int64, err error)
}

// format describes a supported file format.
type format struct {
	suffix   string
	packer   func(p *processor) packer
	unpacker func(p *processor) packer
}

var formats = map[string]format{
	"lzma": {
		suffix: ".lzma",
		packer: func(p *processor) packer {
			return &lzmaPacker{suffix: ".lzma", cfg: p.writerConfig()}
		},
		unpacker: func(p *processor) packer {
			return &lzmaUnpacker{suffix: ".lzma", logger: p.logger}
		},
	},
	"lzma2": {
		suffix: ".lzma2",
		packer: func(p *processor) packer {
			return &lzma2Packer{lzmaPacker{suffix: ".lzma2",
				cfg: p.writerConfig()}, p}
		},
		unpacker: func(p *processor) packer {
			return &lzma2Unpacker{lzmaUnpacker{suffix: ".lzma2",
				logger: p.logger}, p.ctx, p.opts.workers}
		},
	},
}

// outputPathsPack returns the output paths for compression.
func outputPathsPack(path, suffix string) (out, tmp string, err error) {
	if path == "-" {
		return "-", "-", nil
	}
	if path == "" {
		return "", "", errors.New("path is empty")
	}
	if strings.HasSuffix(path, suffix) {
		return "", "", fmt.Errorf("path %s has suffix %s -- ignored",
			path, suffix)
	}
	out = path + suffix
	tmp = out + ".pack"
	return out, tmp, nil
}

// outputPathsUnpack returns the output paths for decompression.
func outputPathsUnpack(path, suffix string) (out, tmp string, err error) {
	if path == "-" {
		return "-", "-", nil
	}
	if !strings.HasSuffix(path, suffix) {
		return "", "", fmt.Errorf("path %s has no suffix %s", path,
			suffix)
	}
	if filepath.Base(path) == suffix {
		return "", "", fmt.Errorf(
			"path %s has only suffix %s as filename", path, suffix)
	}
	out = path[:len(path)-len(suffix)]
	tmp = out + ".unpack"
	return out, tmp, nil
}

type lzmaPacker struct {
	suffix string
	cfg    lzma.WriterConfig
}

func (p *lzmaPacker) outputPaths(path string) (out, tmp string, err error) {
	return outputPathsPack(path, p.suffix)
}

func (p *lzmaPacker) pack(w io.Writer, r io.Reader) (n int64, err error) {
	bw := bufio.NewWriter(w)
	lw, err := lzma.NewWriter(bw, p.cfg)
	if err != nil {
		return 0, err
	}
	if n, err = io.Copy(lw, r); err != nil {
		return n, err
	}
	if err = lw.Close(); err != nil {
		return n, err
	}
	return n, bw.Flush()
}

type lzmaUnpacker struct {
	suffix string
	logger xlog.Logger
}

func (u *lzmaUnpacker) outputPaths(path string) (out, tmp string, err error) {
	return outputPathsUnpack(path, u.suffix)
}

func (u *lzmaUnpacker) pack(w io.Writer, r io.Reader) (n int64, err error) {
	lr, err := lzma.NewReader(r, lzma.ReaderConfig{Logger: u.logger})
	if err != nil {
		return 0, err
	}
	return io.Copy(w, lr)
}

// lzma2Packer writes raw LZMA2 streams. The stream is preceded by the
// dictionary size byte, because the LZMA2 format has no header.
type lzma2Packer struct {
	lzmaPacker
	proc *processor
}

func (p *lzma2Packer) pack(w io.Writer, r io.Reader) (n int64, err error) {
	cfg := p.cfg
	cfg.ApplyDefaults()
	code := lzma.EncodeDictSize(int64(cfg.DictSize))
	bw := bufio.NewWriter(w)
	if err = bw.WriteByte(code); err != nil {
		return 0, err
	}
	var lw io.WriteCloser
	if workers := p.proc.opts.workers; workers == 1 {
		lw, err = p.proc.writer2(bw, cfg)
	} else {
		lw, err = parallel.NewWriter(p.proc.ctx, bw, parallel.WriterConfig{
			WriterConfig: cfg,
			Workers:      workers,
		})
	}
	if err != nil {
		return 0, err
	}
	if n, err = io.Copy(lw, r); err != nil {
		return n, err
	}
	if err = lw.Close(); err != nil {
		return n, err
	}
	return n, bw.Flush()
}

type lzma2Unpacker struct {
	lzmaUnpacker
	ctx     context.Context
	workers int
}

func (u *lzma2Unpacker) pack(w io.Writer, r io.Reader) (n int64, err error) {
	br := bufio.NewReader(r)
	code, err := br.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("reading dictionary size: %w", err)
	}
	dictSize, err := lzma.DecodeDictSize(code)
	if err != nil {
		return 0, err
	}
	if dictSize > lzma.MaxDictSize {
		return 0, fmt.Errorf("dictionary size %d not supported", dictSize)
	}
	rcfg := lzma.ReaderConfig{DictSize: int(dictSize), Logger: u.logger}
	var lr io.Reader
	if u.workers == 1 {
		lr, err = lzma.NewReader2(br, rcfg)
	} else {
		var pr *parallel.Reader
		pr, err = parallel.NewReader(u.ctx, br, parallel.ReaderConfig{
			ReaderConfig: rcfg,
			Workers:      u.workers,
		})
		if err == nil {
			defer pr.Close()
		}
		lr = pr
	}
	if err != nil {
		return 0, err
	}
	return io.Copy(w, lr)
}

// processor handles the files given on the command line.
type processor struct {
	ctx    context.Context
	opts   *options
	log    *logrus.Logger
	logger xlog.Logger
	failed bool
	// LZMA2 writer reused for all files
	w2 *lzma.Writer2
}

// writer2 returns the LZMA2 writer for w. The writer is created for the
// first file and reset for every following one.
func (p *processor) writer2(w io.Writer, cfg lzma.WriterConfig,
) (*lzma.Writer2, error) {
	if p.w2 == nil {
		var err error
		if p.w2, err = lzma.NewWriter2(w, cfg); err != nil {
			return nil, err
		}
		return p.w2, nil
	}
	p.w2.Reset(w)
	return p.w2, nil
}

// writerConfig returns the writer configuration for the options.
func (p *processor) writerConfig() lzma.WriterConfig {
	cfg := lzma.Preset(p.opts.preset)
	if p.opts.dictSize > 0 {
		cfg.DictSize = p.opts.dictSize
	}
	cfg.Logger = p.logger
	return cfg
}

func (p *processor) packer() packer {
	f := formats[p.opts.format]
	if p.opts.decompress {
		return f.unpacker(p)
	}
	return f.packer(p)
}

func (p *processor) warn(err error) {
	p.failed = true
	p.log.Warn(userError(err))
}

func signalHandler(tmpPath string) chan<- struct{} {
	quit := make(chan struct{})
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, termsigs...)
	go func() {
		select {
		case <-quit:
			signal.Stop(sigch)
			return
		case <-sigch:
			if tmpPath != "-" {
				os.Remove(tmpPath)
			}
			os.Exit(7)
		}
	}()
	return quit
}

func packFile(pck packer, path, tmpPath string, opts *options) (err error) {
	// open reader
	var r *os.File
	if path == "-" {
		r = os.Stdin
	} else {
		fi, err := os.Lstat(path)
		if err != nil {
			return err
		}
		if !fi.Mode().IsRegular() {
			return fmt.Errorf("%s is not a regular file", path)
		}
		if r, err = os.Open(path); err != nil {
			return err
		}
	}
	defer func() {
		if err != nil {
			r.Close()
		} else {
			err = r.Close()
		}
	}()

	// open writer
	var w *os.File
	if tmpPath == "-" {
		w = os.Stdout
	} else {
		if opts.force {
			os.Remove(tmpPath)
		}
		w, err = os.OpenFile(tmpPath,
			os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0666)
		if err != nil {
			return err
		}
		defer func() {
			if err != nil {
				w.Close()
			} else {
				err = w.Close()
			}
		}()
	}

	_, err = pck.pack(w, r)
	return err
}

// userPathError represents a path error presentable to a user. In
// difference to os.PathError it removes the information of the
// operation returning the error.
type userPathError struct {
	Path string
	Err  error
}

// Error provides the error string for the path error.
func (e *userPathError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

// userError removes the operation from path errors. That lstat failed is
// of no interest to the user.
func userError(err error) error {
	var pe *os.PathError
	if !errors.As(err, &pe) {
		return err
	}
	return &userPathError{Path: pe.Path, Err: pe.Err}
}

func (p *processor) processFile(path string) {
	opts := p.opts
	pck := p.packer()
	outputPath, tmpPath, err := pck.outputPaths(path)
	if err != nil {
		p.warn(err)
		return
	}
	if opts.stdout {
		outputPath, tmpPath = "-", "-"
	}
	if outputPath != "-" {
		_, err = os.Lstat(outputPath)
		if err == nil && !opts.force {
			p.warn(fmt.Errorf("file %s exists", outputPath))
			return
		}
	}
	defer func() {
		if tmpPath != "-" {
			os.Remove(tmpPath)
		}
	}()
	quit := signalHandler(tmpPath)
	defer close(quit)

	p.log.WithFields(logrus.Fields{
		"path":   path,
		"output": outputPath,
	}).Debug("processing file")
	if err = packFile(pck, path, tmpPath, opts); err != nil {
		p.warn(err)
		return
	}
	if tmpPath != "-" && outputPath != "-" {
		if err = os.Rename(tmpPath, outputPath); err != nil {
			p.warn(err)
			return
		}
	}
	if !opts.keep && !opts.stdout && path != "-" {
		if err = os.Remove(path); err != nil {
			p.warn(err)
			return
		}
	}
}
