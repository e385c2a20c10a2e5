package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/xzkit/xzcore/lzma"
	"github.com/xzkit/xzcore/xlog"
)

// options collects the flags that control the processing of a file.
type options struct {
	stdout     bool
	decompress bool
	force      bool
	keep       bool
	preset     int
	format     string
	workers    int
	dictSize   int
}

var (
	stdoutFlag = &cli.BoolFlag{
		Name:    "stdout",
		Aliases: []string{"c"},
		Usage:   "write to standard output and don't delete input files",
	}
	decompressFlag = &cli.BoolFlag{
		Name:    "decompress",
		Aliases: []string{"d"},
		Usage:   "force decompression",
	}
	forceFlag = &cli.BoolFlag{
		Name:    "force",
		Aliases: []string{"f"},
		Usage:   "force overwrite of output file",
	}
	keepFlag = &cli.BoolFlag{
		Name:    "keep",
		Aliases: []string{"k"},
		Usage:   "keep (don't delete) input files",
	}
	verboseFlag = &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "verbose mode; logs chunks and configuration",
	}
	quietFlag = &cli.BoolFlag{
		Name:    "quiet",
		Aliases: []string{"q"},
		Usage:   "suppress all warnings",
	}
	presetFlag = &cli.IntFlag{
		Name:    "preset",
		Aliases: []string{"p"},
		Usage:   "compression preset 0..9; -0 ... -9 are accepted too",
		Value:   lzma.DefaultPreset,
	}
	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"F"},
		Usage:   "file format: lzma or lzma2",
		Value:   "lzma",
	}
	threadsFlag = &cli.IntFlag{
		Name:    "threads",
		Aliases: []string{"T"},
		Usage:   "number of worker goroutines for lzma2; 0 uses all CPUs",
		Value:   1,
	}
	dictSizeFlag = &cli.IntFlag{
		Name:  "dict-size",
		Usage: "dictionary size in bytes; overrides the preset",
	}
)

// presetArgs converts the short preset flags -0 ... -9 into the --preset
// flag. Combined short flags like -9k are supported.
func presetArgs(args []string) []string {
	out := make([]string, 1, len(args)+1)
	out[0] = args[0]
	for i, arg := range args[1:] {
		if arg == "--" {
			out = append(out, args[1+i:]...)
			break
		}
		if len(arg) < 2 || arg[0] != '-' || arg[1] == '-' {
			out = append(out, arg)
			continue
		}
		buf := new(bytes.Buffer)
		buf.Grow(len(arg))
		preset := -1
		for _, c := range arg {
			if '0' <= c && c <= '9' {
				preset = int(c - '0')
				continue
			}
			buf.WriteRune(c)
		}
		if preset >= 0 {
			out = append(out, fmt.Sprintf("--preset=%d", preset))
		}
		if s := buf.String(); s != "-" {
			out = append(out, s)
		}
	}
	return out
}

// newLogger returns the logger used for the debug output of the lzma
// packages. It is nil unless verbose output has been requested.
func newLogger(log *logrus.Logger) xlog.Logger {
	if !log.IsLevelEnabled(logrus.DebugLevel) {
		return nil
	}
	return xlog.Func(func(s string) { log.Debug(s) })
}

func run(ctx *cli.Context, log *logrus.Logger) error {
	switch {
	case ctx.Bool(verboseFlag.Name):
		log.SetLevel(logrus.DebugLevel)
	case ctx.Bool(quietFlag.Name):
		log.SetLevel(logrus.ErrorLevel)
	}
	opts := &options{
		stdout:     ctx.Bool(stdoutFlag.Name),
		decompress: ctx.Bool(decompressFlag.Name),
		force:      ctx.Bool(forceFlag.Name),
		keep:       ctx.Bool(keepFlag.Name),
		preset:     ctx.Int(presetFlag.Name),
		format:     ctx.String(formatFlag.Name),
		workers:    ctx.Int(threadsFlag.Name),
		dictSize:   ctx.Int(dictSizeFlag.Name),
	}
	if !(0 <= opts.preset && opts.preset <= 9) {
		return fmt.Errorf("preset %d out of range [0..9]", opts.preset)
	}
	if opts.workers < 0 {
		return fmt.Errorf("threads %d must not be negative", opts.workers)
	}
	if _, ok := formats[opts.format]; !ok {
		return fmt.Errorf("unsupported format %q", opts.format)
	}
	log.Debugf("options %# v", pretty.Formatter(opts))

	paths := ctx.Args().Slice()
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	p := &processor{
		ctx:    ctx.Context,
		opts:   opts,
		log:    log,
		logger: newLogger(log),
	}
	for _, path := range paths {
		p.processFile(path)
	}
	if p.failed {
		return cli.Exit("", 1)
	}
	return nil
}

func main() {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)
	cmdName := filepath.Base(os.Args[0])
	app := &cli.App{
		Name:      cmdName,
		Usage:     "compress or uncompress files in the .lzma or .lzma2 format",
		ArgsUsage: "[FILE]...",
		Description: "By default files are compressed in place. With no " +
			"FILE, or when FILE is -, standard input is read.",
		Flags: []cli.Flag{
			stdoutFlag, decompressFlag, forceFlag, keepFlag,
			verboseFlag, quietFlag, presetFlag, formatFlag,
			threadsFlag, dictSizeFlag,
		},
		UseShortOptionHandling: true,
		HideHelpCommand:        true,
		Action: func(ctx *cli.Context) error {
			return run(ctx, log)
		},
	}
	if err := app.Run(presetArgs(os.Args)); err != nil {
		log.Fatal(err)
	}
}
