package parallel

import (
	"fmt"
	"runtime"

	"github.com/xzkit/xzcore/lzma"
)

// minSegmentSize is the smallest default segment size.
const minSegmentSize = 1 << 20

// WriterConfig configures the parallel LZMA2 writer.
type WriterConfig struct {
	lzma.WriterConfig
	// Workers is the maximum number of segments compressed at the same
	// time. The default is GOMAXPROCS.
	Workers int
	// SegmentSize is the number of bytes compressed independently. The
	// default is three times the dictionary size but at least 1 MiB.
	SegmentSize int
}

// ApplyDefaults replaces zero values by their defaults.
func (cfg *WriterConfig) ApplyDefaults() {
	cfg.WriterConfig.ApplyDefaults()
	if cfg.Workers == 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.SegmentSize == 0 {
		cfg.SegmentSize = 3 * cfg.DictSize
		if cfg.SegmentSize < minSegmentSize {
			cfg.SegmentSize = minSegmentSize
		}
	}
}

// Verify checks the configuration.
func (cfg *WriterConfig) Verify() error {
	if cfg == nil {
		return &lzma.ConfigError{Field: "WriterConfig", Msg: "is nil"}
	}
	if err := cfg.WriterConfig.VerifyLZMA2(); err != nil {
		return err
	}
	if cfg.Workers < 1 {
		return &lzma.ConfigError{Field: "Workers",
			Msg: fmt.Sprintf("%d must be positive", cfg.Workers)}
	}
	if cfg.SegmentSize < 1 {
		return &lzma.ConfigError{Field: "SegmentSize",
			Msg: fmt.Sprintf("%d must be positive", cfg.SegmentSize)}
	}
	return nil
}

// ReaderConfig configures the parallel LZMA2 reader.
type ReaderConfig struct {
	lzma.ReaderConfig
	// Workers is the maximum number of chunk groups decoded at the same
	// time. The default is GOMAXPROCS.
	Workers int
}

// ApplyDefaults replaces zero values by their defaults.
func (cfg *ReaderConfig) ApplyDefaults() {
	cfg.ReaderConfig.ApplyDefaults()
	if cfg.Workers == 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
}

// Verify checks the configuration.
func (cfg *ReaderConfig) Verify() error {
	if cfg == nil {
		return &lzma.ConfigError{Field: "ReaderConfig", Msg: "is nil"}
	}
	if err := cfg.ReaderConfig.Verify(); err != nil {
		return err
	}
	if cfg.Workers < 1 {
		return &lzma.ConfigError{Field: "Workers",
			Msg: fmt.Sprintf("%d must be positive", cfg.Workers)}
	}
	return nil
}
