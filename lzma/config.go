package lzma

import (
	"fmt"

	"github.com/xzkit/xzcore/xlog"
)

// Dictionary sizes supported by the package.
const (
	MinDictSize = 1 << 12
	MaxDictSize = 3 << 29
)

// defaultDictSize is used if no dictionary size has been given.
const defaultDictSize = 8 << 20

// MatchFinder selects the algorithm used to find matches in the
// dictionary.
type MatchFinder int

// Supported match finders. The zero value selects the default.
const (
	HashChain4 MatchFinder = iota + 1
	BinaryTree4
)

var matchFinderNames = map[MatchFinder]string{
	HashChain4:  "hc4",
	BinaryTree4: "bt4",
}

// String returns the short name of the match finder.
func (mf MatchFinder) String() string {
	if s, ok := matchFinderNames[mf]; ok {
		return s
	}
	return fmt.Sprintf("MatchFinder(%d)", int(mf))
}

// ParseMatchFinder converts the short name into a MatchFinder value.
func ParseMatchFinder(s string) (MatchFinder, error) {
	for mf, name := range matchFinderNames {
		if name == s {
			return mf, nil
		}
	}
	return 0, configErrorf("MatchFinder", "unknown name %q", s)
}

// Mode selects the parsing strategy of the encoder.
type Mode int

// Supported modes. ModeFast parses greedily; ModeNormal looks one byte
// ahead before accepting a match and uses short repeats.
const (
	ModeFast Mode = iota + 1
	ModeNormal
)

// String returns the name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeFast:
		return "fast"
	case ModeNormal:
		return "normal"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// WriterConfig defines the parameters for all LZMA and LZMA2 writers.
// Zero values are replaced by defaults in ApplyDefaults.
type WriterConfig struct {
	// Properties for the encoding. The default is LC 3, LP 0 and PB 2.
	Properties *Properties
	// DictSize is the size of the dictionary. The default is 8 MiB.
	DictSize int
	// MatchFinder selects the match finder. The default is BinaryTree4.
	MatchFinder MatchFinder
	// Mode selects the parser. The default is ModeNormal.
	Mode Mode
	// NiceLen stops the search for longer matches.
	NiceLen int
	// Depth limits the number of candidates the match finder looks at.
	Depth int
	// SizeInHeader requests that the classic writer stores Size in the
	// header.
	SizeInHeader bool
	// Size is the number of bytes that will be written.
	Size int64
	// EOS requests an end-of-stream marker from the classic writer. It is
	// always written if the size is not stored in the header.
	EOS bool
	// Logger receives debug output.
	Logger xlog.Logger
}

// ApplyDefaults sets the zero values of the configuration to their
// defaults.
func (cfg *WriterConfig) ApplyDefaults() {
	if cfg.Properties == nil {
		cfg.Properties = &Properties{LC: 3, LP: 0, PB: 2}
	}
	if cfg.DictSize == 0 {
		cfg.DictSize = defaultDictSize
	}
	if cfg.MatchFinder == 0 {
		cfg.MatchFinder = BinaryTree4
	}
	if cfg.Mode == 0 {
		cfg.Mode = ModeNormal
	}
	if cfg.NiceLen == 0 {
		cfg.NiceLen = 64
	}
	if cfg.Depth == 0 {
		if cfg.MatchFinder == HashChain4 {
			cfg.Depth = 4 + cfg.NiceLen/4
		} else {
			cfg.Depth = 16 + cfg.NiceLen/2
		}
	}
	if !cfg.SizeInHeader {
		cfg.EOS = true
	}
}

// Verify checks the configuration for errors. Zero values are treated as
// errors; call ApplyDefaults before Verify.
func (cfg *WriterConfig) Verify() error {
	if cfg == nil {
		return configErrorf("WriterConfig", "is nil")
	}
	if cfg.Properties == nil {
		return configErrorf("Properties", "are nil")
	}
	if err := cfg.Properties.Verify(); err != nil {
		return err
	}
	if err := verifyDictSize(cfg.DictSize); err != nil {
		return err
	}
	if _, ok := matchFinderNames[cfg.MatchFinder]; !ok {
		return configErrorf("MatchFinder", "unsupported value %d",
			int(cfg.MatchFinder))
	}
	if !(cfg.Mode == ModeFast || cfg.Mode == ModeNormal) {
		return configErrorf("Mode", "unsupported value %d", int(cfg.Mode))
	}
	if !(minMatchLen <= cfg.NiceLen && cfg.NiceLen <= maxMatchLen) {
		return configErrorf("NiceLen", "%d out of range [%d,%d]",
			cfg.NiceLen, minMatchLen, maxMatchLen)
	}
	if cfg.Depth <= 0 {
		return configErrorf("Depth", "must be positive")
	}
	if cfg.SizeInHeader && cfg.Size < 0 {
		return configErrorf("Size", "must not be negative")
	}
	return nil
}

// VerifyLZMA2 checks the configuration for the use with LZMA2, which
// requires LC+LP <= 4.
func (cfg *WriterConfig) VerifyLZMA2() error {
	if err := cfg.Verify(); err != nil {
		return err
	}
	return cfg.Properties.verifyLZMA2()
}

// normalized returns a copy of the configuration with defaults applied.
// The Properties are copied as well.
func (cfg *WriterConfig) normalized() WriterConfig {
	c := *cfg
	if c.Properties != nil {
		p := *c.Properties
		c.Properties = &p
	}
	c.ApplyDefaults()
	return c
}

func verifyDictSize(n int) error {
	if !(MinDictSize <= n && n <= MaxDictSize) {
		return configErrorf("DictSize", "%d out of range [%d,%d]",
			n, MinDictSize, MaxDictSize)
	}
	return nil
}

// ReaderConfig defines the parameters for the LZMA and LZMA2 readers.
type ReaderConfig struct {
	// DictSize gives the dictionary size for LZMA2 streams. The classic
	// reader takes the size from the header.
	DictSize int
	// Logger receives debug output.
	Logger xlog.Logger
}

// ApplyDefaults sets the zero values to the defaults.
func (cfg *ReaderConfig) ApplyDefaults() {
	if cfg.DictSize == 0 {
		cfg.DictSize = defaultDictSize
	}
}

// Verify checks the reader configuration for errors.
func (cfg *ReaderConfig) Verify() error {
	if cfg == nil {
		return configErrorf("ReaderConfig", "is nil")
	}
	return verifyDictSize(cfg.DictSize)
}
