package lzma

import "fmt"

// Preset returns a WriterConfig with preset parameters. Supported presets
// range from 0 to 9, from fast to slow with increasing compression rate.
// The function panics for other values.
func Preset(level int) WriterConfig {
	if !(0 <= level && level < len(presets)) {
		panic(fmt.Errorf("lzma: preset %d not in range [0..9]", level))
	}
	cfg := presets[level]
	p := *cfg.Properties
	cfg.Properties = &p
	return cfg
}

// DefaultPreset is the preset level used by the command line tool.
const DefaultPreset = 6

var lclppb = Properties{LC: 3, LP: 0, PB: 2}

// presets contain the predefined configurations. Don't use directly to
// prevent modification.
var presets = [...]WriterConfig{
	0: {
		Properties:  &lclppb,
		DictSize:    256 << 10,
		MatchFinder: HashChain4,
		Mode:        ModeFast,
		NiceLen:     128,
		Depth:       4,
	},
	1: {
		Properties:  &lclppb,
		DictSize:    1 << 20,
		MatchFinder: HashChain4,
		Mode:        ModeFast,
		NiceLen:     128,
		Depth:       8,
	},
	2: {
		Properties:  &lclppb,
		DictSize:    2 << 20,
		MatchFinder: HashChain4,
		Mode:        ModeFast,
		NiceLen:     273,
		Depth:       24,
	},
	3: {
		Properties:  &lclppb,
		DictSize:    4 << 20,
		MatchFinder: HashChain4,
		Mode:        ModeFast,
		NiceLen:     273,
		Depth:       48,
	},
	4: {
		Properties:  &lclppb,
		DictSize:    4 << 20,
		MatchFinder: BinaryTree4,
		Mode:        ModeNormal,
		NiceLen:     16,
		Depth:       24,
	},
	5: {
		Properties:  &lclppb,
		DictSize:    8 << 20,
		MatchFinder: BinaryTree4,
		Mode:        ModeNormal,
		NiceLen:     32,
		Depth:       32,
	},
	6: {
		Properties:  &lclppb,
		DictSize:    8 << 20,
		MatchFinder: BinaryTree4,
		Mode:        ModeNormal,
		NiceLen:     64,
		Depth:       48,
	},
	7: {
		Properties:  &lclppb,
		DictSize:    16 << 20,
		MatchFinder: BinaryTree4,
		Mode:        ModeNormal,
		NiceLen:     64,
		Depth:       48,
	},
	8: {
		Properties:  &lclppb,
		DictSize:    32 << 20,
		MatchFinder: BinaryTree4,
		Mode:        ModeNormal,
		NiceLen:     64,
		Depth:       48,
	},
	9: {
		Properties:  &lclppb,
		DictSize:    64 << 20,
		MatchFinder: BinaryTree4,
		Mode:        ModeNormal,
		NiceLen:     64,
		Depth:       48,
	},
}
