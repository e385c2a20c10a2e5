// Package lzma implements the LZMA and LZMA2 compression formats.
//
// The classic format consists of a 13 byte header followed by a single
// range coded LZMA stream:
//
//	w, err := lzma.NewWriter(f, lzma.WriterConfig{})
//	r, err := lzma.NewReader(f, lzma.ReaderConfig{})
//
// LZMA2 splits the stream into chunks that may reset the state or the
// dictionary and stores incompressible data uncompressed:
//
//	w, err := lzma.NewWriter2(f, lzma.Preset(6))
//	r, err := lzma.NewReader2(f, lzma.ReaderConfig{DictSize: 8 << 20})
//
// WriterConfig.EncodeChunks and ChunkDecoder operate on independent groups
// of chunks. The parallel package uses them to compress and decompress
// LZMA2 streams with multiple goroutines.
package lzma
