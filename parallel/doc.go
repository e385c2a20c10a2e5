// Package parallel compresses and decompresses LZMA2 streams using multiple
// goroutines.
//
// The writer splits the input into segments that are compressed
// independently; every segment starts with a dictionary reset. The reader
// splits a stream at chunks that reset the dictionary and decodes the
// resulting groups concurrently. The chunks of a group are decoded while they
// are read, so the memory used by the reader doesn't depend on the size of
// the groups. Streams written by a single-threaded LZMA2 writer usually
// contain only a single group and are decoded sequentially.
package parallel
