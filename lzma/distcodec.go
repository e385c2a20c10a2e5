package lzma

import "math/bits"

// Constants used by the distance codec.
const (
	// minimum supported distance
	minDistance = 1
	// distance offset used for the end-of-stream marker
	eosDist = 1<<32 - 1
	// number of the supported len states
	lenStates = 4
	// start for the position models
	startPosModel = 4
	// first index with align bits support
	endPosModel = 14
	// bits for the position slots
	posSlotBits = 6
	// number of align bits
	alignBits = 4
)

// distCodec provides encoding and decoding of distance values.
type distCodec struct {
	posSlotCodecs [lenStates]treeCodec
	posModel      [endPosModel - startPosModel]treeReverseCodec
	alignCodec    treeReverseCodec
}

// init initializes the distance codec.
func (dc *distCodec) init() {
	for i := range dc.posSlotCodecs {
		dc.posSlotCodecs[i] = makeTreeCodec(posSlotBits)
	}
	for i := range dc.posModel {
		posSlot := startPosModel + i
		bits := (posSlot >> 1) - 1
		dc.posModel[i] = makeTreeReverseCodec(bits)
	}
	dc.alignCodec = makeTreeReverseCodec(alignBits)
}

// reset sets all probabilities of the codec back to their initial values.
func (dc *distCodec) reset() {
	if dc.alignCodec.probs == nil {
		dc.init()
		return
	}
	for i := range dc.posSlotCodecs {
		dc.posSlotCodecs[i].reset()
	}
	for i := range dc.posModel {
		dc.posModel[i].reset()
	}
	dc.alignCodec.reset()
}

// lenState converts the value l to a supported lenState value.
func lenState(l uint32) uint32 {
	if l >= lenStates {
		l = lenStates - 1
	}
	return l
}

// posSlot computes the position slot of the distance value dist. The
// function returns the number of footer bits as second value.
func posSlot(dist uint32) (slot uint32, footerBits uint32) {
	if dist < startPosModel {
		return dist, 0
	}
	n := uint32(bits.Len32(dist)) - 1
	footerBits = n - 1
	slot = (n << 1) | ((dist >> footerBits) & 1)
	return slot, footerBits
}

// Encode encodes the distance using the parameter l. Dist can have values from
// the full range of uint32 values. To get the distance offset the actual match
// distance has to be decreased by 1. A distance offset of 0xffffffff (eos)
// indicates the end of the stream.
func (dc *distCodec) Encode(e *rangeEncoder, dist uint32, l uint32) (err error) {
	slot, footerBits := posSlot(dist)

	if err = dc.posSlotCodecs[lenState(l)].Encode(e, slot); err != nil {
		return
	}

	switch {
	case slot < startPosModel:
		return nil
	case slot < endPosModel:
		tc := &dc.posModel[slot-startPosModel]
		return tc.Encode(e, dist)
	}
	if err = e.DirectEncode(dist>>alignBits, int(footerBits-alignBits)); err != nil {
		return
	}
	return dc.alignCodec.Encode(e, dist)
}

// Decode decodes the distance offset using the parameter l. The dist value
// 0xffffffff (eos) indicates the end of the stream. Add one to the distance
// offset to get the actual match distance.
func (dc *distCodec) Decode(d *rangeDecoder, l uint32) (dist uint32, err error) {
	var slot uint32
	if slot, err = dc.posSlotCodecs[lenState(l)].Decode(d); err != nil {
		return
	}

	if slot < startPosModel {
		return slot, nil
	}

	footerBits := (slot >> 1) - 1
	dist = (2 | (slot & 1)) << footerBits
	var u uint32
	if slot < endPosModel {
		tc := &dc.posModel[slot-startPosModel]
		if u, err = tc.Decode(d); err != nil {
			return 0, err
		}
		dist += u
		return dist, nil
	}

	if u, err = d.DirectDecode(int(footerBits - alignBits)); err != nil {
		return 0, err
	}
	dist += u << alignBits
	if u, err = dc.alignCodec.Decode(d); err != nil {
		return 0, err
	}
	dist += u
	return dist, nil
}
