package lzma

// movebits defines the number of bits used for the updates of probability
// values.
const movebits = 5

// probbits defines the number of bits of a probability value.
const probbits = 11

// probInit defines 0.5 as initial value for prob values.
const probInit prob = 1 << (probbits - 1)

// Type prob represents the probability that the next bit is zero. The type
// can be used to encode and decode single bits.
type prob uint16

// dec decreases the probability. The decrease is proportional to the
// probability value.
func (p *prob) dec() {
	*p -= *p >> movebits
}

// inc increases the probability. The increase is proportional to the
// difference of 1 and the probability value.
func (p *prob) inc() {
	*p += ((1 << probbits) - *p) >> movebits
}

// bound computes the split point for the given range using the probability
// value.
func (p prob) bound(r uint32) uint32 {
	return (r >> probbits) * uint32(p)
}

// Encode encodes the least significant bit of v with the probability p.
func (p *prob) Encode(e *rangeEncoder, v uint32) error {
	return e.EncodeBit(v, p)
}

// Decode decodes a single bit with the probability p.
func (p *prob) Decode(d *rangeDecoder) (v uint32, err error) {
	return d.DecodeBit(p)
}

// initProbs sets all probabilities in the slice to probInit.
func initProbs(p []prob) {
	for i := range p {
		p[i] = probInit
	}
}
