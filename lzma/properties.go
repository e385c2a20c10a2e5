package lzma

import (
	"errors"
	"fmt"
)

// Maximum and minimum values for the individual properties.
const (
	MinLC = minLC
	MaxLC = maxLC
	MinLP = minLP
	MaxLP = maxLP
	MinPB = 0
	MaxPB = maxPosBits
)

// maxPropsByte is the largest valid properties byte.
const maxPropsByte = (MaxPB+1)*(MaxLP+1)*(MaxLC+1) - 1

// Properties contains the parameters LC, LP and PB. The parameter LC
// defines the number of literal context bits; parameter LP the number of
// literal position bits and PB the number of position bits.
type Properties struct {
	LC int
	LP int
	PB int
}

// String returns the properties in a string representation.
func (p Properties) String() string {
	return fmt.Sprintf("LC %d LP %d PB %d", p.LC, p.LP, p.PB)
}

var errPropsByte = errors.New("invalid properties byte")

// fromByte reads the properties from the byte representation (pb*5+lp)*9+lc.
func (p *Properties) fromByte(b byte) error {
	if b > maxPropsByte {
		return errPropsByte
	}
	x := int(b)
	p.LC = x % 9
	x /= 9
	p.LP = x % 5
	p.PB = x / 5
	return nil
}

// byte returns the byte representation of the properties.
func (p Properties) byte() byte {
	return byte((p.PB*5+p.LP)*9 + p.LC)
}

// Verify checks the properties for correctness.
func (p Properties) Verify() error {
	if !(MinLC <= p.LC && p.LC <= MaxLC) {
		return configErrorf("LC", "%d out of range [%d,%d]",
			p.LC, MinLC, MaxLC)
	}
	if !(MinLP <= p.LP && p.LP <= MaxLP) {
		return configErrorf("LP", "%d out of range [%d,%d]",
			p.LP, MinLP, MaxLP)
	}
	if !(MinPB <= p.PB && p.PB <= MaxPB) {
		return configErrorf("PB", "%d out of range [%d,%d]",
			p.PB, MinPB, MaxPB)
	}
	return nil
}

// verifyLZMA2 checks the additional LZMA2 constraint that LC and LP
// together must not exceed 4.
func (p Properties) verifyLZMA2() error {
	if err := p.Verify(); err != nil {
		return err
	}
	if p.LC+p.LP > 4 {
		return configErrorf("LC+LP", "sum %d exceeds 4", p.LC+p.LP)
	}
	return nil
}
