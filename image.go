package xasm

// imageSize is 64 KiB plus a one-page guard region, so that an operand
// evaluating one past the top of the address space can still be written
// without a slice-bounds panic; the overflow is reported as a pc-overflow
// error before any such write happens.
const imageSize = 0x10000 + 0x100

// Image is the 64 KiB (+ guard page) output buffer. Only the final pass
// writes to it; earlier passes exist solely to converge addresses.
type Image struct {
	bytes    [imageSize]byte
	written  [imageSize]bool
	fillByte byte
}

func NewImage(fill byte) *Image {
	img := &Image{fillByte: fill}
	for i := range img.bytes {
		img.bytes[i] = fill
	}
	return img
}

// Reset clears the per-pass "written" bookkeeping without touching the
// fill value, so the single-writer-per-pass invariant can be checked
// freshly in each pass.
func (img *Image) Reset() {
	for i := range img.written {
		img.written[i] = false
	}
}

// WriteByte stores b at addr, returning an error if addr was already
// written this pass (the no-overwrite invariant from spec §8).
func (img *Image) WriteByte(addr int, b byte) error {
	if addr < 0 || addr >= imageSize {
		return newErr(KindRange, "", 0, 0, "address $%04X is out of range", addr)
	}
	if img.written[addr] {
		return newErr(KindRange, "", 0, 0, "address $%04X written more than once in this pass", addr)
	}
	img.bytes[addr] = b
	img.written[addr] = true
	return nil
}

func (img *Image) Slice(start, length int) []byte {
	if start < 0 {
		start = 0
	}
	end := start + length
	if end > imageSize {
		end = imageSize
	}
	return img.bytes[start:end]
}

// StoreDirective is one `.STORE start,length,"file"` entry, populated
// only in the final pass.
type StoreDirective struct {
	Start    int
	Length   int
	Filename string
	Load     bool // prefix output with a little-endian load-address word
}
