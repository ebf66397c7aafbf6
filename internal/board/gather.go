package board

// Gatherer compresses the bits of x selected by mask into the low bits of the
// result (Extract, the PEXT operation) and spreads the low bits of x back onto
// the set bits of mask (Deposit, the PDEP operation).
type Gatherer interface {
	Extract(x, mask uint64) uint64
	Deposit(x, mask uint64) uint64
	Name() string
}

// portableGatherer walks the set bits of the mask.
type portableGatherer struct{}

func (portableGatherer) Extract(x, mask uint64) uint64 {
	var result uint64
	for bit := uint64(1); mask != 0; bit <<= 1 {
		low := mask & -mask
		if x&low != 0 {
			result |= bit
		}
		mask &= mask - 1
	}
	return result
}

func (portableGatherer) Deposit(x, mask uint64) uint64 {
	var result uint64
	for bit := uint64(1); mask != 0; bit <<= 1 {
		low := mask & -mask
		if x&bit != 0 {
			result |= low
		}
		mask &= mask - 1
	}
	return result
}

func (portableGatherer) Name() string { return "portable" }

// Portable is the loop implementation, available on every platform.
var Portable Gatherer = portableGatherer{}

var gather = selectGatherer()

// ActiveGatherer returns the implementation selected at startup.
func ActiveGatherer() Gatherer {
	return gather
}

func extract(x, mask Bitboard) uint64 {
	return gather.Extract(uint64(x), uint64(mask))
}

func deposit(x uint64, mask Bitboard) Bitboard {
	return Bitboard(gather.Deposit(x, uint64(mask)))
}
