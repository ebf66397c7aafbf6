package board

import (
	"math/bits"
	"strings"
)

// Bitboard is a set of cells over the padded lattice.
// Bit index = row*Width + col. Only the 25 bits in FieldMask are ever set in a
// position; the padding columns let shifts of up to four steps run without
// wrapping a line into the next row.
type Bitboard uint64

// Lattice geometry
const (
	Width  = 9 // Lattice row stride (5 cells + 4 padding)
	Rows   = 5
	Cols   = 5
	Cells  = Rows * Cols
	MaxBit = (Rows-1)*Width + Cols - 1 // Highest legal bit index (40)
)

// Special masks
const (
	Empty     Bitboard = 0
	rowBits   Bitboard = 0b11111
	FieldMask Bitboard = rowBits |
		rowBits<<Width |
		rowBits<<(2*Width) |
		rowBits<<(3*Width) |
		rowBits<<(4*Width)
)

// Line steps used by the three-in-a-row test: E, NE, N, NW.
var lineSteps = [4]uint{1, Width + 1, Width, Width - 1}

// RowMask returns the mask of the given row (0-4).
var RowMask = [Rows]Bitboard{
	rowBits,
	rowBits << Width,
	rowBits << (2 * Width),
	rowBits << (3 * Width),
	rowBits << (4 * Width),
}

// SquareBB returns a bitboard with only the given square set.
func SquareBB(sq Square) Bitboard {
	return 1 << sq
}

// IsSet returns true if the bit at the given square is set.
func (b Bitboard) IsSet(sq Square) bool {
	return b&(1<<sq) != 0
}

// PopCount returns the number of set bits.
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(uint64(b))
}

// LSB returns the least significant bit.
func (b Bitboard) LSB() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(uint64(b)))
}

// MSB returns the most significant bit.
func (b Bitboard) MSB() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(63 - bits.LeadingZeros64(uint64(b)))
}

// PopLSB removes and returns the least significant bit.
func (b *Bitboard) PopLSB() Square {
	sq := b.LSB()
	*b &= *b - 1
	return sq
}

// Spread returns the set together with its 3x3 neighbourhood, clipped to the field.
func (b Bitboard) Spread() Bitboard {
	b |= b<<1 | b>>1
	b |= b<<Width | b>>Width
	return b & FieldMask
}

// Squares returns a slice of all squares that are set.
func (b Bitboard) Squares() []Square {
	squares := make([]Square, 0, b.PopCount())
	for b != 0 {
		squares = append(squares, b.PopLSB())
	}
	return squares
}

// String returns a visual representation of the bitboard, top row first.
func (b Bitboard) String() string {
	var sb strings.Builder
	for row := Rows - 1; row >= 0; row-- {
		sb.WriteByte(byte('1' + row))
		sb.WriteByte(' ')
		for col := 0; col < Cols; col++ {
			if b.IsSet(NewSquare(row, col)) {
				sb.WriteString("1 ")
			} else {
				sb.WriteString(". ")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e\n")
	return sb.String()
}

// Precomputed tables, read-only after init.
var (
	rays     [MaxBit + 1][NumDirections]Bitboard // Ray from a cell (inclusive) to the edge
	rayEnd   [MaxBit + 1][NumDirections]Square   // Last on-board cell of each ray
	ahead    [MaxBit + 1][NumDirections]Bitboard // Ray without its origin
	neighbor [MaxBit + 1]Bitboard                // 3x3 neighbourhood
)

func init() {
	initRays()
}

func initRays() {
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			sq := NewSquare(row, col)
			neighbor[sq] = SquareBB(sq).Spread()
			for d := Direction(0); d < NumDirections; d++ {
				dr, dc := d.Delta()
				var ray Bitboard
				end := sq
				for r, c := row, col; r >= 0 && r < Rows && c >= 0 && c < Cols; r, c = r+dr, c+dc {
					end = NewSquare(r, c)
					ray |= SquareBB(end)
				}
				rays[sq][d] = ray
				rayEnd[sq][d] = end
				ahead[sq][d] = ray &^ SquareBB(sq)
			}
		}
	}
}

// Ray returns the cells from sq (inclusive) to the edge in direction d.
func Ray(sq Square, d Direction) Bitboard {
	return rays[sq][d]
}

// Neighborhood returns the 3x3 neighbourhood of sq, clipped to the field.
func Neighborhood(sq Square) Bitboard {
	return neighbor[sq]
}
