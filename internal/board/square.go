// Package board implements the 5x5 flick game position using padded bitboards.
package board

import "fmt"

// Square is a bit index on the padded lattice (row*Width + col).
// Row 0 is the bottom row, column 0 is file a: A1=0, E1=4, A2=9, E5=40.
type Square uint8

// NoSquare represents an invalid square.
const NoSquare Square = 63

// NewSquare creates a square from row and column (both 0-4).
func NewSquare(row, col int) Square {
	return Square(row*Width + col)
}

// Row returns the row (0-4).
func (sq Square) Row() int {
	return int(sq) / Width
}

// Col returns the column (0-4).
func (sq Square) Col() int {
	return int(sq) % Width
}

// Index returns the dense cell index (row*5 + col) used by feature tables.
func (sq Square) Index() int {
	return sq.Row()*Cols + sq.Col()
}

// IsValid returns true if the square lies on the 5x5 field.
func (sq Square) IsValid() bool {
	return sq <= MaxBit && FieldMask.IsSet(sq)
}

// String returns the algebraic notation of the square (e.g., "c3").
func (sq Square) String() string {
	if !sq.IsValid() {
		return "-"
	}
	return string([]byte{byte('a' + sq.Col()), byte('1' + sq.Row())})
}

// ParseSquare parses algebraic notation into a square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}
	col := int(s[0] - 'a')
	row := int(s[1] - '1')
	if col < 0 || col >= Cols || row < 0 || row >= Rows {
		return NoSquare, fmt.Errorf("invalid square: %q", s)
	}
	return NewSquare(row, col), nil
}

// Direction is one of the eight flick directions.
// 0-3 move toward higher bit indices, 4-7 are their opposites.
type Direction uint8

const (
	East Direction = iota
	NorthEast
	North
	NorthWest
	West
	SouthWest
	South
	SouthEast
	NumDirections
)

var directionNames = [NumDirections]string{"e", "ne", "n", "nw", "w", "sw", "s", "se"}

var directionDeltas = [NumDirections][2]int{
	{0, 1}, {1, 1}, {1, 0}, {1, -1},
	{0, -1}, {-1, -1}, {-1, 0}, {-1, 1},
}

// Delta returns the (row, col) step of the direction.
func (d Direction) Delta() (int, int) {
	return directionDeltas[d][0], directionDeltas[d][1]
}

// Step returns the bit distance of one step in this direction.
func (d Direction) Step() uint {
	return lineSteps[d%4]
}

// Positive returns true if stepping in this direction increases the bit index.
func (d Direction) Positive() bool {
	return d < West
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	return (d + 4) % NumDirections
}

func (d Direction) String() string {
	if d >= NumDirections {
		return "?"
	}
	return directionNames[d]
}

// ParseDirection parses a direction name such as "ne".
func ParseDirection(s string) (Direction, error) {
	for d, name := range directionNames {
		if name == s {
			return Direction(d), nil
		}
	}
	return NumDirections, fmt.Errorf("invalid direction: %q", s)
}

// Side is the side-to-move sign: +1 for the first player, -1 for the second.
type Side int8

const (
	First  Side = 1
	Second Side = -1
)

// Index returns 0 for the first player and 1 for the second.
func (s Side) Index() int {
	return int(1-s) / 2
}

// Other returns the opponent.
func (s Side) Other() Side {
	return -s
}

// SideFromIndex converts a player index (0 or 1) to a side.
func SideFromIndex(i int) Side {
	if i == 0 {
		return First
	}
	return Second
}

func (s Side) String() string {
	if s == First {
		return "x"
	}
	return "o"
}
