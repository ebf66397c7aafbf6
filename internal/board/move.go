package board

import (
	"fmt"
	"strings"
)

// Move encodes a move in 16 bits:
// bits 0-5: target square (0-40)
// bits 6-9: kind (1-8 = flick in direction kind-1, 9 = place)
type Move uint16

const (
	kindShift = 6
	kindPlace = 9
)

// NoMove represents an invalid or null move.
const NoMove Move = 0

// NewPlace creates a move that puts a piece from hand on sq.
func NewPlace(sq Square) Move {
	return Move(sq) | Move(kindPlace)<<kindShift
}

// NewFlick creates a move that flicks the piece on sq in direction d.
func NewFlick(sq Square, d Direction) Move {
	return Move(sq) | Move(d+1)<<kindShift
}

// Square returns the target square (place) or the flicked square.
func (m Move) Square() Square {
	return Square(m & 0x3F)
}

func (m Move) kind() uint16 {
	return uint16(m>>kindShift) & 0xF
}

// IsPlace returns true for a placement.
func (m Move) IsPlace() bool {
	return m.kind() == kindPlace
}

// IsFlick returns true for a flick.
func (m Move) IsFlick() bool {
	k := m.kind()
	return k >= 1 && k <= uint16(NumDirections)
}

// Direction returns the flick direction (only valid if IsFlick() is true).
func (m Move) Direction() Direction {
	return Direction(m.kind() - 1)
}

// String returns the move in text form: "c3" for a place, "c3:ne" for a flick.
func (m Move) String() string {
	switch {
	case m == NoMove:
		return "none"
	case m.IsPlace():
		return m.Square().String()
	case m.IsFlick():
		return m.Square().String() + ":" + m.Direction().String()
	}
	return fmt.Sprintf("?%04x", uint16(m))
}

// ParseMove parses the text form produced by Move.String.
func ParseMove(s string) (Move, error) {
	sqText, dirText, isFlick := strings.Cut(strings.TrimSpace(s), ":")
	sq, err := ParseSquare(sqText)
	if err != nil {
		return NoMove, err
	}
	if !isFlick {
		return NewPlace(sq), nil
	}
	d, err := ParseDirection(dirText)
	if err != nil {
		return NoMove, err
	}
	return NewFlick(sq, d), nil
}

// MaxMoves bounds the number of legal moves in any position:
// at most 25 places and 5 pieces * 8 directions of flicks.
const MaxMoves = Cells + 5*int(NumDirections)

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [MaxMoves]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set sets the move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// MoveToFront moves m to index 0, keeping the relative order of the rest.
// Returns false if m is not in the list.
func (ml *MoveList) MoveToFront(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			copy(ml.moves[1:i+1], ml.moves[:i])
			ml.moves[0] = m
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}
