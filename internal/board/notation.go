package board

import (
	"errors"
	"fmt"
	"strings"
)

// StartNotation is the notation of the empty starting position.
const StartNotation = "...../...../...../...../..... x"

// ErrBadNotation is returned for a string that does not describe a position.
var ErrBadNotation = errors.New("bad position notation")

// ParseNotation parses a position written as five rows (top row first)
// separated by '/', followed by the side to move:
//
//	"x..o./...../..x../...../o.... o"
//
// 'x' is a first-player piece, 'o' a second-player piece, '.' an empty cell.
// Hands are derived from the number of pieces on the board.
func ParseNotation(s string) (*Position, error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: need rows and side, got %d fields", ErrBadNotation, len(parts))
	}

	rows := strings.Split(parts[0], "/")
	if len(rows) != Rows {
		return nil, fmt.Errorf("%w: need %d rows, got %d", ErrBadNotation, Rows, len(rows))
	}

	var first, second Bitboard
	for i, text := range rows {
		if len(text) != Cols {
			return nil, fmt.Errorf("%w: row %q must have %d cells", ErrBadNotation, text, Cols)
		}
		row := Rows - 1 - i
		for col := 0; col < Cols; col++ {
			sq := NewSquare(row, col)
			switch text[col] {
			case 'x':
				first |= SquareBB(sq)
			case 'o':
				second |= SquareBB(sq)
			case '.':
			default:
				return nil, fmt.Errorf("%w: unexpected %q in row %q", ErrBadNotation, text[col], text)
			}
		}
	}
	if first.PopCount() > PiecesPerPlayer || second.PopCount() > PiecesPerPlayer {
		return nil, fmt.Errorf("%w: more than %d pieces for one player", ErrBadNotation, PiecesPerPlayer)
	}

	var side Side
	switch parts[1] {
	case "x":
		side = First
	case "o":
		side = Second
	default:
		return nil, fmt.Errorf("%w: invalid side to move %q", ErrBadNotation, parts[1])
	}
	return NewPositionFromBitboards(first, second, side), nil
}

// MustParseNotation is like ParseNotation but panics on error. For tests and constants.
func MustParseNotation(s string) *Position {
	p, err := ParseNotation(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Notation returns the position in the format read by ParseNotation.
func (p *Position) Notation() string {
	var sb strings.Builder
	for row := Rows - 1; row >= 0; row-- {
		for col := 0; col < Cols; col++ {
			sq := NewSquare(row, col)
			switch {
			case p.Players[0].IsSet(sq):
				sb.WriteByte('x')
			case p.Players[1].IsSet(sq):
				sb.WriteByte('o')
			default:
				sb.WriteByte('.')
			}
		}
		if row > 0 {
			sb.WriteByte('/')
		}
	}
	sb.WriteByte(' ')
	sb.WriteString(p.SideToMove.String())
	return sb.String()
}
