package board

import (
	"errors"
	"fmt"
	"strings"
)

// PiecesPerPlayer is the number of pieces each player owns.
const PiecesPerPlayer = 5

// Hash is the compressed position key: both occupancy sets gathered to 25 bits
// each plus the side to move. Equal hashes mean bit-identical positions.
type Hash uint64

// NoHash marks the absence of a prior position. It is never produced by Position.Hash.
const NoHash Hash = ^Hash(0)

var (
	// ErrIllegalMove is returned when a move is not legal in the position.
	ErrIllegalMove = errors.New("illegal move")
	// ErrRepetition is returned when a move recreates the prior position.
	ErrRepetition = errors.New("move repeats the prior position")
	// ErrInvariant is returned by Validate for a corrupted position.
	ErrInvariant = errors.New("position invariant violated")
)

// DebugValidation makes every Apply/Undo check the position invariants and panic
// on a violation. Tests enable it; the search leaves it off.
var DebugValidation = false

// Position is the game state. It is mutated in place by Apply/Undo.
type Position struct {
	Players    [2]Bitboard // Occupancy per player, index 0 = first player
	Hand       [2]uint8    // Pieces still in hand
	SideToMove Side
}

// NewPosition creates the empty starting position.
func NewPosition() *Position {
	return &Position{
		Hand:       [2]uint8{PiecesPerPlayer, PiecesPerPlayer},
		SideToMove: First,
	}
}

// NewPositionFromBitboards creates a position from two occupancy sets, deriving the hands.
func NewPositionFromBitboards(first, second Bitboard, side Side) *Position {
	return &Position{
		Players: [2]Bitboard{first, second},
		Hand: [2]uint8{
			uint8(PiecesPerPlayer - first.PopCount()),
			uint8(PiecesPerPlayer - second.PopCount()),
		},
		SideToMove: side,
	}
}

// Copy creates a deep copy of the position.
func (p *Position) Copy() *Position {
	newPos := *p
	return &newPos
}

// Occupied returns the cells holding a piece of either player.
func (p *Position) Occupied() Bitboard {
	return p.Players[0] | p.Players[1]
}

// Blank returns the empty cells of the field.
func (p *Position) Blank() Bitboard {
	return FieldMask &^ p.Occupied()
}

// Us returns the occupancy of the side to move.
func (p *Position) Us() Bitboard {
	return p.Players[p.SideToMove.Index()]
}

// Them returns the occupancy of the opponent.
func (p *Position) Them() Bitboard {
	return p.Players[1-p.SideToMove.Index()]
}

// Placed returns how many pieces the side has on the board.
func (p *Position) Placed(s Side) int {
	return p.Players[s.Index()].PopCount()
}

// Apply plays a move without any legality or repetition checking.
// The move must come from GenerateLegalMoves.
func (p *Position) Apply(m Move) {
	if m.IsPlace() {
		us := p.SideToMove.Index()
		p.Players[us] |= SquareBB(m.Square())
		p.Hand[us]--
	} else {
		p.flick(m.Square(), m.Direction())
	}
	p.SideToMove = -p.SideToMove
	if DebugValidation {
		p.mustValidate("apply", m)
	}
}

// Undo reverts a move previously applied with Apply.
func (p *Position) Undo(m Move) {
	p.SideToMove = -p.SideToMove
	if m.IsPlace() {
		us := p.SideToMove.Index()
		p.Players[us] &^= SquareBB(m.Square())
		p.Hand[us]++
	} else {
		p.unflick(m.Square(), m.Direction())
	}
	if DebugValidation {
		p.mustValidate("undo", m)
	}
}

// ApplyChecked applies the move unless the result equals prior (the position
// before the opponent's last move). On a repetition the position is left unchanged
// and false is returned.
func (p *Position) ApplyChecked(m Move, prior Hash) bool {
	p.Apply(m)
	if prior != NoHash && p.Hash() == prior {
		p.Undo(m)
		return false
	}
	return true
}

// Play validates and applies a move. It is meant for callers outside the search
// that receive moves from untrusted sources.
func (p *Position) Play(m Move, prior Hash) error {
	if !p.IsLegal(m) {
		return fmt.Errorf("%w: %s", ErrIllegalMove, m)
	}
	if !p.ApplyChecked(m, prior) {
		return fmt.Errorf("%w: %s", ErrRepetition, m)
	}
	return nil
}

// flick slides every piece on the ray from sq in direction d forward: each piece
// stops just before the original cell of the next piece, the last one reaches the
// edge. Piece ownership keeps its order along the ray.
func (p *Position) flick(sq Square, d Direction) {
	line := rays[sq][d]
	pieces := p.Occupied() & line
	order := extract(p.Players[0], pieces)

	p.Players[0] &^= line
	p.Players[1] &^= line

	moved := pieces &^ SquareBB(sq)
	if d.Positive() {
		moved >>= d.Step()
	} else {
		moved <<= d.Step()
	}
	moved |= SquareBB(rayEnd[sq][d])

	p.Players[0] |= deposit(order, moved)
	p.Players[1] |= deposit(^order, moved)
}

// unflick is the exact inverse of flick.
func (p *Position) unflick(sq Square, d Direction) {
	line := rays[sq][d]
	pieces := p.Occupied() & line
	order := extract(p.Players[0], pieces)

	p.Players[0] &^= line
	p.Players[1] &^= line

	moved := pieces &^ SquareBB(rayEnd[sq][d])
	if d.Positive() {
		moved <<= d.Step()
	} else {
		moved >>= d.Step()
	}
	moved |= SquareBB(sq)

	p.Players[0] |= deposit(order, moved)
	p.Players[1] |= deposit(^order, moved)
}

// Hash packs the position into its compressed key.
func (p *Position) Hash() Hash {
	return hashOf(p.Players, p.SideToMove)
}

func hashOf(players [2]Bitboard, side Side) Hash {
	return Hash(extract(players[0], FieldMask)<<(Cells+1) |
		extract(players[1], FieldMask)<<1 |
		uint64(side.Index()))
}

// PositionFromHash rebuilds the position a hash was computed from.
func PositionFromHash(h Hash) *Position {
	const cellMask = 1<<Cells - 1
	first := deposit(uint64(h>>(Cells+1))&cellMask, FieldMask)
	second := deposit(uint64(h>>1)&cellMask, FieldMask)
	return NewPositionFromBitboards(first, second, SideFromIndex(int(h&1)))
}

// Validate checks the structural invariants of the position.
func (p *Position) Validate() error {
	if p.Players[0]&p.Players[1] != 0 {
		return fmt.Errorf("%w: occupancy sets overlap (%x)", ErrInvariant, uint64(p.Players[0]&p.Players[1]))
	}
	for i := 0; i < 2; i++ {
		if p.Players[i]&^FieldMask != 0 {
			return fmt.Errorf("%w: player %d outside the field (%x)", ErrInvariant, i, uint64(p.Players[i]))
		}
		if int(p.Hand[i])+p.Players[i].PopCount() != PiecesPerPlayer {
			return fmt.Errorf("%w: player %d has %d placed and %d in hand",
				ErrInvariant, i, p.Players[i].PopCount(), p.Hand[i])
		}
	}
	if p.SideToMove != First && p.SideToMove != Second {
		return fmt.Errorf("%w: side to move %d", ErrInvariant, p.SideToMove)
	}
	return nil
}

func (p *Position) mustValidate(op string, m Move) {
	if err := p.Validate(); err != nil {
		panic(fmt.Sprintf("board: %s %s: %v\n%s", op, m, err, p))
	}
}

// Snapshot is the read-only view of a position handed to evaluators.
type Snapshot struct {
	Players    [2]Bitboard
	Hand       [2]uint8
	SideToMove Side
	Prior      Hash // Position before the opponent's last move, or NoHash
}

// Snapshot returns an immutable view of the position.
func (p *Position) Snapshot(prior Hash) Snapshot {
	return Snapshot{
		Players:    p.Players,
		Hand:       p.Hand,
		SideToMove: p.SideToMove,
		Prior:      prior,
	}
}

// Hash returns the compressed key of the snapshot position.
func (s Snapshot) Hash() Hash {
	return hashOf(s.Players, s.SideToMove)
}

// Position returns a mutable position equal to the snapshot.
func (s Snapshot) Position() *Position {
	return &Position{Players: s.Players, Hand: s.Hand, SideToMove: s.SideToMove}
}

// String returns a diagram of the position, top row first.
func (p *Position) String() string {
	var sb strings.Builder
	for row := Rows - 1; row >= 0; row-- {
		sb.WriteByte(byte('1' + row))
		sb.WriteByte(' ')
		for col := 0; col < Cols; col++ {
			sq := NewSquare(row, col)
			switch {
			case p.Players[0].IsSet(sq):
				sb.WriteString("x ")
			case p.Players[1].IsSet(sq):
				sb.WriteString("o ")
			default:
				sb.WriteString(". ")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e\n")
	fmt.Fprintf(&sb, "to move: %s  hand x=%d o=%d\n", p.SideToMove, p.Hand[0], p.Hand[1])
	return sb.String()
}
