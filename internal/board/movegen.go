package board

// GenerateLegalMoves fills ml with every legal move: placements first, then flicks.
// The repetition rule is not applied here; callers use ApplyChecked for that.
func (p *Position) GenerateLegalMoves(ml *MoveList) {
	ml.Clear()
	targets := p.PlaceTargets()
	for targets != 0 {
		ml.Add(NewPlace(targets.PopLSB()))
	}
	p.generateFlicks(ml)
}

// GenerateFlicks fills ml with the legal flicks only.
func (p *Position) GenerateFlicks(ml *MoveList) {
	ml.Clear()
	p.generateFlicks(ml)
}

// LegalMoves returns a freshly allocated list of legal moves.
func (p *Position) LegalMoves() *MoveList {
	ml := NewMoveList()
	p.GenerateLegalMoves(ml)
	return ml
}

func (p *Position) generateFlicks(ml *MoveList) {
	blank := p.Blank()
	pieces := p.Us()
	for pieces != 0 {
		sq := pieces.PopLSB()
		for d := Direction(0); d < NumDirections; d++ {
			if ahead[sq][d]&blank != 0 {
				ml.Add(NewFlick(sq, d))
			}
		}
	}
}

// PlaceTargets returns the empty cells whose 3x3 neighbourhood holds no piece
// of either player. Empty when the side to move has nothing in hand.
func (p *Position) PlaceTargets() Bitboard {
	if p.Hand[p.SideToMove.Index()] == 0 {
		return Empty
	}
	return FieldMask &^ p.Occupied().Spread()
}

// FlickSources returns the pieces of the side to move that can be flicked in direction d.
func (p *Position) FlickSources(d Direction) Bitboard {
	blank := p.Blank()
	var sources Bitboard
	pieces := p.Us()
	for pieces != 0 {
		sq := pieces.PopLSB()
		if ahead[sq][d]&blank != 0 {
			sources |= SquareBB(sq)
		}
	}
	return sources
}

// HasLegalMoves returns true if the side to move has at least one move.
func (p *Position) HasLegalMoves() bool {
	if p.PlaceTargets() != 0 {
		return true
	}
	for d := Direction(0); d < NumDirections; d++ {
		if p.FlickSources(d) != 0 {
			return true
		}
	}
	return false
}

// IsLegal checks a move against the current position, ignoring repetition.
func (p *Position) IsLegal(m Move) bool {
	sq := m.Square()
	if !sq.IsValid() {
		return false
	}
	switch {
	case m.IsPlace():
		return p.PlaceTargets().IsSet(sq)
	case m.IsFlick():
		return p.Us().IsSet(sq) && ahead[sq][m.Direction()]&p.Blank() != 0
	}
	return false
}
