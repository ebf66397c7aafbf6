package board

// WinningMove returns a move that gives the side to move a line (and leaves the
// opponent without one). With flicksOnly set placements are not tried.
func (p *Position) WinningMove(prior Hash, flicksOnly bool) (Move, bool) {
	var ml MoveList
	if flicksOnly {
		p.GenerateFlicks(&ml)
	} else {
		p.GenerateLegalMoves(&ml)
	}
	mover := p.SideToMove
	for _, m := range ml.Slice() {
		if !p.ApplyChecked(m, prior) {
			continue
		}
		won := p.WinTurn() == mover
		p.Undo(m)
		if won {
			return m, true
		}
	}
	return NoMove, false
}

// IsReach reports whether the side that just moved would win with a flick if
// it could move again.
func (p *Position) IsReach(prior Hash) bool {
	p.SideToMove = -p.SideToMove
	_, ok := p.WinningMove(prior, true)
	p.SideToMove = -p.SideToMove
	return ok
}

// ThreatMoves fills ml with the moves that create a reach for the side to move
// while not handing the opponent an immediate win.
func (p *Position) ThreatMoves(prior Hash, ml *MoveList) {
	ml.Clear()
	var all MoveList
	p.GenerateLegalMoves(&all)
	hash := p.Hash()
	for _, m := range all.Slice() {
		if !p.ApplyChecked(m, prior) {
			continue
		}
		if !p.GameOver() && p.IsReach(prior) {
			if _, loses := p.WinningMove(hash, false); !loses {
				ml.Add(m)
			}
		}
		p.Undo(m)
	}
}
