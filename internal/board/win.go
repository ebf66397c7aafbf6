package board

// Lines returns the start cells of every three-in-a-row the side owns.
// A start cell is the lowest-index cell of its line.
func (p *Position) Lines(s Side) Bitboard {
	return lines(p.Players[s.Index()])
}

func lines(b Bitboard) Bitboard {
	var starts Bitboard
	for _, step := range lineSteps {
		starts |= b & (b >> step) & (b >> (2 * step))
	}
	return starts
}

// HasLine returns true if the side owns at least one three-in-a-row.
func (p *Position) HasLine(s Side) bool {
	return p.Lines(s) != 0
}

// GameOver returns true if either player has a line.
func (p *Position) GameOver() bool {
	return lines(p.Players[0]) != 0 || lines(p.Players[1]) != 0
}

// WinTurn returns +1 if only the first player has a line, -1 if only the second
// does and 0 otherwise (no line, or a line for both which counts as a draw).
func (p *Position) WinTurn() Side {
	first := lines(p.Players[0]) != 0
	second := lines(p.Players[1]) != 0
	switch {
	case first && !second:
		return First
	case second && !first:
		return Second
	}
	return 0
}
