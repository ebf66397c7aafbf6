package board

// PRNG is a small reproducible xorshift64* generator for random playouts.
type PRNG struct {
	state uint64
}

// NewPRNG seeds a generator. A zero seed is replaced by a fixed constant.
func NewPRNG(seed uint64) *PRNG {
	if seed == 0 {
		seed = 0x98F107A2BEEF1234
	}
	return &PRNG{state: seed}
}

// Uint64 returns the next pseudo-random value (xorshift64*).
func (r *PRNG) Uint64() uint64 {
	r.state ^= r.state >> 12
	r.state ^= r.state << 25
	r.state ^= r.state >> 27
	return r.state * 0x2545F4914F6CDD1D
}

// Intn returns a value in [0, n). n must be positive.
func (r *PRNG) Intn(n int) int {
	return int(r.Uint64() % uint64(n))
}

// RandomMove picks a uniformly random legal move that does not repeat prior.
// Returns NoMove if there is none.
func (p *Position) RandomMove(r *PRNG, prior Hash) Move {
	var ml MoveList
	p.GenerateLegalMoves(&ml)
	for ml.Len() > 0 {
		i := r.Intn(ml.Len())
		m := ml.Get(i)
		if p.ApplyChecked(m, prior) {
			p.Undo(m)
			return m
		}
		ml.Swap(i, ml.Len()-1)
		ml.count--
	}
	return NoMove
}

// RandomPosition plays up to plies random moves from the empty board, stopping
// early when the game ends or the mover is stuck. It returns the position and
// the hash of the position before the last move (NoHash if no move was made).
func RandomPosition(r *PRNG, plies int) (*Position, Hash) {
	pos := NewPosition()
	prior := NoHash
	for i := 0; i < plies && !pos.GameOver(); i++ {
		m := pos.RandomMove(r, prior)
		if m == NoMove {
			break
		}
		before := pos.Hash()
		pos.Apply(m)
		prior = before
	}
	return pos, prior
}
