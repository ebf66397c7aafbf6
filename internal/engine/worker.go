package engine

import (
	"github.com/hailam/vidro/internal/board"
)

// Worker runs the negamax search on a private copy of the position.
type Worker struct {
	pos     *board.Position
	prior   board.Hash
	eval    Evaluator
	oracle  *MateOracle
	orderer *MoveOrderer
	tt      *TranspositionTable
	opts    *Options

	nodes    uint64
	pv       PVTable
	rootMove board.Move

	// Hashes of the positions on the current path, for repetition detection
	path  []board.Hash
	moves [MaxPly]board.MoveList
}

// NewWorker creates a new search worker.
func NewWorker(tt *TranspositionTable, eval Evaluator, opts *Options) *Worker {
	return &Worker{
		eval:    eval,
		oracle:  NewMateOracle(),
		orderer: NewMoveOrderer(eval),
		tt:      tt,
		opts:    opts,
		path:    make([]board.Hash, 0, MaxPly),
	}
}

// Nodes returns the number of nodes searched by this worker.
func (w *Worker) Nodes() uint64 {
	return w.nodes
}

// Reset resets the worker for a new search.
func (w *Worker) Reset() {
	w.nodes = 0
}

// InitSearch initializes the worker with a copy of the root position and the
// hash of the position before the opponent's last move.
func (w *Worker) InitSearch(pos *board.Position, prior board.Hash) {
	w.pos = pos.Copy()
	w.prior = prior
	w.path = w.path[:0]
}

// SearchDepth searches the root to the given depth inside [alpha, beta].
// The move is the best root move of this pass: the PV head when a move raised
// alpha, otherwise the highest scoring move. NoMove means the side to move has
// no legal move.
func (w *Worker) SearchDepth(depth, alpha, beta int) (board.Move, int) {
	if depth > MaxPly-2 {
		depth = MaxPly - 2
	}
	w.rootMove = board.NoMove
	score := w.negamax(depth, 0, alpha, beta, w.prior)

	bestMove := w.rootMove
	if w.pv.length[0] > 0 {
		bestMove = w.pv.moves[0][0]
	}
	return bestMove, score
}

// GetPV returns the principal variation from the last search.
func (w *Worker) GetPV() []board.Move {
	pv := make([]board.Move, w.pv.length[0])
	for i := 0; i < w.pv.length[0]; i++ {
		pv[i] = w.pv.moves[0][i]
	}
	return pv
}

// onPath returns true if the position already occurs on the current search path.
func (w *Worker) onPath(hash board.Hash) bool {
	for _, h := range w.path {
		if h == hash {
			return true
		}
	}
	return false
}

// terminalScore scores a position where at least one line is on the board.
func (w *Worker) terminalScore(ply int) int {
	switch w.pos.WinTurn() {
	case w.pos.SideToMove:
		return WinScore - ply
	case -w.pos.SideToMove:
		return -(WinScore - ply)
	}
	return DrawScore
}

// leaf scores a depth-zero node: a proven short win if the oracle finds one,
// otherwise the evaluator seen from the side to move.
func (w *Worker) leaf(ply int, prior board.Hash) int {
	if w.opts.UseLeafMate && w.opts.LeafMateBudget > 0 {
		r := w.oracle.Solve(w.pos, w.opts.LeafMateBudget, prior)
		w.nodes += w.oracle.Nodes()
		if r.Proven() && r.Sign == w.pos.SideToMove {
			return WinScore - (ply + len(r.Line))
		}
	}
	score := clampEval(w.eval.Evaluate(w.pos.Snapshot(prior)))
	return score * int(w.pos.SideToMove)
}

// negamax implements the negamax algorithm with alpha-beta pruning.
// prior is the hash of the position before the opponent's last move.
func (w *Worker) negamax(depth, ply int, alpha, beta int, prior board.Hash) int {
	w.nodes++

	// Initialize PV length for this ply
	w.pv.length[ply] = ply

	hash := w.pos.Hash()
	if w.onPath(hash) {
		return DrawScore
	}
	if w.pos.GameOver() {
		return w.terminalScore(ply)
	}
	if depth <= 0 || ply >= MaxPly-1 {
		return w.leaf(ply, prior)
	}

	// Probe transposition table
	var ttMove board.Move
	if w.opts.UseTT {
		if entry, found := w.tt.Probe(hash); found {
			ttMove = entry.BestMove

			// No cutoffs at the root, it must always produce a move
			if ply > 0 && int(entry.Depth) >= depth {
				score := AdjustScoreFromTT(int(entry.Score), ply)
				switch entry.Flag {
				case TTExact:
					return score
				case TTLowerBound:
					if score > alpha {
						alpha = score
					}
				case TTUpperBound:
					if score < beta {
						beta = score
					}
				}
				if alpha >= beta {
					return score
				}
			}
		}
	}
	alphaOrig, betaOrig := alpha, beta

	moves := &w.moves[ply]
	w.pos.GenerateLegalMoves(moves)
	if moves.Len() == 0 {
		return -(WinScore - ply)
	}
	sort := w.opts.UseSort && depth <= w.opts.SortDepth
	w.orderer.Order(w.pos, moves, ply, prior, ttMove, sort)

	w.path = append(w.path, hash)

	mover := w.pos.SideToMove
	bestScore := -Infinity
	bestMove := board.NoMove
	movesSearched := 0

	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		if !w.pos.ApplyChecked(move, prior) {
			continue
		}
		movesSearched++

		var score int
		// Late Move Reduction: late moves of a sorted list get a reduced null-window probe first
		if sort && w.opts.UseLMR && depth >= w.opts.LMRMinDepth && movesSearched > w.opts.LMRMinMoves &&
			w.pos.WinTurn() != mover {
			reducedDepth := depth - 1 - w.opts.LMRReduction
			if reducedDepth < 0 {
				reducedDepth = 0
			}
			score = -w.negamax(reducedDepth, ply+1, -alpha-1, -alpha, hash)
			if score > alpha {
				score = -w.negamax(depth-1, ply+1, -beta, -alpha, hash)
			}
		} else {
			score = -w.negamax(depth-1, ply+1, -beta, -alpha, hash)
		}

		w.pos.Undo(move)

		if score > bestScore {
			bestScore = score
			bestMove = move

			if score > alpha {
				alpha = score

				w.pv.moves[ply][ply] = move
				for j := ply + 1; j < w.pv.length[ply+1]; j++ {
					w.pv.moves[ply][j] = w.pv.moves[ply+1][j]
				}
				w.pv.length[ply] = w.pv.length[ply+1]
			}
		}

		// Beta cutoff
		if alpha >= beta {
			break
		}
	}

	w.path = w.path[:len(w.path)-1]

	// Every move repeats the prior position: the mover is stuck
	if bestMove == board.NoMove {
		return -(WinScore - ply)
	}
	if ply == 0 {
		w.rootMove = bestMove
	}

	if w.opts.UseTT {
		flag := TTExact
		if bestScore <= alphaOrig {
			flag = TTUpperBound
		} else if bestScore >= betaOrig {
			flag = TTLowerBound
		}
		w.tt.Store(hash, depth, AdjustScoreToTT(bestScore, ply), flag, bestMove)
	}

	return bestScore
}
