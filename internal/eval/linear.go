package eval

import (
	"errors"
	"fmt"
	"math"

	"github.com/hailam/vidro/internal/board"
	"github.com/hailam/vidro/internal/engine"
)

// Feature layout
const (
	pieceSlots    = 2 * board.Cells        // First player's cells, then the second's
	pairFeatures  = pieceSlots * pieceSlots // Index i*50+j for slots i <= j
	turnFeature   = pairFeatures            // Set when the first player is to move
	biasFeature   = turnFeature + 1         // Always set
	handFeatures  = biasFeature + 1         // 6 per player: pieces left in hand
	NumFeatures   = handFeatures + 2*(board.PiecesPerPlayer+1)
	maxActive     = (2*board.PiecesPerPlayer)*(2*board.PiecesPerPlayer+1)/2 + 4
	DefaultScale  = 1000
)

// ErrNoWeights is returned when a weight vector does not fit the feature layout.
var ErrNoWeights = errors.New("no usable weights")

// Linear scores a position as a weighted sum of sparse binary features. The sum
// is the logit of the side to move winning; Evaluate scales it and converts it
// to the first player's point of view.
type Linear struct {
	Weights []float32
	Scale   float64
}

var _ engine.Evaluator = (*Linear)(nil)

// NewLinear creates an evaluator from a weight vector of NumFeatures entries.
func NewLinear(weights []float32) (*Linear, error) {
	if len(weights) != NumFeatures {
		return nil, fmt.Errorf("%w: got %d weights, want %d", ErrNoWeights, len(weights), NumFeatures)
	}
	return &Linear{Weights: weights, Scale: DefaultScale}, nil
}

// Features appends the active feature indices of s to dst.
func Features(s board.Snapshot, dst []int) []int {
	var slots [2 * board.PiecesPerPlayer]int
	n := 0
	for p := 0; p < 2; p++ {
		b := s.Players[p]
		for b != 0 && n < len(slots) {
			slots[n] = p*board.Cells + b.PopLSB().Index()
			n++
		}
	}
	// Slots are ascending, so i <= j holds for every pair
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			dst = append(dst, slots[i]*pieceSlots+slots[j])
		}
	}
	if s.SideToMove == board.First {
		dst = append(dst, turnFeature)
	}
	dst = append(dst,
		biasFeature,
		handFeatures+int(s.Hand[0]),
		handFeatures+board.PiecesPerPlayer+1+int(s.Hand[1]),
	)
	return dst
}

// Logit returns the raw weighted sum for s.
func (l *Linear) Logit(s board.Snapshot) float64 {
	var buf [maxActive]int
	var z float64
	for _, f := range Features(s, buf[:0]) {
		z += float64(l.Weights[f])
	}
	return z
}

// WinProbability returns the predicted chance that the side to move wins.
func (l *Linear) WinProbability(s board.Snapshot) float64 {
	return 1 / (1 + math.Exp(-l.Logit(s)))
}

// Evaluate scores a snapshot.
func (l *Linear) Evaluate(s board.Snapshot) int {
	score := int(math.Round(l.Logit(s) * l.Scale))
	if score > engine.EvalLimit {
		score = engine.EvalLimit
	} else if score < -engine.EvalLimit {
		score = -engine.EvalLimit
	}
	return score * int(s.SideToMove)
}
