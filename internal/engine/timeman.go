package engine

import (
	"time"

	"github.com/hailam/vidro/internal/board"
)

// TimeControl contains the clock parameters of a game.
type TimeControl struct {
	Time      [2]time.Duration // Remaining time per player (index 0 = first player)
	Inc       [2]time.Duration // Increment per move
	MoveTime  time.Duration    // Fixed time per move (overrides other time controls)
	MovesToGo int              // Moves until the next time control (0 = sudden death)
}

// Unlimited returns true if no clock is running.
func (tc TimeControl) Unlimited() bool {
	return tc.MoveTime == 0 && tc.Time[0] == 0 && tc.Time[1] == 0
}

// TimeManager handles time allocation for searches. Since the search only
// stops between depths, the optimum time is used as the context deadline and
// the maximum bounds how far past it a depth may run.
type TimeManager struct {
	optimumTime time.Duration // Target time for this move
	maximumTime time.Duration // Maximum time allowed
	startTime   time.Time     // When search started
}

// NewTimeManager creates a new time manager.
func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Init initializes the time manager for a new search.
// ply is the current game ply.
func (tm *TimeManager) Init(tc TimeControl, us board.Side, ply int) {
	tm.startTime = time.Now()

	// Fixed move time mode
	if tc.MoveTime > 0 {
		tm.optimumTime = tc.MoveTime
		tm.maximumTime = tc.MoveTime
		return
	}

	idx := us.Index()
	if tc.Time[idx] == 0 {
		tm.optimumTime = time.Hour
		tm.maximumTime = time.Hour
		return
	}

	timeLeft := tc.Time[idx]
	inc := tc.Inc[idx]

	// Games rarely last long: at most ten flicks each after the placements
	mtg := tc.MovesToGo
	if mtg == 0 {
		mtg = 20 - ply/2
		if mtg < 5 {
			mtg = 5
		}
	}

	tm.optimumTime = timeLeft/time.Duration(mtg) + inc*9/10

	// Maximum time: 3x optimum or 80% of remaining, whichever is smaller
	tm.maximumTime = tm.optimumTime * 3
	if maxFromRemaining := timeLeft * 8 / 10; tm.maximumTime > maxFromRemaining {
		tm.maximumTime = maxFromRemaining
	}

	// Minimum times
	if tm.optimumTime < 10*time.Millisecond {
		tm.optimumTime = 10 * time.Millisecond
	}
	if tm.maximumTime < tm.optimumTime {
		tm.maximumTime = tm.optimumTime
	}
}

// Elapsed returns the time elapsed since search started.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// OptimumTime returns the target time for this move.
func (tm *TimeManager) OptimumTime() time.Duration {
	return tm.optimumTime
}

// MaximumTime returns the maximum time allowed.
func (tm *TimeManager) MaximumTime() time.Duration {
	return tm.maximumTime
}

// Deadline returns when the search should stop starting new depths.
func (tm *TimeManager) Deadline() time.Time {
	return tm.startTime.Add(tm.optimumTime)
}

// PastOptimum returns true if we've exceeded the optimum time.
func (tm *TimeManager) PastOptimum() bool {
	return tm.Elapsed() >= tm.optimumTime
}
