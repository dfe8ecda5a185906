package server

import (
	"sync"

	"github.com/cwbudde/spatialquant/internal/colorvec"
)

// liveState holds the working annealing state for a running job: the
// soft-assignment field and palette as of the most recent progress
// callback. Job itself (guarded by JobManager's mutex) only tracks the
// flattened palette and scalar progress fields cheap enough to copy on
// every update; the full S array lives here instead, behind its own lock,
// so preview rendering never contends with job bookkeeping.
type liveState struct {
	mu      sync.RWMutex
	s       colorvec.Array3D
	palette []colorvec.Vec3
}

func newLiveState() *liveState {
	return &liveState{}
}

func (ls *liveState) set(s colorvec.Array3D, palette []colorvec.Vec3) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.s = s
	ls.palette = palette
}

func (ls *liveState) get() (colorvec.Array3D, []colorvec.Vec3) {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return ls.s, ls.palette
}

var (
	liveStatesMu sync.RWMutex
	liveStates   = make(map[string]*liveState)
)

func registerLiveState(jobID string, ls *liveState) {
	liveStatesMu.Lock()
	defer liveStatesMu.Unlock()
	liveStates[jobID] = ls
}

func unregisterLiveState(jobID string) {
	liveStatesMu.Lock()
	defer liveStatesMu.Unlock()
	delete(liveStates, jobID)
}

func lookupLiveState(jobID string) *liveState {
	liveStatesMu.RLock()
	defer liveStatesMu.RUnlock()
	return liveStates[jobID]
}
