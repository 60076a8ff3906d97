package game

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Registry owns every live room. It is the only way rooms are created,
// found, or torn down, and its lock makes join-or-create a single atomic
// step: two simultaneous joiners can never both be admitted to the last
// open slot of a size class.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// Join places a participant into an open room of the requested size,
// creating one if none exists. target is validated against the faction
// universe: a room larger than the universe could never finish its draft.
func (reg *Registry) Join(nickname string, target int) (*Room, JoinResult, error) {
	if target < 1 || target > FactionCount {
		return nil, JoinResult{}, ErrInvalidPlayerCount
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	var room *Room
	for _, r := range reg.rooms {
		if r.open(target) {
			room = r
			break
		}
	}
	if room == nil {
		code := newRoomCode()
		for reg.rooms[code] != nil {
			code = newRoomCode()
		}
		room = newRoom(code, target)
		reg.rooms[code] = room
	}

	res, err := room.join(nickname)
	if err != nil {
		return nil, JoinResult{}, err
	}
	return room, res, nil
}

func (reg *Registry) Get(code string) (*Room, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r := reg.rooms[code]
	if r == nil {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

func (reg *Registry) Remove(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, code)
}

func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// OpenCounts reports how many rooms are still waiting for players, keyed by
// target size.
func (reg *Registry) OpenCounts() map[int]int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make(map[int]int)
	for _, r := range reg.rooms {
		if r.Phase() == PhaseWaiting {
			out[r.Target]++
		}
	}
	return out
}

// Sweep removes rooms that have seen no accepted mutation for ttl and
// returns their codes. An abandoned room (never filled, a voter who left)
// would otherwise linger until process restart.
func (reg *Registry) Sweep(ttl time.Duration) []string {
	cutoff := time.Now().UTC().Add(-ttl)
	reg.mu.Lock()
	defer reg.mu.Unlock()
	var swept []string
	for code, r := range reg.rooms {
		if r.IdleSince().Before(cutoff) {
			delete(reg.rooms, code)
			swept = append(swept, code)
		}
	}
	return swept
}

// StartSweeper runs Sweep every interval until ctx is canceled.
func (reg *Registry) StartSweeper(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, code := range reg.Sweep(ttl) {
				log.Info().Str("room", code).Msg("swept idle room")
			}
		}
	}
}
