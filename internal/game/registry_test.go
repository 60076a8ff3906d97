package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentJoinsNeverOverfill(t *testing.T) {
	reg := NewRegistry()

	const joiners = 32
	var wg sync.WaitGroup
	rooms := make([]*Room, joiners)
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			room, _, err := reg.Join("p", 4)
			if assert.NoError(t, err) {
				rooms[i] = room
			}
		}(i)
	}
	wg.Wait()

	distinct := map[string]*Room{}
	for _, room := range rooms {
		require.NotNil(t, room)
		distinct[room.Code] = room
	}
	total := 0
	for _, room := range distinct {
		n := len(room.Participants())
		assert.LessOrEqual(t, n, 4, "room %s overfilled", room.Code)
		total += n
	}
	assert.Equal(t, joiners, total, "every joiner must be admitted exactly once")
	assert.Len(t, distinct, joiners/4, "32 joiners at size 4 should fill exactly 8 rooms")
}

func TestSweepRemovesIdleRooms(t *testing.T) {
	reg := NewRegistry()
	room, _, err := reg.Join("Alice", 2)
	require.NoError(t, err)

	// nothing young enough to sweep
	assert.Empty(t, reg.Sweep(time.Hour))
	require.Equal(t, 1, reg.Len())

	time.Sleep(5 * time.Millisecond)
	swept := reg.Sweep(time.Millisecond)
	require.Equal(t, []string{room.Code}, swept)
	assert.Equal(t, 0, reg.Len())

	_, err = reg.Get(room.Code)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestStartSweeperRunsUntilCanceled(t *testing.T) {
	reg := NewRegistry()
	_, _, err := reg.Join("Alice", 2)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reg.StartSweeper(ctx, 5*time.Millisecond, time.Millisecond)

	require.Eventually(t, func() bool { return reg.Len() == 0 },
		time.Second, 5*time.Millisecond, "sweeper should remove the idle room")
}
