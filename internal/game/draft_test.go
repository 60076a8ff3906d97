package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeParticipants(n int) []*Participant {
	ps := make([]*Participant, n)
	for i := range ps {
		ps[i] = &Participant{ID: fmt.Sprintf("p%d", i), Nickname: fmt.Sprintf("player-%d", i)}
	}
	return ps
}

func TestDraftOrderIsPermutation(t *testing.T) {
	ps := makeParticipants(5)
	got := draftOrder(ps)

	require.Len(t, got, len(ps))
	seen := map[string]bool{}
	for _, p := range got {
		assert.False(t, seen[p.ID], "participant %s appears twice", p.ID)
		seen[p.ID] = true
	}
	for _, p := range ps {
		assert.True(t, seen[p.ID], "participant %s missing from shuffle", p.ID)
	}

	// input order is left alone
	for i, p := range ps {
		assert.Equal(t, fmt.Sprintf("p%d", i), p.ID)
	}
}

func TestDraftOrderFirstPickRoughlyUniform(t *testing.T) {
	const trials = 4000
	ps := makeParticipants(4)
	firsts := map[string]int{}
	for i := 0; i < trials; i++ {
		firsts[draftOrder(ps)[0].ID]++
	}
	require.Len(t, firsts, 4, "every participant should draw first pick at least once")
	for id, n := range firsts {
		freq := float64(n) / trials
		assert.InDelta(t, 0.25, freq, 0.05, "participant %s drew first pick with frequency %.3f", id, freq)
	}
}
