package game

import (
	"crypto/rand"
	"math/big"
)

// draftOrder returns a uniformly random permutation of the participants.
// Pick order decides who gets first choice of faction, so the shuffle must
// be unbiased and unpredictable; join order must confer no advantage.
func draftOrder(ps []*Participant) []*Participant {
	out := make([]*Participant, len(ps))
	copy(out, ps)
	for i := len(out) - 1; i > 0; i-- {
		j := randIntn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func randIntn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	return int(v.Int64())
}
