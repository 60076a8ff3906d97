package game

import (
	"crypto/rand"
	"encoding/binary"
)

// Room codes are short enough to read out loud and type by hand. The
// alphabet drops easily confused characters (0/O, 1/I).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 4

// newRoomCode returns a fresh candidate code. Collision against live rooms
// is the registry's problem; it retries.
func newRoomCode() string {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	out := make([]byte, codeLength)
	for i, b := range buf {
		// alphabet length divides 256, so the modulo is unbiased
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out)
}

// newSeed draws the shared world-generation seed. It must not be guessable
// by participants, so it comes from the same CSPRNG as the room codes.
func newSeed() uint32 {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	return binary.BigEndian.Uint32(buf[:])
}
