package main

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateID returns a random hex string of the given byte length
func GenerateID(byteLen int) string {
	b := make([]byte, byteLen)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// randFloat returns a random float64 in [0, 1). Plain xorshift is
// plenty for spawn-point picking; seeded once from crypto/rand.
var randSrc uint64

func randFloat() float64 {
	randSrc ^= randSrc << 13
	randSrc ^= randSrc >> 7
	randSrc ^= randSrc << 17
	if randSrc == 0 {
		randSrc = 1
	}
	return float64(randSrc%10000) / 10000.0
}

// randRange returns a random float64 in [lo, hi).
func randRange(lo, hi float64) float64 {
	return lo + randFloat()*(hi-lo)
}

func init() {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	for i, v := range b {
		randSrc |= uint64(v) << (uint(i) * 8)
	}
	if randSrc == 0 {
		randSrc = 1
	}
}
