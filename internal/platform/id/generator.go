package id

import (
	"crypto/rand"
	"fmt"
)

const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Generator creates human-shareable codes.
type Generator interface {
	NewInviteCode() (string, error)
}

type RandomGenerator struct {
	length int
}

func NewRandomGenerator(length int) *RandomGenerator {
	if length < 6 {
		length = 6
	}
	return &RandomGenerator{length: length}
}

// NewInviteCode draws from an alphabet without look-alike characters.
func (g *RandomGenerator) NewInviteCode() (string, error) {
	buf := make([]byte, g.length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = inviteAlphabet[int(b)%len(inviteAlphabet)]
	}
	return string(buf), nil
}
