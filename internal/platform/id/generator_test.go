package id

import (
	"strings"
	"testing"
)

func TestRandomGenerator_NewInviteCode(t *testing.T) {
	t.Parallel()

	code, err := NewRandomGenerator(8).NewInviteCode()
	if err != nil {
		t.Fatalf("NewInviteCode error: %v", err)
	}
	if len(code) != 8 {
		t.Fatalf("unexpected length: %q", code)
	}
	for _, r := range code {
		if !strings.ContainsRune(inviteAlphabet, r) {
			t.Fatalf("unexpected rune %q in %q", r, code)
		}
	}

	short, _ := NewRandomGenerator(2).NewInviteCode()
	if len(short) != 6 {
		t.Fatalf("length should be clamped to 6, got %q", short)
	}
}
