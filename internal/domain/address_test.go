package domain

import (
	"crypto/ed25519"
	"math/rand"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
)

func TestParseAddress_Valid(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pub, _, err := ed25519.GenerateKey(rng)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	encoded := base58.Encode(pub)

	addr, err := ParseAddress(encoded)
	if err != nil {
		t.Fatalf("ParseAddress(%q) failed: %v", encoded, err)
	}
	if addr.String() != encoded {
		t.Errorf("round trip: got %s, want %s", addr, encoded)
	}
	if addr.IsZero() {
		t.Error("parsed address reports zero")
	}
}

func TestParseAddress_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not base58", "0OIl+/="},
		{"too short", base58.Encode([]byte("short"))},
		{"too long", base58.Encode(make([]byte, 33))},
		{"not on curve", base58.Encode([]byte(strings.Repeat("\xff", 32)))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseAddress(tt.input); err == nil {
				t.Errorf("ParseAddress(%q) succeeded, want error", tt.input)
			}
		})
	}
}

func TestZeroAddress(t *testing.T) {
	if !ZeroAddress.IsZero() {
		t.Error("ZeroAddress.IsZero() false")
	}
}
