package internal

import (
	"errors"
	"strings"
	"testing"
)

func TestTokenGenerator_Generate(t *testing.T) {
	gen := NewTokenGenerator(8)
	for i := 0; i < 100; i++ {
		token := gen.Generate()
		if len(token) != 8 {
			t.Fatalf("Generate() length = %d, want 8", len(token))
		}
		for _, c := range token {
			if !strings.ContainsRune(TokenAlphabet, c) {
				t.Fatalf("Generate() produced %q with character %q outside the alphabet", token, c)
			}
		}
	}
}

func TestTokenGenerator_DefaultLength(t *testing.T) {
	gen := NewTokenGenerator(0)
	if got := len(gen.Generate()); got != DefaultTokenLength {
		t.Errorf("Generate() length = %d, want %d", got, DefaultTokenLength)
	}
}

func TestTokenGenerator_Validate(t *testing.T) {
	gen := NewTokenGenerator(8)

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"valid token", "ABCD2345", true},
		{"all letters", "ABCDEFGH", true},
		{"too short", "ABCD234", false},
		{"too long", "ABCD23456", false},
		{"empty", "", false},
		{"contains zero", "ABCD0345", false},
		{"contains one", "ABCD1345", false},
		{"contains O", "ABCDO345", false},
		{"contains I", "ABCDI345", false},
		{"lowercase", "abcd2345", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gen.Validate(tt.token); got != tt.want {
				t.Errorf("Validate(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestTokenGenerator_GenerateUnique(t *testing.T) {
	gen := NewTokenGenerator(8)
	existing := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		token, err := gen.GenerateUnique(existing, 0)
		if err != nil {
			t.Fatalf("GenerateUnique() error = %v", err)
		}
		if _, taken := existing[token]; taken {
			t.Fatalf("GenerateUnique() returned duplicate token %q", token)
		}
		existing[token] = struct{}{}
	}
}

func TestTokenGenerator_GenerateUnique_Exhausted(t *testing.T) {
	// Length 1 leaves only 32 possible tokens; occupying all of them
	// must exhaust the attempt budget.
	gen := NewTokenGenerator(1)
	existing := map[string]struct{}{}
	for i := 0; i < len(TokenAlphabet); i++ {
		existing[string(TokenAlphabet[i])] = struct{}{}
	}

	_, err := gen.GenerateUnique(existing, 50)
	if err == nil {
		t.Fatal("GenerateUnique() error = nil, want GenerationExhaustedError")
	}
	var exhausted *GenerationExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("GenerateUnique() error = %T, want *GenerationExhaustedError", err)
	}
	if exhausted.Attempts != 50 {
		t.Errorf("Attempts = %d, want 50", exhausted.Attempts)
	}
}
