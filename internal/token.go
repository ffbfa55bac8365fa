package internal

import (
	"math/rand"
	"strings"
	"time"
)

// TokenAlphabet is the character set tokens are drawn from: uppercase
// letters and digits minus the visually ambiguous 0, 1, O and I.
const TokenAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// DefaultTokenLength is the token length used when none is configured.
const DefaultTokenLength = 8

// DefaultMaxGenerateAttempts bounds how many draws GenerateUnique makes
// before giving up. Hitting this bound means the live-token population
// is approaching the token space, which is a configuration problem
// (alphabet/length too small), not a transient condition.
const DefaultMaxGenerateAttempts = 100

// TokenGenerator produces fixed-length tokens from TokenAlphabet.
// Tokens are identifiers handed to a chat user, not cryptographic
// secrets. Not safe for concurrent use; the Manager serializes access.
type TokenGenerator struct {
	length int
	rand   *rand.Rand
}

// NewTokenGenerator creates a generator for tokens of the given length.
// A non-positive length falls back to DefaultTokenLength.
func NewTokenGenerator(length int) *TokenGenerator {
	if length <= 0 {
		length = DefaultTokenLength
	}
	return &TokenGenerator{
		length: length,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Generate returns a new random token.
func (g *TokenGenerator) Generate() string {
	var b strings.Builder
	b.Grow(g.length)
	for i := 0; i < g.length; i++ {
		b.WriteByte(TokenAlphabet[g.rand.Intn(len(TokenAlphabet))])
	}
	return b.String()
}

// Validate reports whether token has the right shape: exact length and
// every character drawn from TokenAlphabet. It says nothing about
// whether the token is registered.
func (g *TokenGenerator) Validate(token string) bool {
	if len(token) != g.length {
		return false
	}
	for i := 0; i < len(token); i++ {
		if strings.IndexByte(TokenAlphabet, token[i]) < 0 {
			return false
		}
	}
	return true
}

// Length returns the configured token length.
func (g *TokenGenerator) Length() int {
	return g.length
}

// GenerateUnique draws tokens until one is absent from existing, or
// fails with GenerationExhaustedError after maxAttempts draws. A
// non-positive maxAttempts uses DefaultMaxGenerateAttempts.
func (g *TokenGenerator) GenerateUnique(existing map[string]struct{}, maxAttempts int) (string, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxGenerateAttempts
	}
	for i := 0; i < maxAttempts; i++ {
		token := g.Generate()
		if _, taken := existing[token]; !taken {
			return token, nil
		}
	}
	return "", &GenerationExhaustedError{Attempts: maxAttempts}
}
