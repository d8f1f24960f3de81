package testutil

// FixedTokenGenerator generates the same cycle token every time.
//
// Unlike engine.FixedGenerator, which returns tokens in sequence and is
// exhausted after its list, this generator never runs out. It is useful when
// every cycle in a test should carry the same token, e.g. when asserting on
// log output across an unknown number of cycles.
//
// Thread-safety: FixedTokenGenerator is stateless and safe for concurrent use.
type FixedTokenGenerator struct {
	token string
}

// NewFixedTokenGenerator creates a generator that always returns token.
// If token is empty, Generate() returns "test-cycle-token".
func NewFixedTokenGenerator(token string) *FixedTokenGenerator {
	if token == "" {
		token = "test-cycle-token"
	}
	return &FixedTokenGenerator{token: token}
}

// Generate returns the fixed cycle token.
//
// Implements engine.TokenGenerator.
func (g *FixedTokenGenerator) Generate() string {
	return g.token
}
