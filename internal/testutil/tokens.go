package testutil

import "fmt"

// SequentialTokens generates predictable session tokens: "<prefix>-1",
// "<prefix>-2", and so on. It satisfies session.TokenGenerator.
//
// Thread-safety: SequentialTokens is safe for concurrent use.
type SequentialTokens struct {
	prefix string
	seq    *Sequence
}

// NewSequentialTokens creates a generator. An empty prefix becomes
// "test-session".
func NewSequentialTokens(prefix string) *SequentialTokens {
	if prefix == "" {
		prefix = "test-session"
	}
	return &SequentialTokens{prefix: prefix, seq: NewSequence()}
}

// Generate returns the next token.
func (g *SequentialTokens) Generate() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.seq.Next())
}
